package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
)

const (
	envPrefix = "AWAITCTL"

	defaultConfigFile     = "awaitctl.yaml"
	defaultAttemptTimeout = time.Second
)

// flagKeys maps persistent flags to viper keys. The await.* keys are shared
// with await.Config.Load, so they can also come from a config file.
var flagKeys = map[string]string{
	"config":          "config",
	"timeout":         await.TimeoutKey,
	"poll-interval":   await.PollIntervalKey,
	"poll-delay":      await.PollDelayKey,
	"fibonacci":       "fibonacci",
	"hold":            "hold",
	"alias":           "alias",
	"attempt-timeout": "attempt_timeout",
	"log-level":       "log_level",
	"log-type":        "log_type",
	"verbose":         "verbose",
	"metrics":         "metrics",
}

func setupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String("config", defaultConfigFile, "Configuration file URL (file or s3)")
	flags.String("timeout", "", "Maximum wait time, e.g. 30s, PT1M or forever (default 10s)")
	flags.String("poll-interval", "", "Fixed poll interval, or 'fibonacci' (default 100ms)")
	flags.String("poll-delay", "", "Delay before the first attempt (default: the poll interval)")
	flags.Duration("fibonacci", 0, "Use a Fibonacci poll interval with this unit")
	flags.Duration("hold", 0, "Require the target to stay ready for this long")
	flags.String("alias", "", "Name of the wait in logs and errors")
	flags.Duration("attempt-timeout", defaultAttemptTimeout, "Timeout of a single attempt")
	flags.String("log-level", "info", "Log level")
	flags.String("log-type", "human", "Log format: human or json")
	flags.BoolP("verbose", "v", false, "Log every attempt")
	flags.String("metrics", "", fmt.Sprintf("Metrics client type to report waits to (%s)", strings.Join(metrics.ClientTypes(), ", ")))
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", flag)
		}
	}
	return nil
}
