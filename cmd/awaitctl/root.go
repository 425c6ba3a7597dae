package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kinecosystem/agora-await/app"
	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/await/listener"
	"github.com/kinecosystem/agora-await/metrics"
	_ "github.com/kinecosystem/agora-await/metrics/statsd"
)

var log = logrus.StandardLogger().WithField("type", "awaitctl")

// conditionFunc builds the condition a subcommand waits for. The returned
// close func releases resources held by the condition.
type conditionFunc func(ctx context.Context, args []string) (cond await.Condition, closeFunc func(), err error)

func newRootCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awaitctl",
		Short: "Wait until infrastructure is ready",
		Long: "awaitctl polls a target until it is ready, the timeout elapses or it is interrupted.\n" +
			"It exits with status 0 once the target is ready and 1 otherwise.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configFile := v.GetString("config")
			optional := !cmd.Flags().Changed("config") && configFile == defaultConfigFile
			if err := app.ReadConfig(v, configFile, optional); err != nil {
				return errors.Wrap(err, "failed to load config")
			}

			config := app.DefaultConfig()
			if err := v.Unmarshal(&config); err != nil {
				return errors.Wrap(err, "failed to unmarshal config")
			}
			app.ConfigureLogger(logrus.StandardLogger(), out, config)
			return nil
		},
	}

	setupFlags(cmd)
	cmd.AddCommand(
		newTCPCmd(v),
		newHTTPCmd(v),
		newRedisCmd(v),
		newEtcdCmd(v),
	)

	if err := bindFlags(cmd, v); err != nil {
		// Flags are registered above, so binding cannot fail.
		panic(err)
	}

	return cmd
}

// runWait returns a cobra RunE that waits for the condition built by f.
func runWait(v *viper.Viper, target string, f conditionFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := app.WithSignals(cmd.Context())
		defer cancel()

		factory, closeFunc, err := newFactory(v, target)
		if err != nil {
			return err
		}
		defer closeFunc()

		cond, closeCond, err := f(ctx, args)
		if err != nil {
			return err
		}
		defer closeCond()

		if err := factory.Until(ctx, cond); err != nil {
			return err
		}

		log.WithField("target", target).Info("ready")
		return nil
	}
}

// newFactory builds the wait from the config, flags and environment.
func newFactory(v *viper.Viper, target string) (*await.Factory, func(), error) {
	closeFunc := func() {}

	config := await.DefaultConfig()
	config.SetLogger(log)
	if err := config.Load(v); err != nil {
		return nil, closeFunc, err
	}

	alias := v.GetString("alias")
	if alias == "" {
		alias = target
	}
	f := config.Await().Alias(alias)

	if unit := v.GetDuration("fibonacci"); unit > 0 {
		p, err := await.NewFibonacciPollInterval(0, unit)
		if err != nil {
			return nil, closeFunc, err
		}
		f = f.PollInterval(p)
	}

	if hold := v.GetDuration("hold"); hold > 0 {
		d, err := await.Of(hold)
		if err != nil {
			return nil, closeFunc, err
		}
		f = f.During(d)
	}

	var listeners []await.Listener
	if v.GetBool("verbose") {
		listeners = append(listeners, listener.NewLogger(log, logrus.InfoLevel))
	}

	if clientType := v.GetString("metrics"); clientType != "" {
		client, err := metrics.NewClient(
			clientType,
			metrics.WithNamespace("awaitctl"),
			metrics.WithGlobalTags(metrics.WithServiceTag("awaitctl")),
		)
		if err != nil {
			return nil, closeFunc, errors.Wrap(err, "failed to create metrics client")
		}

		m, err := listener.NewMetrics(client, metrics.WithAliasTag(alias))
		if err != nil {
			client.Close()
			return nil, closeFunc, err
		}
		listeners = append(listeners, m)

		closeFunc = func() {
			m.Close()
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("failed to close metrics client")
			}
		}
	}

	if len(listeners) > 0 {
		f = f.Listener(await.MultiListener(listeners...))
	}

	return f, closeFunc, nil
}
