package testutil

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)
	if !isVerbose() {
		logrus.StandardLogger().Out = ioutil.Discard
	}
}

func isVerbose() bool {
	for _, arg := range os.Args {
		if arg == "-test.v" || arg == "-test.v=true" || strings.HasPrefix(arg, "-test.v=test2json") {
			return true
		}
	}
	return false
}

// NewTestLogger returns a trace level entry whose output is captured by the
// returned hook. Output is also written to stderr in verbose runs.
func NewTestLogger(fields logrus.Fields) (*logrus.Entry, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	if isVerbose() {
		logger.Out = os.Stderr
	}
	return logger.WithFields(fields), hook
}
