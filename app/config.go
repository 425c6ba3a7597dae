package app

// BaseConfig contains the configuration shared by every command.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogType  string `mapstructure:"log_type"`

	// ConfigFile is an optional URL of a config file to merge into the
	// command's viper instance.
	//
	// Currently only two supported URL schemes are supported: file, s3.
	// If no scheme is specified, file is used.
	ConfigFile string `mapstructure:"config"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",
	LogType:  "human",
}

// DefaultConfig returns the defaults for BaseConfig.
func DefaultConfig() BaseConfig {
	return defaultConfig
}
