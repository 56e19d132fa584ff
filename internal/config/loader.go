package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".gamestory"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for gamestory settings.
const envPrefix = "GAMESTORY"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// applyDefaults registers every key so AutomaticEnv can override it.
func applyDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("dataset.path", def.Dataset.Path)
	viperCfg.SetDefault("dataset.columns.title", def.Dataset.Columns.Title)
	viperCfg.SetDefault("dataset.columns.release_date", def.Dataset.Columns.ReleaseDate)
	viperCfg.SetDefault("dataset.columns.developers", def.Dataset.Columns.Developers)
	viperCfg.SetDefault("dataset.columns.publishers", def.Dataset.Columns.Publishers)

	viperCfg.SetDefault("story.path", def.Story.Path)

	viperCfg.SetDefault("render.theme", def.Render.Theme)
	viperCfg.SetDefault("render.output_dir", def.Render.OutputDir)

	viperCfg.SetDefault("server.host", def.Server.Host)
	viperCfg.SetDefault("server.port", def.Server.Port)
	viperCfg.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	viperCfg.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", def.Server.IdleTimeout)
	viperCfg.SetDefault("server.metrics", def.Server.Metrics)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.json", def.Logging.JSON)

	viperCfg.SetDefault("telemetry.environment", def.Telemetry.Environment)
	viperCfg.SetDefault("telemetry.otlp_endpoint", def.Telemetry.OTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", def.Telemetry.OTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", def.Telemetry.SampleRatio)
}
