// Package cfg loads runtime configuration for the training and serving
// commands. A YAML file named by CONFIG_FILE takes precedence, with
// environment variables overriding individual values; without a file,
// everything comes from the environment with sensible defaults.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	DatasetPath    string
	ModelsDir      string
	HistoryDir     string
	TestFraction   float64
	Seed           int64
	ServerPort     int
	RequestTimeout time.Duration
}

type ConfigFile struct {
	Data struct {
		Path string `yaml:"path"`
	} `yaml:"data"`

	Training struct {
		ModelsDir    string  `yaml:"modelsDir"`
		HistoryDir   string  `yaml:"historyDir"`
		TestFraction float64 `yaml:"testFraction"`
		Seed         int64   `yaml:"seed"`
	} `yaml:"training"`

	Server struct {
		Port           int    `yaml:"port"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	requestTimeout, err := time.ParseDuration(config.Server.RequestTimeout)
	if err != nil {
		requestTimeout = 10 * time.Second
	}

	settings := Settings{
		DatasetPath:    getEnvOrDefault("DATASET_PATH", config.Data.Path),
		ModelsDir:      getEnvOrDefault("MODELS_DIR", orDefault(config.Training.ModelsDir, "models")),
		HistoryDir:     getEnvOrDefault("HISTORY_DIR", config.Training.HistoryDir),
		TestFraction:   getFloatFromEnvOrConfig("TEST_FRACTION", config.Training.TestFraction, 0.2),
		Seed:           getInt64FromEnvOrConfig("SEED", config.Training.Seed, 42),
		ServerPort:     getIntFromEnvOrConfig("SERVER_PORT", config.Server.Port, 8090),
		RequestTimeout: requestTimeout,
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DatasetPath:    os.Getenv("DATASET_PATH"), // optional, usually given as a flag
		ModelsDir:      getEnvOrDefault("MODELS_DIR", "models"),
		HistoryDir:     os.Getenv("HISTORY_DIR"), // optional, empty disables run history
		TestFraction:   getFloatOrDefault("TEST_FRACTION", 0.2),
		Seed:           getInt64OrDefault("SEED", 42),
		ServerPort:     getIntOrDefault("SERVER_PORT", 8090),
		RequestTimeout: getDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, def int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return def
}

func getInt64FromEnvOrConfig(key string, configValue, def int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return def
}

func getFloatFromEnvOrConfig(key string, configValue, def float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return def
}

// validateSettings performs bounds checks on configuration values.
func validateSettings(settings *Settings) error {
	if settings.ModelsDir == "" {
		return fmt.Errorf("models directory cannot be empty")
	}
	if settings.TestFraction <= 0 || settings.TestFraction > 0.5 {
		return fmt.Errorf("test fraction must be between 0 and 0.5, got %f", settings.TestFraction)
	}
	if settings.ServerPort < 1024 || settings.ServerPort > 65535 {
		return fmt.Errorf("server port must be between 1024 and 65535, got %d", settings.ServerPort)
	}
	if settings.RequestTimeout < time.Second || settings.RequestTimeout > time.Minute {
		return fmt.Errorf("request timeout must be between 1s and 1m, got %v", settings.RequestTimeout)
	}
	return nil
}
