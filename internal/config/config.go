package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig points at the local SQLite file. An empty path means the
// per-user default location.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"CALTRACK_DB_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"CALTRACK_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"CALTRACK_LOG_FORMAT" env-default:"text"`
}

// APIConfig configures the remote goal and workout-calorie endpoints.
type APIConfig struct {
	BaseURL         string        `yaml:"base_url"         env:"CALTRACK_API_BASE_URL"         env-default:"https://app.caloriecount-ai.com"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"CALTRACK_API_REQUEST_TIMEOUT"  env-default:"30s"`
	ResourceTimeout time.Duration `yaml:"resource_timeout" env:"CALTRACK_API_RESOURCE_TIMEOUT" env-default:"60s"`
}

type AuthConfig struct {
	UserID string `yaml:"user_id" env:"CALTRACK_USER_ID"`
	Token  string `yaml:"token"   env:"CALTRACK_TOKEN"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"CALTRACK_ADDR" env-default:"127.0.0.1:8787"`
}
