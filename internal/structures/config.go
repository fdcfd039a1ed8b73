package structures

import "net/http"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	Ephemeral  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host           string   `yaml:"host" validate:"required"`
	Port           int      `yaml:"port" validate:"required|uint|min:1"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver" validate:"required|in:file,sqlite,memory"`
	Path       string `yaml:"path"`
	QuotaBytes int    `yaml:"quotaBytes" validate:"required|int|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type GameConfig struct {
	PeriodMinutes int `yaml:"periodMinutes" validate:"required|int|min:1|max:99"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogoConfig struct {
	MaxBytes int64 `yaml:"maxBytes"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Logger    LoggerConfig  `yaml:"logger"`
	Game      GameConfig    `yaml:"game"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Logo      LogoConfig    `yaml:"logo"`
}
