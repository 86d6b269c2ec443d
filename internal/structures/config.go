package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type LocalStoreConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type RemoteConfig struct {
	BaseURL       string        `yaml:"baseURL" validate:"required|fullUrl"`
	ProbePath     string        `yaml:"probePath"`
	ProbeInterval time.Duration `yaml:"probeInterval" validate:"required|min:1"`
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	WebServer  Server           `yaml:"webServer"`
	LocalStore LocalStoreConfig `yaml:"localStore"`
	Remote     RemoteConfig     `yaml:"remote"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Logger     LoggerConfig     `yaml:"logger"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}
