package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"fitsyncd/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "FITSYNC_LOG_LEVEL")
	viper.BindEnv("remote.baseURL", "FITSYNC_REMOTE_URL")
	viper.BindEnv("remote.probeInterval", "FITSYNC_PROBE_INTERVAL")
	viper.BindEnv("sweep.interval", "FITSYNC_SWEEP_INTERVAL")
	viper.BindEnv("cache.enabled", "FITSYNC_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FITSYNC_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "FitnessSyncDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
