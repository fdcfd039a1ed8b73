package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"scoreboard/internal/structures"
	"strings"
)

func setConfigDefaults() {
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.quotaBytes", 5*1024*1024)
	viper.SetDefault("game.periodMinutes", 5)
	viper.SetDefault("logo.maxBytes", 2*1024*1024)
	viper.SetDefault("webServer.allowedOrigins", []string{"*"})
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")
	setConfigDefaults()

	viper.BindEnv("logger.level", "SCOREBOARD_LOG_LEVEL")
	viper.BindEnv("storage.driver", "SCOREBOARD_STORAGE_DRIVER")
	viper.BindEnv("storage.path", "SCOREBOARD_STORAGE_PATH")
	viper.BindEnv("webServer.port", "SCOREBOARD_PORT")
	viper.BindEnv("cache.enabled", "SCOREBOARD_CACHE_ENABLED")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if flags.Ephemeral {
		conf.Storage.Driver = "memory"
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "RinkScoreboard"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
