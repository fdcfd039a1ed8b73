package providers

import (
	"scoreboard/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: structures.StorageConfig{
			Driver:     "file",
			Path:       "/tmp/scoreboard.dat",
			QuotaBytes: 5 * 1024 * 1024,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Game: structures.GameConfig{
			PeriodMinutes: 5,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownStorageDriver(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = "redis"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_FileDriverNeedsPath(t *testing.T) {
	c := validConfig()
	c.Storage.Path = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MemoryDriverWithoutPath(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = "memory"
	c.Storage.Path = ""
	v := NewCnfValidator(c)
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_PeriodTooLong(t *testing.T) {
	c := validConfig()
	c.Game.PeriodMinutes = 100
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
