package core

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupConfigFromEnv(t *testing.T) {
	addr := "localhost:11111"
	os.Setenv("PROMPTDECK_API_SERVICE_ADDRESS", addr)

	cfg := LoadBaseConfigFromENV()

	assert.Equal(t, cfg.Addr, addr)
}

func TestJanitorDefaults(t *testing.T) {
	var j JanitorConfig
	j.ApplyDefaults()

	assert.Equal(t, defaultJanitorCronSpec, j.CronSpec)
	assert.Equal(t, defaultRetentionDays, j.RetentionDays)

	j = JanitorConfig{CronSpec: "30 2 * * *", RetentionDays: 7}
	j.ApplyDefaults()
	assert.Equal(t, "30 2 * * *", j.CronSpec)
	assert.Equal(t, 7, j.RetentionDays)
}

func TestLogLevelParsing(t *testing.T) {
	l := Log{Level: "warn"}
	assert.Equal(t, slog.LevelWarn, l.SlogLevel())

	l.Level = ""
	assert.Equal(t, slog.LevelDebug, l.SlogLevel())
}
