package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/promptdeck/promptdeck/pkg/ai"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	if err := toml.Unmarshal(c.bytes, cfg); err != nil {
		return err
	}
	return nil
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string   `toml:"addr"`
	Log      Log      `toml:"log"`
	Postgres PGConfig `toml:"postgres"`

	AI      AIConfig      `toml:"ai"`
	Janitor JanitorConfig `toml:"janitor"`

	bytes []byte `toml:"-"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

type AIConfig struct {
	Token string       `toml:"token"`
	Proxy string       `toml:"proxy"`
	Model ai.ModelName `toml:"model"`
}

func (a *AIConfig) FromENV() {
	a.Token = os.Getenv("PROMPTDECK_AI_TOKEN")
	a.Proxy = os.Getenv("PROMPTDECK_AI_PROXY")
	a.Model.ChatModel = os.Getenv("PROMPTDECK_AI_CHAT_MODEL")
	a.Model.SummaryModel = os.Getenv("PROMPTDECK_AI_SUMMARY_MODEL")
}

// JanitorConfig tunes the background trash sweeper. CronSpec is a standard
// cron expression; retention is counted in whole days since the item was
// moved to trash.
type JanitorConfig struct {
	CronSpec      string `toml:"cron_spec"`
	RetentionDays int    `toml:"retention_days"`
}

const (
	defaultJanitorCronSpec = "0 3 * * *"
	defaultRetentionDays   = 30
)

func (j *JanitorConfig) ApplyDefaults() {
	if j.CronSpec == "" {
		j.CronSpec = defaultJanitorCronSpec
	}
	if j.RetentionDays <= 0 {
		j.RetentionDays = defaultRetentionDays
	}
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("PROMPTDECK_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.AI.FromENV()
	if days := os.Getenv("PROMPTDECK_TRASH_RETENTION_DAYS"); days != "" {
		if v, err := strconv.Atoi(days); err == nil {
			c.Janitor.RetentionDays = v
		}
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("PROMPTDECK_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("PROMPTDECK_API_LOG_LEVEL")
	l.Path = os.Getenv("PROMPTDECK_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
