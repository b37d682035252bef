package core

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/promptdeck/promptdeck/app/store/sqlstore"
	aiopenai "github.com/promptdeck/promptdeck/pkg/ai/openai"
	"github.com/promptdeck/promptdeck/pkg/aichat"
)

type Core struct {
	cfg CoreConfig

	stores     *sqlstore.Provider
	httpEngine *gin.Engine
	metrics    *Metrics

	aiDriver    *aiopenai.Driver
	persistence *aichat.MessagePersistenceService
	autoReset   *aichat.AutoResetManager
	pipeline    *aichat.AgentPipeline
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	cfg.Janitor.ApplyDefaults()

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("promptdeck", "core"),
		httpEngine: gin.New(),
	}

	setupSqlStore(core)

	core.aiDriver = aiopenai.New(cfg.AI.Token, cfg.AI.Proxy, cfg.AI.Model)

	core.persistence = aichat.NewMessagePersistenceService(
		core.stores.ChatSessionStore(),
		core.stores.ChatMessageStore(),
		core.stores,
	)
	core.autoReset = aichat.NewAutoResetManager(core.persistence, core.aiDriver)
	core.pipeline = aichat.NewAgentPipeline(aichat.PipelineDeps{
		Persistence: core.persistence,
		AutoReset:   core.autoReset,
		Completer:   core.aiDriver,
		OnStepError: core.metrics.PipelineStepErrorInc,
	})

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores.Install(); err != nil {
		panic(err)
	}
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores
}

func (s *Core) Persistence() *aichat.MessagePersistenceService {
	return s.persistence
}

func (s *Core) AutoReset() *aichat.AutoResetManager {
	return s.autoReset
}

func (s *Core) Pipeline() *aichat.AgentPipeline {
	return s.pipeline
}

// Close releases everything the core owns. Safe to call once during shutdown.
func (s *Core) Close() error {
	if s.stores != nil {
		return s.stores.Close()
	}
	return nil
}
