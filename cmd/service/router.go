package service

import (
	"github.com/promptdeck/promptdeck/app/core"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/cmd/service/handler"
	"github.com/promptdeck/promptdeck/cmd/service/middleware"
	"github.com/promptdeck/promptdeck/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.Observe(s.Core.Metrics()))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		authed.POST("/chat", s.SendChatMessage)
		chat := authed.Group("/chat")
		{
			chat.GET("/sessions", s.ListChatSessions)
			chat.GET("/:session/history", s.GetSessionHistory)
			chat.GET("/:session/tokens", s.GetSessionTokenStatus)
			chat.DELETE("/:session", s.DeleteChatSession)
		}

		workflow := authed.Group("/workflow")
		{
			workflow.POST("", s.CreateWorkflow)
			workflow.GET("/list", s.ListWorkflows)
			workflow.GET("/trash", s.ListTrashedWorkflows)
			workflow.GET("/:workflow", s.GetWorkflow)
			workflow.PUT("/:workflow", s.UpdateWorkflow)
			workflow.DELETE("/:workflow", s.TrashWorkflow)
			workflow.POST("/:workflow/restore", s.RestoreWorkflow)
		}

		miniPrompt := authed.Group("/miniprompt")
		{
			miniPrompt.POST("", s.CreateMiniPrompt)
			miniPrompt.GET("/list", s.ListMiniPrompts)
			miniPrompt.GET("/trash", s.ListTrashedMiniPrompts)
			miniPrompt.GET("/:miniprompt", s.GetMiniPrompt)
			miniPrompt.PUT("/:miniprompt", s.UpdateMiniPrompt)
			miniPrompt.DELETE("/:miniprompt", s.TrashMiniPrompt)
			miniPrompt.POST("/:miniprompt/restore", s.RestoreMiniPrompt)
		}

		folder := authed.Group("/folder")
		{
			folder.POST("", s.CreateFolder)
			folder.GET("/list", s.ListFolders)
			folder.PUT("/:folder/name", s.RenameFolder)
			folder.PUT("/:folder/move", s.MoveFolder)
			folder.DELETE("/:folder", s.TrashFolder)
			folder.POST("/:folder/restore", s.RestoreFolder)
		}

		secret := authed.Group("/secret")
		{
			secret.POST("/token", s.CreateAccessToken)
			secret.DELETE("/token", s.DeleteAccessToken)
		}
	}
}
