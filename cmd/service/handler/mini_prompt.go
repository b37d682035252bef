package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
	"github.com/promptdeck/promptdeck/pkg/utils"
)

func (s *HttpSrv) CreateMiniPrompt(c *gin.Context) {
	var req v1.CreateMiniPromptArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	miniPrompt, err := logic.CreateMiniPrompt(c.GetString("user"), req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, miniPrompt)
}

func (s *HttpSrv) GetMiniPrompt(c *gin.Context) {
	id, exist := c.Params.Get("miniprompt")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.GetMiniPrompt", "mini prompt id is required", nil))
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	miniPrompt, err := logic.GetMiniPrompt(c.GetString("user"), id)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, miniPrompt)
}

type ListMiniPromptsRequest struct {
	FolderID string `json:"folder_id" form:"folder_id"`
	Page     uint64 `json:"page" form:"page" binding:"required"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"required"`
}

func (s *HttpSrv) ListMiniPrompts(c *gin.Context) {
	var req ListMiniPromptsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	list, err := logic.ListMiniPrompts(c.GetString("user"), req.FolderID, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type UpdateMiniPromptRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	FolderID    string `json:"folder_id"`
}

func (s *HttpSrv) UpdateMiniPrompt(c *gin.Context) {
	id, exist := c.Params.Get("miniprompt")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.UpdateMiniPrompt", "mini prompt id is required", nil))
		return
	}

	var req UpdateMiniPromptRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	err := logic.UpdateMiniPrompt(c.GetString("user"), id, types.UpdateMiniPromptArgs{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		FolderID:    req.FolderID,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) TrashMiniPrompt(c *gin.Context) {
	id, exist := c.Params.Get("miniprompt")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.TrashMiniPrompt", "mini prompt id is required", nil))
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	if err := logic.TrashMiniPrompt(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) RestoreMiniPrompt(c *gin.Context) {
	id, exist := c.Params.Get("miniprompt")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.RestoreMiniPrompt", "mini prompt id is required", nil))
		return
	}

	logic := v1.NewMiniPromptLogic(c, s.Core)
	if err := logic.RestoreMiniPrompt(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) ListTrashedMiniPrompts(c *gin.Context) {
	logic := v1.NewMiniPromptLogic(c, s.Core)
	list, err := logic.ListTrashedMiniPrompts(c.GetString("user"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
