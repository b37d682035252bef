package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/utils"
)

func (s *HttpSrv) CreateFolder(c *gin.Context) {
	var req v1.CreateFolderArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	folder, err := logic.CreateFolder(c.GetString("user"), req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, folder)
}

type ListFoldersRequest struct {
	ParentID string `json:"parent_id" form:"parent_id"`
}

func (s *HttpSrv) ListFolders(c *gin.Context) {
	var req ListFoldersRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	list, err := logic.ListFolders(c.GetString("user"), req.ParentID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *HttpSrv) RenameFolder(c *gin.Context) {
	id, exist := c.Params.Get("folder")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.RenameFolder", "folder id is required", nil))
		return
	}

	var req RenameFolderRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	if err := logic.RenameFolder(c.GetString("user"), id, req.Name); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

type MoveFolderRequest struct {
	ParentID string `json:"parent_id"`
	Position int64  `json:"position"`
}

func (s *HttpSrv) MoveFolder(c *gin.Context) {
	id, exist := c.Params.Get("folder")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.MoveFolder", "folder id is required", nil))
		return
	}

	var req MoveFolderRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	if err := logic.MoveFolder(c.GetString("user"), id, req.ParentID, req.Position); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) TrashFolder(c *gin.Context) {
	id, exist := c.Params.Get("folder")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.TrashFolder", "folder id is required", nil))
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	if err := logic.TrashFolder(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) RestoreFolder(c *gin.Context) {
	id, exist := c.Params.Get("folder")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.RestoreFolder", "folder id is required", nil))
		return
	}

	logic := v1.NewFolderLogic(c, s.Core)
	if err := logic.RestoreFolder(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}
