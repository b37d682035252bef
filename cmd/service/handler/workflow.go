package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/types"
	"github.com/promptdeck/promptdeck/pkg/utils"
)

func (s *HttpSrv) CreateWorkflow(c *gin.Context) {
	var req v1.CreateWorkflowArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	workflow, err := logic.CreateWorkflow(c.GetString("user"), req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, workflow)
}

func (s *HttpSrv) GetWorkflow(c *gin.Context) {
	id, exist := c.Params.Get("workflow")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.GetWorkflow", "workflow id is required", nil))
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	workflow, err := logic.GetWorkflow(c.GetString("user"), id)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, workflow)
}

type ListWorkflowsRequest struct {
	FolderID string `json:"folder_id" form:"folder_id"`
	Page     uint64 `json:"page" form:"page" binding:"required"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"required"`
}

func (s *HttpSrv) ListWorkflows(c *gin.Context) {
	var req ListWorkflowsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	list, err := logic.ListWorkflows(c.GetString("user"), req.FolderID, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type UpdateWorkflowRequest struct {
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	Complexity     string               `json:"complexity"`
	MultiAgentChat bool                 `json:"multi_agent_chat"`
	Stages         types.WorkflowStages `json:"stages"`
	FolderID       string               `json:"folder_id"`
}

func (s *HttpSrv) UpdateWorkflow(c *gin.Context) {
	id, exist := c.Params.Get("workflow")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.UpdateWorkflow", "workflow id is required", nil))
		return
	}

	var req UpdateWorkflowRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	err := logic.UpdateWorkflow(c.GetString("user"), id, types.UpdateWorkflowArgs{
		Name:           req.Name,
		Description:    req.Description,
		Complexity:     req.Complexity,
		MultiAgentChat: req.MultiAgentChat,
		Stages:         req.Stages,
		FolderID:       req.FolderID,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) TrashWorkflow(c *gin.Context) {
	id, exist := c.Params.Get("workflow")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.TrashWorkflow", "workflow id is required", nil))
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	if err := logic.TrashWorkflow(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) RestoreWorkflow(c *gin.Context) {
	id, exist := c.Params.Get("workflow")
	if !exist || id == "" {
		response.APIError(c, errors.Validation("api.RestoreWorkflow", "workflow id is required", nil))
		return
	}

	logic := v1.NewWorkflowLogic(c, s.Core)
	if err := logic.RestoreWorkflow(c.GetString("user"), id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) ListTrashedWorkflows(c *gin.Context) {
	logic := v1.NewWorkflowLogic(c, s.Core)
	list, err := logic.ListTrashedWorkflows(c.GetString("user"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
