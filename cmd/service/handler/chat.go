package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/utils"
)

func (s *HttpSrv) SendChatMessage(c *gin.Context) {
	var req v1.SendMessageArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewChatLogic(c, s.Core)
	result, err := logic.SendMessage(c.GetString("user"), req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

type ListChatSessionRequest struct {
	Page     uint64 `json:"page" form:"page" binding:"required"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"required"`
}

func (s *HttpSrv) ListChatSessions(c *gin.Context) {
	var req ListChatSessionRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewChatSessionLogic(c, s.Core)
	list, err := logic.ListSessions(c.GetString("user"), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type SessionHistoryRequest struct {
	Limit uint64 `json:"limit" form:"limit"`
}

func (s *HttpSrv) GetSessionHistory(c *gin.Context) {
	sessionID, exist := c.Params.Get("session")
	if !exist || sessionID == "" {
		response.APIError(c, errors.Validation("api.GetSessionHistory", "session id is required", nil))
		return
	}

	var req SessionHistoryRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewChatSessionLogic(c, s.Core)
	history, err := logic.SessionHistory(c.GetString("user"), sessionID, req.Limit)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, history)
}

func (s *HttpSrv) GetSessionTokenStatus(c *gin.Context) {
	sessionID, exist := c.Params.Get("session")
	if !exist || sessionID == "" {
		response.APIError(c, errors.Validation("api.GetSessionTokenStatus", "session id is required", nil))
		return
	}

	logic := v1.NewChatSessionLogic(c, s.Core)
	status, err := logic.SessionTokenStatus(c.GetString("user"), sessionID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, status)
}

func (s *HttpSrv) DeleteChatSession(c *gin.Context) {
	sessionID, exist := c.Params.Get("session")
	if !exist || sessionID == "" {
		response.APIError(c, errors.Validation("api.DeleteChatSession", "session id is required", nil))
		return
	}

	logic := v1.NewChatSessionLogic(c, s.Core)
	if err := logic.DeleteSession(c.GetString("user"), sessionID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}
