package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/utils"
)

type CreateAccessTokenRequest struct {
	Info string `json:"info"`
}

func (s *HttpSrv) CreateAccessToken(c *gin.Context) {
	var req CreateAccessTokenRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewAuthLogic(c, s.Core)
	token, err := logic.CreateAccessToken(c.GetString("user"), req.Info)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, token)
}

type DeleteAccessTokenRequest struct {
	ID int64 `json:"id"`
}

func (s *HttpSrv) DeleteAccessToken(c *gin.Context) {
	var req DeleteAccessTokenRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	// Omitting the id revokes the token this request authenticated with.
	if req.ID == 0 {
		claim, ok := v1.InjectTokenClaim(c)
		if !ok {
			response.APIError(c, errors.Validation("DeleteAccessToken.claim", "id is required", nil))
			return
		}
		req.ID = claim.ID
	}

	logic := v1.NewAuthLogic(c, s.Core)
	if err := logic.DeleteAccessToken(c.GetString("user"), req.ID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}
