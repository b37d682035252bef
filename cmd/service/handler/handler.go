package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
