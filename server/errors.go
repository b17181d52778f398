package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError writes the taxonomy body for err. Unknown errors are logged
// and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := errx.Status(err)
	if status >= http.StatusInternalServerError {
		logx.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{
		Error:   errx.Kind(err),
		Message: errx.Message(err),
	})
}
