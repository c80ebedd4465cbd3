package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

const (
	ErrUnknownStr       = "unknown-error"
	ErrBadRequestStr    = "bad-request-format"
	ErrUnknownActionStr = "unknown-action"
	ErrServerTimeoutStr = "server-timeout"
)

var errorStatus = map[error]int{
	domain.ErrInvalidSession:       http.StatusUnauthorized,
	domain.ErrNotAuthorized:        http.StatusForbidden,
	domain.ErrRoomNotFound:         http.StatusNotFound,
	domain.ErrPlayerNotFound:       http.StatusNotFound,
	domain.ErrGameInProgress:       http.StatusConflict,
	domain.ErrRoomFull:             http.StatusConflict,
	domain.ErrInvalidWordSelection: http.StatusBadRequest,
	domain.ErrValidation:           http.StatusBadRequest,
	domain.ErrInvalidScore:         http.StatusBadRequest,
	domain.ErrRateLimited:          http.StatusTooManyRequests,
	domain.ErrSessionNotFound:      http.StatusUnauthorized,
}

func respond(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// fail maps a domain sentinel to its stable string code. The sentinel
// message is the code; wrapped detail stays server-side.
func fail(ctx *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"success": false, "error": ErrServerTimeoutStr})
		return
	case errors.Is(err, context.Canceled):
		ctx.Status(499)
		return
	}

	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			ctx.JSON(status, gin.H{"success": false, "error": sentinel.Error()})
			return
		}
	}

	log.Error().
		Err(err).
		Str("action", action).
		Str("ip", ctx.ClientIP()).
		Str("user_agent", ctx.Request.UserAgent()).
		Msg("action failed with unexpected error")
	ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": ErrUnknownStr})
}

func failBadRequest(ctx *gin.Context, code string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": code})
}
