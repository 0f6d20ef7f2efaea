package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teampayal/cafe-pos/services"
	"github.com/teampayal/cafe-pos/utils"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError memetakan error domain ke kode HTTP.
// Conflict/InvalidState tidak boleh dibalas 5xx: itu state dunia nyata
// yang harus dibaca ulang oleh staff, bukan kegagalan server.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTableConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrSessionNotActive):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrStoreTimeout):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
