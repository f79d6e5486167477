package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

// respondServiceError maps service errors to HTTP statuses. Anything not
// recognised is logged and answered with a generic 500.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrTableNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrTableUnavailable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrDuplicateTableNumber),
		errors.Is(err, services.ErrTableOccupied):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondInternalError(c, err)
	}
}

// paramID reads a positive numeric path parameter, answering 400 when it
// is malformed.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}
