package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/repository"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
	Assignments  *services.AssignmentService
}

func NewReservationController(reservations *services.ReservationService, assignments *services.AssignmentService) *ReservationController {
	return &ReservationController{Reservations: reservations, Assignments: assignments}
}

// CreateReservation -> guest booking, always created without a table
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Notes          string `json:"notes"`
		Date           string `json:"date"`
		Time           string `json:"time"`
		NumberOfPeople int    `json:"numberOfPeople"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := rc.Reservations.CreateReservation(c.Request.Context(), services.ReservationInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Notes:          req.Notes,
		Date:           req.Date,
		Time:           req.Time,
		NumberOfPeople: req.NumberOfPeople,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", res)
}

// GetAllReservations -> optional filters: date, email, assigned
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	filter := repository.ReservationFilter{
		Date:  c.Query("date"),
		Email: c.Query("email"),
	}
	if raw := c.Query("assigned"); raw != "" {
		assigned, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("assigned must be true or false"))
			return
		}
		filter.Assigned = &assigned
	}

	reservations, err := rc.Reservations.ListReservations(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := rc.Reservations.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// UpdateReservation -> edits guest details, date, time and party size
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name           *string `json:"name"`
		Email          *string `json:"email"`
		Phone          *string `json:"phone"`
		Notes          *string `json:"notes"`
		Date           *string `json:"date"`
		Time           *string `json:"time"`
		NumberOfPeople *int    `json:"numberOfPeople"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := rc.Reservations.UpdateReservation(c.Request.Context(), id, services.ReservationPatch{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Notes:          req.Notes,
		Date:           req.Date,
		Time:           req.Time,
		NumberOfPeople: req.NumberOfPeople,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", res)
}

// DeleteReservation -> releases the table, then deletes
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.Assignments.DeleteReservation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted successfully", nil)
}

// AssignTable -> body {"tableNumber": n}
func (rc *ReservationController) AssignTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TableNumber *int `json:"tableNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TableNumber == nil {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "tableNumber", Message: "is required"})
		return
	}

	res, err := rc.Assignments.Assign(c.Request.Context(), id, *req.TableNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table assigned successfully", res)
}

func (rc *ReservationController) UnassignTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := rc.Assignments.Unassign(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table unassigned successfully", res)
}

// GetAvailableTables -> tables that can seat the reservation right now
func (rc *ReservationController) GetAvailableTables(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tables, err := rc.Assignments.AvailableTablesFor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}
