package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

type AdminController struct {
	Dashboard *services.DashboardService
	Reports   *services.ReportService
	Location  *time.Location
}

func NewAdminController(dashboard *services.DashboardService, reports *services.ReportService, loc *time.Location) *AdminController {
	if loc == nil {
		loc = time.Local
	}
	return &AdminController{Dashboard: dashboard, Reports: reports, Location: loc}
}

// GetDashboardStats -> table occupancy and today's bookings
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// ExportReservationsPDF -> printable sheet for ?date= (default today)
func (ac *AdminController) ExportReservationsPDF(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().In(ac.Location).Format("2006-01-02")
	}

	doc, day, err := ac.Reports.ReservationSheet(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reservations-%s.pdf"`, day))
	c.Data(http.StatusOK, "application/pdf", doc)
}
