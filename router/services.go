package router

import (
	"time"

	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/repository"
	"github.com/yeremiapane/reservation-app/services"
	"gorm.io/gorm"
)

// Services bundles the components the HTTP handlers and background jobs
// share.
type Services struct {
	DB           *gorm.DB
	Hub          *floor.Hub
	Dispatcher   *services.Dispatcher
	Tables       *services.TableService
	Reservations *services.ReservationService
	Assignments  *services.AssignmentService
	Dashboard    *services.DashboardService
	Reports      *services.ReportService
	Location     *time.Location
}

// NewServices wires the gorm store, the floor hub and the notification
// dispatcher into the domain services.
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	store := repository.NewGormStore(db)
	hub := floor.NewHub()

	var chat services.ChatPoster
	if cfg.SlackWebhookURL != "" {
		chat = services.NewSlackNotifier(cfg.SlackWebhookURL)
	}
	dispatcher := services.NewDispatcher(db, hub, services.NewSMTPMailer(cfg.SMTP), chat)

	return &Services{
		DB:           db,
		Hub:          hub,
		Dispatcher:   dispatcher,
		Tables:       services.NewTableService(store, dispatcher),
		Reservations: services.NewReservationService(store, loc, dispatcher),
		Assignments:  services.NewAssignmentService(store, loc, dispatcher),
		Dashboard:    services.NewDashboardService(store, loc),
		Reports:      services.NewReportService(store),
		Location:     loc,
	}
}
