package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const deliveryTimeout = 15 * time.Second

// Event is a committed change announced to staff and guests.
type Event struct {
	Name        string
	Message     string
	Reservation *models.Reservation
	Table       *models.Table
	Released    int
}

func (e Event) payload() map[string]interface{} {
	data := map[string]interface{}{}
	if e.Reservation != nil {
		data["reservation"] = e.Reservation
	}
	if e.Table != nil {
		data["table"] = e.Table
	}
	if e.Name == floor.EventAssignmentsExpired {
		data["released"] = e.Released
	}
	return data
}

// Notifier receives events after the originating change has committed.
// Implementations must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ChatPoster interface {
	Post(ctx context.Context, text string) error
}

// Dispatcher fans an event out to the notification feed, the floor hub,
// the guest's inbox and the staff chat channel. Email and chat delivery run
// in the background.
type Dispatcher struct {
	db     *gorm.DB
	hub    Broadcaster
	mailer Mailer
	chat   ChatPoster
	wg     sync.WaitGroup
}

// NewDispatcher builds a dispatcher. Any sink may be nil.
func NewDispatcher(db *gorm.DB, hub Broadcaster, mailer Mailer, chat ChatPoster) *Dispatcher {
	return &Dispatcher{db: db, hub: hub, mailer: mailer, chat: chat}
}

func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	data := event.payload()
	log := utils.InfoLogger.WithFields(logrus.Fields{"event": event.Name})

	if d.db != nil {
		d.persist(ctx, event, data)
	}
	if d.hub != nil {
		d.hub.Broadcast(event.Name, data)
	}

	if d.mailer != nil {
		if to, subject, body, ok := guestEmail(event); ok {
			d.background(ctx, func(ctx context.Context) {
				if err := d.mailer.Send(ctx, to, subject, body); err != nil {
					utils.ErrorLogger.WithFields(logrus.Fields{"event": event.Name, "to": to}).
						Errorf("email delivery failed: %v", err)
				}
			})
		}
	}
	if d.chat != nil {
		d.background(ctx, func(ctx context.Context) {
			if err := d.chat.Post(ctx, event.Message); err != nil {
				utils.ErrorLogger.WithField("event", event.Name).Errorf("chat delivery failed: %v", err)
			}
		})
	}

	log.Info(event.Message)
}

// Wait blocks until background deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) background(ctx context.Context, fn func(context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (d *Dispatcher) persist(ctx context.Context, event Event, data map[string]interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		utils.ErrorLogger.Errorf("marshal notification payload: %v", err)
		return
	}
	notif := models.Notification{
		Event:   event.Name,
		Message: event.Message,
		Payload: datatypes.JSON(raw),
	}
	if err := d.db.WithContext(ctx).Create(&notif).Error; err != nil {
		utils.ErrorLogger.WithField("event", event.Name).Errorf("persist notification: %v", err)
	}
}

func guestEmail(event Event) (to, subject, body string, ok bool) {
	r := event.Reservation
	if r == nil || r.Email == "" {
		return "", "", "", false
	}

	switch event.Name {
	case floor.EventReservationCreated:
		subject = "Your reservation request has been received"
		body = fmt.Sprintf(
			"Hi %s,\n\nWe received your reservation for %d on %s at %s.\n"+
				"We will let you know once a table has been assigned.\n",
			r.Name, r.NumberOfPeople, r.Date, r.Time,
		)
	case floor.EventTableAssigned:
		if r.TableNumber == nil {
			return "", "", "", false
		}
		subject = "Your table is ready"
		body = fmt.Sprintf(
			"Hi %s,\n\nTable %d is reserved for your party of %d on %s at %s.\n",
			r.Name, *r.TableNumber, r.NumberOfPeople, r.Date, r.Time,
		)
		if r.TableAssignmentExpiresAt != nil {
			body += fmt.Sprintf("The table is held until %s.\n", r.TableAssignmentExpiresAt.Format("15:04"))
		}
	default:
		return "", "", "", false
	}
	return r.Email, subject, body, true
}
