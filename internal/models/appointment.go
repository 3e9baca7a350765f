package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment status values
const (
	AppointmentScheduled = "scheduled"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"

	DefaultAppointmentDuration = 30
)

// AppointmentStatuses lists every accepted status value.
var AppointmentStatuses = []string{
	AppointmentScheduled,
	AppointmentConfirmed,
	AppointmentCompleted,
	AppointmentCancelled,
}

// ActiveAppointmentStatuses are the statuses that occupy a user's slot.
var ActiveAppointmentStatuses = []string{AppointmentScheduled, AppointmentConfirmed}

// Appointment is the stored form of a user-to-service meeting slot.
type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description *string            `bson:"description" json:"description"`
	Date        string             `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"`
	Duration    int                `bson:"duration" json:"duration"`
	Status      string             `bson:"status" json:"status"`
	Notes       *string            `bson:"notes" json:"notes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentView is an appointment joined with a summary of its user.
type AppointmentView struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description *string            `bson:"description" json:"description"`
	Date        string             `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"`
	Duration    int                `bson:"duration" json:"duration"`
	Status      string             `bson:"status" json:"status"`
	Notes       *string            `bson:"notes" json:"notes"`
	User        *UserSummary       `bson:"user,omitempty" json:"user"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentInput is the payload accepted when creating an appointment.
type AppointmentInput struct {
	UserID      string  `json:"userId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    *int    `json:"duration"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
}

// AppointmentUpdate carries only the fields a caller explicitly supplied.
type AppointmentUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Duration    *int    `json:"duration"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

// IsEmpty reports whether no field was supplied.
func (u AppointmentUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil && u.Time == nil &&
		u.Duration == nil && u.Status == nil && u.Notes == nil
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	Status string
	Date   string
	UserID string
}

// AppointmentStats summarises the appointments collection.
type AppointmentStats struct {
	TotalAppointments     int64 `json:"totalAppointments"`
	ScheduledAppointments int64 `json:"scheduledAppointments"`
	ConfirmedAppointments int64 `json:"confirmedAppointments"`
	CompletedAppointments int64 `json:"completedAppointments"`
	CancelledAppointments int64 `json:"cancelledAppointments"`
	TodayAppointments     int64 `json:"todayAppointments"`
	UpcomingAppointments  int64 `json:"upcomingAppointments"`
}
