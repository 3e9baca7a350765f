package validation

import (
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BradenHooton/citywalk/internal/models"
)

const (
	msgUserIDRequired = "Valid userId is required"
	msgTitleRequired  = "Title is required and must be at least 3 characters long"
	msgDateInvalid    = "Valid date is required (format: YYYY-MM-DD)"
	msgTimeInvalid    = "Valid time is required (format: HH:MM)"
	msgDuration       = "Duration must be a positive number (in minutes)"
)

var msgStatus = "Status must be one of: " + strings.Join(models.AppointmentStatuses, ", ")

// Appointment validates a full appointment record.
func Appointment(in models.AppointmentInput) Result {
	var c collector
	c.check(primitive.IsValidObjectID(in.UserID), msgUserIDRequired)
	c.check(minTrimmed(in.Title, 3), msgTitleRequired)
	c.check(IsValidDate(in.Date), msgDateInvalid)
	c.check(IsValidTime(in.Time), msgTimeInvalid)
	if in.Duration != nil {
		c.check(*in.Duration > 0, msgDuration)
	}
	if in.Status != "" {
		c.check(IsAppointmentStatus(in.Status), msgStatus)
	}
	return c.result()
}

// AppointmentUpdate validates only the fields present in the update.
func AppointmentUpdate(u models.AppointmentUpdate) Result {
	var c collector
	if u.Title != nil {
		c.check(minTrimmed(*u.Title, 3), msgTitleRequired)
	}
	if u.Date != nil {
		c.check(IsValidDate(*u.Date), msgDateInvalid)
	}
	if u.Time != nil {
		c.check(IsValidTime(*u.Time), msgTimeInvalid)
	}
	if u.Duration != nil {
		c.check(*u.Duration > 0, msgDuration)
	}
	if u.Status != nil {
		c.check(IsAppointmentStatus(*u.Status), msgStatus)
	}
	return c.result()
}

// IsAppointmentStatus reports whether s is one of the enumerated statuses.
func IsAppointmentStatus(s string) bool {
	return slices.Contains(models.AppointmentStatuses, s)
}
