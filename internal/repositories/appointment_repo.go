package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
)

type AppointmentRepository struct {
	appointments *database.Collection[models.Appointment]
}

func NewAppointmentRepository(db *database.DB) *AppointmentRepository {
	return &AppointmentRepository{
		appointments: database.NewCollection[models.Appointment](db.Database, database.CollectionAppointments),
	}
}

var (
	appointmentUserLookup = database.Lookup{
		From:         database.CollectionUsers,
		LocalField:   "userId",
		ForeignField: "_id",
		As:           "user",
	}

	appointmentProjection = bson.M{
		"_id": 1, "title": 1, "description": 1, "date": 1, "time": 1,
		"duration": 1, "status": 1, "notes": 1, "createdAt": 1, "updatedAt": 1,
		"user._id": 1, "user.name": 1, "user.email": 1,
	}

	appointmentDefaultSort = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}
)

func (r *AppointmentRepository) joined(ctx context.Context, match bson.M, page models.PageRequest, sort bson.D) ([]*models.AppointmentView, int64, error) {
	return database.JoinedPage[models.AppointmentView](ctx, r.appointments, database.JoinQuery{
		Match:   match,
		Lookup:  appointmentUserLookup,
		Project: appointmentProjection,
		Sort:    sort,
		Page:    page.Page,
		Limit:   page.Limit,
	})
}

func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest, sort []models.SortField) ([]*models.AppointmentView, int64, error) {
	match := bson.M{}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.Date != "" {
		match["date"] = filter.Date
	}
	if filter.UserID != "" {
		uid, err := database.ParseID(filter.UserID)
		if err != nil {
			return nil, 0, err
		}
		match["userId"] = uid
	}
	return r.joined(ctx, match, page, sortDoc(sort, appointmentDefaultSort))
}

func (r *AppointmentRepository) ListByDateRange(ctx context.Context, start, end string, page models.PageRequest) ([]*models.AppointmentView, int64, error) {
	match := bson.M{"date": bson.M{"$gte": start, "$lte": end}}
	return r.joined(ctx, match, page, appointmentDefaultSort)
}

// GetByID returns the joined view of one appointment.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.AppointmentView, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	views, _, err := r.joined(ctx, bson.M{"_id": oid}, models.PageRequest{Page: 1, Limit: 1}, nil)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, models.ErrNotFound
	}
	return views[0], nil
}

// GetStored returns the appointment as stored, without the user join.
func (r *AppointmentRepository) GetStored(ctx context.Context, id string) (*models.Appointment, error) {
	return r.appointments.FindByID(ctx, id)
}

// HasSlotConflict reports whether userID already holds a scheduled or
// confirmed appointment at date/time. The appointment with id exclude, when
// set, is not counted.
func (r *AppointmentRepository) HasSlotConflict(ctx context.Context, userID primitive.ObjectID, date, time string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"userId": userID,
		"date":   date,
		"time":   time,
		"status": bson.M{"$in": models.ActiveAppointmentStatuses},
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	n, err := r.appointments.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) (primitive.ObjectID, error) {
	return r.appointments.Insert(ctx, a)
}

func (r *AppointmentRepository) Update(ctx context.Context, id string, u models.AppointmentUpdate) error {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = nullable(*u.Description)
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Time != nil {
		set["time"] = *u.Time
	}
	if u.Duration != nil {
		set["duration"] = *u.Duration
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Notes != nil {
		set["notes"] = nullable(*u.Notes)
	}

	res, err := r.appointments.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	n, err := r.appointments.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

type statusCount struct {
	Status string `bson:"_id"`
	Count  int64  `bson:"count"`
}

// Stats counts appointments per status, on today, and active ones between today and weekEnd inclusive.
func (r *AppointmentRepository) Stats(ctx context.Context, today, weekEnd string) (*models.AppointmentStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	counts := make([]statusCount, 0)
	if err := r.appointments.Aggregate(ctx, pipeline, &counts); err != nil {
		return nil, err
	}

	stats := &models.AppointmentStats{}
	for _, c := range counts {
		stats.TotalAppointments += c.Count
		switch c.Status {
		case models.AppointmentScheduled:
			stats.ScheduledAppointments = c.Count
		case models.AppointmentConfirmed:
			stats.ConfirmedAppointments = c.Count
		case models.AppointmentCompleted:
			stats.CompletedAppointments = c.Count
		case models.AppointmentCancelled:
			stats.CancelledAppointments = c.Count
		}
	}

	var err error
	if stats.TodayAppointments, err = r.appointments.Count(ctx, bson.M{"date": today}); err != nil {
		return nil, err
	}
	stats.UpcomingAppointments, err = r.appointments.Count(ctx, bson.M{
		"date":   bson.M{"$gte": today, "$lte": weekEnd},
		"status": bson.M{"$in": models.ActiveAppointmentStatuses},
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
