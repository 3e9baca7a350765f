package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
)

type UserRepository struct {
	users *database.Collection[models.User]
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{users: database.NewCollection[models.User](db.Database, database.CollectionUsers)}
}

// NormalizeUsername is the stored form of a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.users.FindByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.users.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.users.FindOne(ctx, bson.M{"username": NormalizeUsername(username)})
}

func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, page models.PageRequest, sort []models.SortField) ([]*models.User, int64, error) {
	return r.users.Find(ctx, userFilter(filter), database.FindOptions{
		Page:  page.Page,
		Limit: page.Limit,
		Sort:  sortDoc(sort, bson.D{{Key: "createdAt", Value: -1}}),
	})
}

func (r *UserRepository) Search(ctx context.Context, term string, page models.PageRequest) ([]*models.User, int64, error) {
	pattern := containsFold(term)
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
		bson.M{"username": pattern},
	}}
	return r.users.Find(ctx, filter, database.FindOptions{
		Page:  page.Page,
		Limit: page.Limit,
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
	})
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	id, err := r.users.Insert(ctx, user)
	if err != nil {
		return nil, err
	}
	return r.users.FindOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": userSet(u)}, false)
}

func (r *UserRepository) UpdateByUsername(ctx context.Context, username string, u models.UserUpdate) (*models.User, error) {
	return r.users.FindOneAndUpdate(ctx, bson.M{"username": NormalizeUsername(username)}, bson.M{"$set": userSet(u)}, false)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	n, err := r.users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	return r.users.Count(ctx, userFilter(filter))
}

// Recent returns the n most recently created users.
func (r *UserRepository) Recent(ctx context.Context, n int) ([]*models.User, error) {
	users, _, err := r.users.Find(ctx, bson.M{}, database.FindOptions{
		Page:  1,
		Limit: n,
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
	})
	return users, err
}

// Ranking orders by checkpointsCompleted desc, then by who reached it first.
// Users flagged isAdminUseOnly are excluded.
func (r *UserRepository) Ranking(ctx context.Context, limit int) ([]*models.RankingEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isAdminUseOnly": bson.M{"$ne": true}}}},
		{{Key: "$sort", Value: bson.D{{Key: "checkpointsCompleted", Value: -1}, {Key: "lastCheckpoint", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.M{"name": 1, "checkpointsCompleted": 1, "colour": 1}}},
	}

	entries := make([]*models.RankingEntry, 0)
	if err := r.users.Aggregate(ctx, pipeline, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RecordMajorCheckpoint increments the score atomically and stamps both
// lastCheckpoint and lastHelp with at.
func (r *UserRepository) RecordMajorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error) {
	update := bson.M{
		"$inc": bson.M{"checkpointsCompleted": 1},
		"$set": bson.M{"lastCheckpoint": at, "lastHelp": at},
	}
	return r.users.FindOneAndUpdate(ctx, bson.M{"username": NormalizeUsername(username)}, update, false)
}

func (r *UserRepository) RecordMinorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error) {
	update := bson.M{"$set": bson.M{"lastMinorCheckpoint": at}}
	return r.users.FindOneAndUpdate(ctx, bson.M{"username": NormalizeUsername(username)}, update, false)
}

func (r *UserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}}, false)
	return err
}

func (r *UserRepository) SetPassword(ctx context.Context, id string, digest string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": digest}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountWithPassword(ctx context.Context) (int64, error) {
	return r.users.Count(ctx, bson.M{"password": bson.M{"$exists": true, "$nin": bson.A{nil, ""}}})
}

// RecentLogins returns the n users who logged in most recently.
func (r *UserRepository) RecentLogins(ctx context.Context, n int) ([]*models.RecentLogin, error) {
	users, _, err := r.users.Find(ctx, bson.M{"lastLogin": bson.M{"$ne": nil}}, database.FindOptions{
		Page:  1,
		Limit: n,
		Sort:  bson.D{{Key: "lastLogin", Value: -1}},
	})
	if err != nil {
		return nil, err
	}

	logins := make([]*models.RecentLogin, 0, len(users))
	for _, u := range users {
		logins = append(logins, &models.RecentLogin{ID: u.ID, Name: u.Name, Email: u.Email, LastLogin: u.LastLogin})
	}
	return logins, nil
}

func userFilter(f models.UserFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func userSet(u models.UserUpdate) bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Email != nil {
		set["email"] = nullable(*u.Email)
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Colour != nil {
		set["colour"] = *u.Colour
	}
	if u.LastMajorCheckpoint != nil {
		set["lastCheckpoint"] = *u.LastMajorCheckpoint
	}
	if u.LastMinorCheckpoint != nil {
		set["lastMinorCheckpoint"] = *u.LastMinorCheckpoint
	}
	if u.LastHelp != nil {
		set["lastHelp"] = *u.LastHelp
	}
	return set
}
