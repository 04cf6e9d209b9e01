package userstore

import (
	"context"

	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher adapts the users collection to auth.UserFetcher so the token
// middleware sees fresh user data on every request.
type Fetcher struct {
	c *mongo.Collection
}

// NewFetcher builds a Fetcher over the users collection.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{c: db.Collection("users")}
}

// FetchAuthUser loads the fields auth needs. A missing user returns
// (nil, nil): the token simply no longer maps to anyone.
func (f *Fetcher) FetchAuthUser(ctx context.Context, id primitive.ObjectID) (*auth.AuthUser, error) {
	var row struct {
		ID         primitive.ObjectID `bson:"_id"`
		FullName   string             `bson:"full_name"`
		Phone      string             `bson:"phone"`
		GlobalRole string             `bson:"global_role"`
		IsBlocked  bool               `bson:"is_blocked"`
		IsApproved bool               `bson:"is_approved"`
	}

	proj := options.FindOne().SetProjection(bson.M{
		"_id": 1, "full_name": 1, "phone": 1, "global_role": 1, "is_blocked": 1, "is_approved": 1,
	})
	err := f.c.FindOne(ctx, bson.M{"_id": id}, proj).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &auth.AuthUser{
		ID:         row.ID,
		Name:       row.FullName,
		Phone:      row.Phone,
		GlobalRole: row.GlobalRole,
		IsBlocked:  row.IsBlocked,
		IsApproved: row.IsApproved,
	}, nil
}
