package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/ev-rental-console/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrOperatorNotFound is returned when no operator matches.
var ErrOperatorNotFound = errors.New("operator not found")

// MongoOperatorCollection implements OperatorCollection for MongoDB
type MongoOperatorCollection struct {
	Collection *mongo.Collection
}

// InsertOperator inserts a new, active operator
func (c *MongoOperatorCollection) InsertOperator(ctx context.Context, op models.Operator) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now
	op.IsActive = true

	_, err := c.Collection.InsertOne(ctx, op)
	return err
}

// FindOperatorByID finds an operator by id
func (c *MongoOperatorCollection) FindOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindOperatorByUsername finds an operator by username
func (c *MongoOperatorCollection) FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	return c.findOne(ctx, bson.M{"username": username})
}

// FindOperatorByEmail finds an operator by email
func (c *MongoOperatorCollection) FindOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

// UpdateOperator replaces an operator document
func (c *MongoOperatorCollection) UpdateOperator(ctx context.Context, id string, op models.Operator) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	op.UpdatedAt = time.Now()
	op.ID = objectID

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, op)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

// UpdateLastLogin stamps the last login time
func (c *MongoOperatorCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}

func (c *MongoOperatorCollection) findOne(ctx context.Context, filter bson.M) (*models.Operator, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	var op models.Operator
	err := c.Collection.FindOne(ctx, filter).Decode(&op)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}
