package persistence

import (
	"context"
	"errors"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const postCollection = "scheduled_posts"

// PostRepository stores scheduled posts in MongoDB.
type PostRepository struct {
	mongoDb *mongo.Client
	dbName  string
}

func NewPostRepository(db *mongo.Client, dbName string) repository.IScheduledPost {
	return &PostRepository{mongoDb: db, dbName: dbName}
}

func (r *PostRepository) collection() *mongo.Collection {
	return r.mongoDb.Database(r.dbName).Collection(postCollection)
}

func (r *PostRepository) Create(ctx context.Context, post *model.ScheduledPost) error {
	if r.mongoDb == nil {
		return errors.New("post store not available")
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = model.PostStatusPending
	}
	_, err := r.collection().InsertOne(ctx, post)
	return err
}

// GetByID returns (nil, nil) when the post does not exist.
func (r *PostRepository) GetByID(ctx context.Context, postID string) (*model.ScheduledPost, error) {
	if r.mongoDb == nil {
		return nil, errors.New("post store not available")
	}
	var post model.ScheduledPost
	err := r.collection().FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) UpdateStatus(ctx context.Context, postID string, status string) error {
	if r.mongoDb == nil {
		return errors.New("post store not available")
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": postID}, update)
	return err
}
