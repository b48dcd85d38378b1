package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/peermentor/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when a post ID does not resolve to a document
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error

	// ToggleLike and ToggleSave flip the acting user's membership in the
	// post's liked-by/saved-by set and recompute the denormalized count
	// from the set, both inside a single document update.
	ToggleLike(ctx context.Context, postID, uid string) (*models.ToggleResult, error)
	ToggleSave(ctx context.Context, postID, uid string) (*models.ToggleResult, error)

	// Liked/saved collections are derived from the forward sets; no
	// reverse index is kept on the user record.
	GetLikedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error)
	GetSavedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error)

	IncrementCommentsCount(ctx context.Context, postID string) error
	DecrementCommentsCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	if post.SavedBy == nil {
		post.SavedBy = []string{}
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB. A malformed ID can
// never resolve to a document, so it reports the post as missing.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"user_id": userID}, skip, limit)
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{}, skip, limit)
}

// CountPosts returns the total number of posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"content":    post.Content,
			"image_urls": post.ImageURLs,
			"topics":     post.Topics,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ToggleLike flips the user's membership in the post's liked-by set
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID, uid string) (*models.ToggleResult, error) {
	post, err := r.toggleMembership(ctx, postID, uid, "liked_by", "likes_count")
	if err != nil {
		return nil, err
	}
	return &models.ToggleResult{State: post.IsLikedBy(uid), Count: len(post.LikedBy)}, nil
}

// ToggleSave flips the user's membership in the post's saved-by set
func (r *MongoPostRepository) ToggleSave(ctx context.Context, postID, uid string) (*models.ToggleResult, error) {
	post, err := r.toggleMembership(ctx, postID, uid, "saved_by", "saves_count")
	if err != nil {
		return nil, err
	}
	return &models.ToggleResult{State: post.IsSavedBy(uid), Count: len(post.SavedBy)}, nil
}

// toggleMembership removes the UID from the set when present, adds it when
// absent, and recomputes the count from the updated set. Both writes run
// as one aggregation-pipeline update so the counter can never drift from
// the set under concurrent toggles.
func (r *MongoPostRepository) toggleMembership(ctx context.Context, postID, uid, setField, countField string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}

	ref := "$" + setField
	// Documents created before the set existed have no array; treat as empty.
	normalized := bson.D{{Key: "$ifNull", Value: bson.A{ref, bson.A{}}}}

	pipeline := bson.A{
		bson.D{{Key: "$set", Value: bson.D{{Key: setField, Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{uid, normalized}}},
			bson.D{{Key: "$setDifference", Value: bson.A{normalized, bson.A{uid}}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{normalized, bson.A{uid}}}},
		}}}}}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: countField, Value: bson.D{{Key: "$size", Value: ref}}}}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, pipeline, opts).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetLikedPosts returns posts whose liked-by set contains the UID
func (r *MongoPostRepository) GetLikedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"liked_by": uid}, skip, limit)
}

// GetSavedPosts returns posts whose saved-by set contains the UID
func (r *MongoPostRepository) GetSavedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"saved_by": uid}, skip, limit)
}

// IncrementCommentsCount increments the comments count of a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	return r.adjustCommentsCount(ctx, postID, 1)
}

// DecrementCommentsCount decrements the comments count of a post
func (r *MongoPostRepository) DecrementCommentsCount(ctx context.Context, postID string) error {
	return r.adjustCommentsCount(ctx, postID, -1)
}

func (r *MongoPostRepository) adjustCommentsCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrPostNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": delta}})
	return err
}
