package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post stored in MongoDB.
//
// LikedBy and SavedBy are the source of truth for interaction state;
// LikesCount and SavesCount are denormalized from them on every toggle.
// Older documents created before the sets existed carry only the counts,
// which is why both are kept.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"` // Firebase UID of the user who created the post
	Content       string             `json:"content" bson:"content"`
	ImageURLs     []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Topics        []string           `json:"topics,omitempty" bson:"topics,omitempty"`
	LikedBy       []string           `json:"-" bson:"liked_by"` // Firebase UIDs of users who liked the post
	SavedBy       []string           `json:"-" bson:"saved_by"` // Firebase UIDs of users who saved the post
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	SavesCount    int                `json:"saves_count" bson:"saves_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsLikedBy reports whether the given UID is in the post's liked-by set
func (p *Post) IsLikedBy(uid string) bool {
	return containsUID(p.LikedBy, uid)
}

// IsSavedBy reports whether the given UID is in the post's saved-by set
func (p *Post) IsSavedBy(uid string) bool {
	return containsUID(p.SavedBy, uid)
}

// EffectiveLikesCount returns the set cardinality, falling back to the
// stored counter for documents created before the set existed.
func (p *Post) EffectiveLikesCount() int {
	if p.LikedBy == nil {
		return p.LikesCount
	}
	return len(p.LikedBy)
}

// EffectiveSavesCount is the save-side equivalent of EffectiveLikesCount.
func (p *Post) EffectiveSavesCount() int {
	if p.SavedBy == nil {
		return p.SavesCount
	}
	return len(p.SavedBy)
}

func containsUID(set []string, uid string) bool {
	if uid == "" {
		return false
	}
	for _, id := range set {
		if id == uid {
			return true
		}
	}
	return false
}

// ToggleResult is the outcome of flipping a user's membership in a
// post's liked-by or saved-by set. State is the membership after the
// toggle; Count is recomputed from the set in the same update.
type ToggleResult struct {
	State bool `json:"state"`
	Count int  `json:"count"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=2000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Topics    []string `json:"topics,omitempty" validate:"omitempty,max=5,dive,min=1,max=40"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content   string   `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Topics    []string `json:"topics,omitempty" validate:"omitempty,max=5,dive,min=1,max=40"`
}
