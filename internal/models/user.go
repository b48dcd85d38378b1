package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Onboarding wizard steps, in order. A user is fully onboarded once
// OnboardingStep reaches OnboardingStepDone.
const (
	OnboardingStepRole      = 1
	OnboardingStepProfile   = 2
	OnboardingStepInterests = 3
	OnboardingStepDone      = 4
)

// User roles
const (
	RoleMentor  = "mentor"
	RoleStudent = "student"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string `json:"-"`                        // Store hashed password, ignore for JSON serialization
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID

	// Mentor/student profile
	Role      string `json:"role" gorm:"size:20;index"` // "mentor" or "student"
	Headline  string `json:"headline"`
	Bio       string `json:"bio"`
	Expertise string `json:"expertise"` // comma-separated topic tags
	AvatarURL string `json:"avatar_url"`
	Available bool   `json:"available" gorm:"default:true"` // mentors only: accepting new students

	// Onboarding wizard state
	OnboardingStep     int  `json:"onboarding_step" gorm:"default:1"`
	OnboardingComplete bool `json:"onboarding_complete" gorm:"default:false"`
}

// UserCompact is the trimmed author/actor representation embedded in
// feed items and notifications.
type UserCompact struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Headline  string `json:"headline,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		Headline:  u.Headline,
		AvatarURL: u.AvatarURL,
	}
}

// ExpertiseTags splits the comma-separated expertise field into a slice
func (u *User) ExpertiseTags() []string {
	if u.Expertise == "" {
		return nil
	}
	parts := strings.Split(u.Expertise, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID will be provided by the client after Firebase Auth
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Headline  string `json:"headline,omitempty" validate:"omitempty,max=120"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Expertise string `json:"expertise,omitempty" validate:"omitempty,max=500"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Available *bool  `json:"available,omitempty"`
}

// Onboarding wizard request bodies, one per step

type OnboardingRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=mentor student"`
}

type OnboardingProfileRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Headline string `json:"headline" validate:"required,max=120"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

type OnboardingInterestsRequest struct {
	Expertise string `json:"expertise" validate:"required,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
