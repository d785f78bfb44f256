package models

import "time"

// User is any account on the platform. Role-specific data lives in the lawyer, worker and pyme records.
type User struct {
	ID                string    `bson:"id" json:"id"`
	Email             string    `bson:"email" json:"email"`
	PasswordHash      string    `bson:"passwordHash,omitempty" json:"-"`
	FullName          string    `bson:"fullName" json:"fullName"`
	Phone             string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PhoneVerified     bool      `bson:"phoneVerified" json:"phoneVerified"`
	Role              string    `bson:"role" json:"role"`
	Plan              string    `bson:"plan" json:"plan"`
	SubscriptionLevel string    `bson:"subscriptionLevel" json:"subscriptionLevel"`
	ProfileStatus     string    `bson:"profileStatus,omitempty" json:"profileStatus,omitempty"`
	AuthProvider      string    `bson:"authProvider,omitempty" json:"authProvider,omitempty"`
	FirebaseUID       string    `bson:"firebaseUid,omitempty" json:"-"`
	PushToken         string    `bson:"pushToken,omitempty" json:"-"`
	StripeCustomerID  string    `bson:"stripeCustomerId,omitempty" json:"-"`
	IsBlocked         bool      `bson:"isBlocked" json:"isBlocked"`
	BlockReason       string    `bson:"blockReason,omitempty" json:"blockReason,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Plans and subscription levels.
const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPro     = "pro"
	PlanPremium = "premium"
	PlanTrial   = "trial"

	LevelNone    = "none"
	LevelBasic   = "basic"
	LevelPremium = "premium"

	ProfileIncomplete = "incomplete"
	ProfileComplete   = "complete"
)

// RegisterRequest is the body of the password registration endpoint.
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber"`
}

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialLoginRequest carries a Firebase ID token from a Google/Apple sign-in.
type SocialLoginRequest struct {
	IDToken  string `json:"idToken"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// ProfileUpdate holds the user fields a client may change.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
}

// AuthResponse is returned by every login flow.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
