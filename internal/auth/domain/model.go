package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleSeeker Role = "seeker"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleSeeker
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("role must be owner or seeker")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrEmailNotRegistered = errors.New("Could not find this email, please sign up!")
	ErrInvalidState       = errors.New("invalid or expired oauth state")
	ErrNotSeeker          = errors.New("only seekers have a profile")
)

// User is an account. ID is the identity provider's uid.
type User struct {
	ID        string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SeekerProfile holds a seeker's CV and portfolio links.
type SeekerProfile struct {
	SeekerID  string  `json:"seeker_id"`
	CV        *string `json:"cv"`
	Portfolio *string `json:"portfolio"`
}

// SignUpRequest creates the account, its role profile and its private
// workspace.
type SignUpRequest struct {
	UserID    string
	Email     string
	Name      string
	Role      Role
	CV        *string
	Portfolio *string
}

// Identity is what an identity provider vouches for.
type Identity struct {
	UID   string
	Email string
}

// Session is a signed-in device.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is returned to the client after sign-in.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	SessionID   string    `json:"session_id"`
	User        *User     `json:"user"`
}
