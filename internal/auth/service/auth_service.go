package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workhub-app/workhub-backend/internal/auth/domain"
	"github.com/workhub-app/workhub-backend/internal/auth/oauth"
	"github.com/workhub-app/workhub-backend/internal/auth/token"
)

type UserRepository interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetSeekerProfile(ctx context.Context, seekerID string) (*domain.SeekerProfile, error)
	UpdateSeekerProfile(ctx context.Context, p *domain.SeekerProfile) error
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

type SessionManager interface {
	Start(ctx context.Context, userID string, role domain.Role) (*domain.Session, error)
	End(ctx context.Context, id string) error
	EndAll(ctx context.Context, userID string) (int, error)
}

type GoogleFlow interface {
	AuthURL(ctx context.Context) (string, error)
	Callback(ctx context.Context, state, code string) (*oauth.GoogleUser, error)
}

// ErrOAuthDisabled is returned when Google sign-in is not configured.
var ErrOAuthDisabled = errors.New("google sign-in is not configured")

type AuthService struct {
	users    UserRepository
	verifier Verifier
	issuer   *token.Issuer
	sessions SessionManager
	google   GoogleFlow
}

// NewAuthService wires the service. google may be nil.
func NewAuthService(users UserRepository, verifier Verifier, issuer *token.Issuer, sessions SessionManager, google GoogleFlow) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		issuer:   issuer,
		sessions: sessions,
		google:   google,
	}
}

type SignUpInput struct {
	IDToken   string
	Name      string
	Email     string
	Role      domain.Role
	CV        *string
	Portfolio *string
}

// Profile is what GET /me returns.
type Profile struct {
	User   *domain.User          `json:"user"`
	Seeker *domain.SeekerProfile `json:"seeker_profile,omitempty"`
}

// SignUp registers the verified identity and signs it in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.TokenPair, error) {
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	id, err := s.verifier.Verify(ctx, in.IDToken)
	if err != nil {
		return nil, err
	}

	email := id.Email
	if email == "" {
		email = strings.TrimSpace(in.Email)
	}
	req := domain.SignUpRequest{
		UserID: id.UID,
		Email:  email,
		Name:   strings.TrimSpace(in.Name),
		Role:   in.Role,
	}
	if in.Role == domain.RoleSeeker {
		req.CV, req.Portfolio = in.CV, in.Portfolio
	}

	user, err := s.users.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// SignIn exchanges an identity token for an access token and session.
func (s *AuthService) SignIn(ctx context.Context, idToken string) (*domain.TokenPair, error) {
	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id.UID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrEmailNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// SignOut ends the current session, or every session of the user when all
// is set.
func (s *AuthService) SignOut(ctx context.Context, userID, sessionID string, all bool) error {
	if all {
		_, err := s.sessions.EndAll(ctx, userID)
		return err
	}
	return s.sessions.End(ctx, sessionID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: user}
	if user.Role == domain.RoleSeeker {
		if p.Seeker, err = s.users.GetSeekerProfile(ctx, userID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SeekerProfile is used by owners reviewing an applicant.
func (s *AuthService) SeekerProfile(ctx context.Context, seekerID string) (*Profile, error) {
	p, err := s.Me(ctx, seekerID)
	if err != nil {
		return nil, err
	}
	if p.User.Role != domain.RoleSeeker {
		return nil, domain.ErrNotSeeker
	}
	return p, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, cv, portfolio *string) (*domain.SeekerProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleSeeker {
		return nil, domain.ErrNotSeeker
	}
	p := &domain.SeekerProfile{SeekerID: userID, CV: cv, Portfolio: portfolio}
	if err := s.users.UpdateSeekerProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *AuthService) GoogleAuthURL(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", ErrOAuthDisabled
	}
	return s.google.AuthURL(ctx)
}

// GoogleCallback signs in an existing user by the email Google returns.
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*domain.TokenPair, error) {
	if s.google == nil {
		return nil, ErrOAuthDisabled
	}
	gu, err := s.google.Callback(ctx, state, code)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, gu.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrEmailNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	sess, err := s.sessions.Start(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	access, exp, err := s.issuer.Issue(user.ID, user.Role, sess.ID)
	if err != nil {
		_ = s.sessions.End(ctx, sess.ID)
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken: access,
		ExpiresAt:   exp,
		SessionID:   sess.ID,
		User:        user,
	}, nil
}
