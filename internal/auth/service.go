package auth

import (
	"context"

	"github.com/coderkec/authchat/internal/domain/user"
	"github.com/coderkec/authchat/internal/security"
)

// UserDirectory is the persistent store of user records the flows run against.
// Keep this small so tests can fake it easily.
type UserDirectory interface {
	Create(ctx context.Context, params user.CreateParams) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	TouchUpdatedAt(ctx context.Context, id string) error
}

// Session is what a successful signup or login hands back to the client.
type Session struct {
	UserID      string
	Role        string
	AccessToken string
}

type SignUpInput struct {
	Username    string
	Password    string
	Email       *string
	DisplayName *string
}

type LoginInput struct {
	Username string
	Password string
}

type Service struct {
	users  UserDirectory
	tokens *Manager
}

func NewService(users UserDirectory, tokens *Manager) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return Session{}, err
	}

	u, err := s.users.Create(ctx, user.CreateParams{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		Role:         DefaultRole,
		Status:       user.StatusActive,
	})

	if err != nil {
		// Duplicate usernames and any other insert failure surface the same way.
		return Session{}, ErrConflict
	}

	// Unreachable with current defaults, but the invariant is: tokens are
	// only ever issued for active accounts.
	if !u.IsActive() {
		return Session{}, ErrUserInactive
	}

	return s.issueSession(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	u, err := s.users.GetByUsername(ctx, in.Username)

	if err != nil {
		// Unknown usernames are indistinguishable from wrong passwords.
		return Session{}, ErrInvalidCredentials
	}

	// Status first: inactive accounts never learn whether the password matched.
	if !u.IsActive() {
		return Session{}, ErrUserInactive
	}

	if u.PasswordHash == nil || !security.CheckPassword(*u.PasswordHash, in.Password) {
		return Session{}, ErrInvalidCredentials
	}

	if err := s.users.TouchUpdatedAt(ctx, u.ID); err != nil {
		return Session{}, err
	}

	return s.issueSession(u)
}

// Profile fetches the full record for an already-verified identity. A valid
// token whose user row was deleted afterwards resolves to user.ErrNotFound;
// there is no revocation, so this is a reachable case.
func (s *Service) Profile(ctx context.Context, userID string) (user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issueSession(u user.User) (Session, error) {
	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role)

	if err != nil {
		return Session{}, err
	}

	return Session{
		UserID:      u.ID,
		Role:        u.Role,
		AccessToken: token,
	}, nil
}
