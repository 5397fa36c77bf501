package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	identitydomain "gemini-observatory/backend/internal/identity/domain"
	"gemini-observatory/backend/internal/security"
	sessiondomain "gemini-observatory/backend/internal/session/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
	userrepo "gemini-observatory/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse   = errors.New("refresh token reuse detected; all sessions revoked")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", security.MinPasswordLength)
)

// AuthResult holds the tokens issued by Login or Refresh.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	User             *userdomain.User
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserID(ctx context.Context, userID string) (*identitydomain.Identity, error)
	CreateAccount(ctx context.Context, u *userdomain.User, i *identitydomain.Identity) error
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// AuthService implements password login, token refresh with rotation, logout, and account creation.
type AuthService struct {
	userRepo     UserRepo
	identityRepo IdentityRepo
	sessionRepo  SessionRepo
	hasher       *security.Hasher
	tokens       *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, identityRepo IdentityRepo, sessionRepo SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokens:       tokens,
	}
}

// NewUserInput describes an account created by an administrator or the bootstrap path.
type NewUserInput struct {
	Username    string
	Password    string
	DisplayName string
	Role        userdomain.Role
}

// CreateUser creates a user with a local password identity.
func (s *AuthService) CreateUser(ctx context.Context, in NewUserInput) (*userdomain.User, error) {
	if len(in.Password) < security.MinPasswordLength {
		return nil, ErrWeakPassword
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:          uuid.New().String(),
		Username:    userdomain.NormalizeUsername(in.Username),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Role:        in.Role,
		Status:      userdomain.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	err = s.identityRepo.CreateAccount(ctx, user, &identitydomain.Identity{
		UserID:       user.ID,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, userrepo.ErrDuplicateUsername) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates an administrator with the given credentials unless the username already exists.
// Returns created=false when the account was already present.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	existing, err := s.userRepo.GetByUsername(ctx, userdomain.NormalizeUsername(username))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = s.CreateUser(ctx, NewUserInput{
		Username:    username,
		Password:    password,
		DisplayName: "Administrator",
		Role:        userdomain.RoleAdministrator,
	})
	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}
	return err == nil, err
}

// Login authenticates with username and password, creates a session, and returns tokens.
// Unknown users, disabled users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress string) (*AuthResult, error) {
	username = userdomain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	ident, err := s.identityRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	refresh, err := s.tokens.IssueRefresh(sessionID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccess(sessionID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		Role:             string(user.Role),
		ExpiresAt:        refresh.ExpiresAt,
		IPAddress:        ipAddress,
		RefreshJti:       refresh.JTI,
		RefreshTokenHash: security.HashRefreshToken(refresh.Token),
		CreatedAt:        now,
		LastSeenAt:       &now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		ExpiresAt:        access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		User:             user,
	}, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens. Presenting a refresh token
// that was already rotated revokes every session of the user. The role is re-read so role changes
// take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != claims.JTI {
		_ = s.sessionRepo.RevokeAllSessionsByUser(ctx, claims.UserID)
		return nil, ErrRefreshTokenReuse
	}
	if !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		_ = s.sessionRepo.Revoke(ctx, sess.ID)
		return nil, ErrInvalidRefreshToken
	}

	_ = s.sessionRepo.UpdateLastSeen(ctx, sess.ID, time.Now().UTC())
	refresh, err := s.tokens.IssueRefresh(sess.ID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateRefreshToken(ctx, sess.ID, refresh.JTI, security.HashRefreshToken(refresh.Token)); err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccess(sess.ID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		ExpiresAt:        access.ExpiresAt,
		RefreshExpiresAt: sess.ExpiresAt,
		User:             user,
	}, nil
}

// Logout revokes the given session. Unknown sessions are a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

// ChangePassword replaces the caller's password after verifying the current one, then revokes
// every other session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, sessionID, current, next string) error {
	if len(next) < security.MinPasswordLength {
		return ErrWeakPassword
	}
	ident, err := s.identityRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if ident == nil || s.hasher.Compare(ident.PasswordHash, []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := s.hasher.Hash([]byte(next))
	if err != nil {
		return err
	}
	if err := s.identityRepo.UpdatePasswordHash(ctx, userID, hashed); err != nil {
		return err
	}
	keep, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeAllSessionsByUser(ctx, userID); err != nil {
		return err
	}
	if keep != nil {
		return s.sessionRepo.Create(ctx, keep)
	}
	return nil
}
