package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/store"
)

// invalidCredentials is the only answer to a failed login, whichever half was wrong.
const invalidCredentials = "Username or password is incorrect."

// AuthService logs users in and out and verifies access tokens.
// Session rows are managed by SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string          `json:"username" validate:"required,max=64"`
	Password string          `json:"password" validate:"required,max=1024"`
	Client   auth.ClientInfo `json:"-"` // filled in by the handler
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string          `json:"refresh_token" validate:"required"`
	Client       auth.ClientInfo `json:"-"`
}

// AuthResponse contains the session tokens and the user they belong to.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.InvalidCredentials(invalidCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login failed", "user_id", user.ID, "ip", req.Client.IPAddress)
		return nil, domainerrors.InvalidCredentials(invalidCredentials)
	}

	session, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", session.SessionID)

	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// RefreshTokens rotates the token pair for a refresh token.
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	session, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.Client)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Logout ends the session. Tokens bound to it stop verifying immediately.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken checks a bearer token and returns its user and claims.
// The token's session must still exist.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}

	if _, err := s.sessionService.ValidateSession(ctx, claims.SessionID); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}
