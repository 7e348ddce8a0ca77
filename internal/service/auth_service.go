package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quillpress/quillctl/internal/adapter/outbound/rest"
	"github.com/quillpress/quillctl/internal/domain/session"
)

// AuthService errors.
var (
	ErrNoToken = errors.New("login response carried no token")
)

// LoginRequest carries the credentials posted to the platform. The rules
// match the platform's login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SessionDriver is the slice of the lifecycle manager AuthService needs.
type SessionDriver interface {
	Login(ctx context.Context, sess *session.Session) error
	Logout(ctx context.Context) error
	State() session.State
}

// AuthService exchanges credentials for a session and drives the lifecycle
// manager with the result.
type AuthService struct {
	api      *rest.Facade
	sessions SessionDriver
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(api *rest.Facade, sessions SessionDriver, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      api,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Login validates the credentials, posts them to the platform, and logs the
// returned token into the lifecycle manager. The token arrives in the
// response's Authorization header; any JSON body rides along as session
// extras.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	var body struct {
		Data map[string]any `json:"data"`
	}
	resp, err := s.api.DoJSON(ctx, http.MethodPost, "/user/login", nil, req, &body)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}

	token := bearerToken(resp.Header.Get("Authorization"))
	if token == "" {
		return ErrNoToken
	}

	sess := &session.Session{Token: token, Extra: body.Data}
	if err := s.sessions.Login(ctx, sess); err != nil {
		return err
	}

	s.logger.Info("login completed", "state", s.sessions.State())
	return nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// bearerToken strips the scheme off an Authorization header value.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
