package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/resto-dashboard/internal/dto"
	"github.com/noah-isme/resto-dashboard/internal/session"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

const defaultAuthFailure = "Authentication failed"

// AuthError is returned when the backend refuses credentials. Message is safe to show inline.
type AuthError struct {
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthService signs the operator in and out.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (dto.SessionResponse, error)
	Logout(ctx context.Context) error
	Current() dto.SessionResponse
}

type authService struct {
	backend   AuthBackend
	sessions  session.Manager
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(backend AuthBackend, sessions session.Manager, validator *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		backend:   backend,
		sessions:  sessions,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.SessionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/resto-dashboard/internal/service/auth")
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SessionResponse{}, err
	}

	result, err := s.backend.Login(ctx, restoapi.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login_rejected")
		return dto.SessionResponse{}, s.authError(err)
	}

	return s.establish(ctx, result)
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.SessionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/resto-dashboard/internal/service/auth")
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SessionResponse{}, err
	}

	result, err := s.backend.Register(ctx, restoapi.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register_rejected")
		return dto.SessionResponse{}, s.authError(err)
	}

	return s.establish(ctx, result)
}

func (s *authService) establish(ctx context.Context, result restoapi.AuthResult) (dto.SessionResponse, error) {
	if err := s.sessions.Login(ctx, result.Token, result.User); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist session")
		return dto.SessionResponse{}, err
	}
	if result.User != nil {
		s.logger.Info().Int64("user_id", result.User.ID).Msg("operator signed in")
	}
	return s.Current(), nil
}

func (s *authService) Logout(ctx context.Context) error {
	tracer := otel.Tracer("github.com/noah-isme/resto-dashboard/internal/service/auth")
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer span.End()

	span.SetAttributes(attribute.Bool("auth.had_session", s.sessions.Authenticated()))
	if err := s.sessions.Logout(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "logout_failed")
		return err
	}
	return nil
}

func (s *authService) Current() dto.SessionResponse {
	return NewSessionResponse(s.sessions.Current())
}

// NewSessionResponse describes sess for the HTTP surface.
func NewSessionResponse(sess session.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Authenticated: sess.Authenticated(),
		User:          sess.User,
		Initial:       sess.User.Initial(),
	}
}

func (s *authService) authError(err error) error {
	message := defaultAuthFailure
	if backendMessage := strings.TrimSpace(s.sanitizer.Sanitize(restoapi.Message(err))); backendMessage != "" {
		message = backendMessage
	}

	s.logger.Warn().Err(err).Int("status", restoapi.StatusCode(err)).Msg("authentication rejected")
	return &AuthError{Message: message, Status: restoapi.StatusCode(err), Err: err}
}
