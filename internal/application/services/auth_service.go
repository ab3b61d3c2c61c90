package services

import (
	"fmt"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/email"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/security"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// RoleAdmin can change project settings and invite editors.
	RoleAdmin = "admin"
	// RoleEditor can edit pages but not settings.
	RoleEditor = "editor"

	editorTokenTTL = 24 * time.Hour
)

// AuthService handles dashboard login and editor invitations.
type AuthService struct {
	emailService email.Service
	logger       *logging.ChanneledLogger
}

// NewAuthService creates the auth service singleton. The email service may be
// nil when no Resend API key is configured; invitations are then disabled.
func NewAuthService(emailService email.Service, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{emailService: emailService, logger: logger}
}

// Login verifies the supplied password against the project's admin and editor
// credentials and returns a signed token plus the granted role.
func (s *AuthService) Login(projectCtx *project.Context, password string) (string, string, error) {
	role := ""
	switch {
	case projectCtx.Config.AdminPassword != "" && security.VerifyPassword(projectCtx.Config.AdminPassword, password):
		role = RoleAdmin
	case projectCtx.Config.EditorPassword != "" && security.VerifyPassword(projectCtx.Config.EditorPassword, password):
		role = RoleEditor
	default:
		s.logger.Auth().Warn("Failed login attempt", "projectId", projectCtx.ProjectID)
		return "", "", fmt.Errorf("invalid credentials")
	}

	token, err := security.GenerateEditorToken(projectCtx.ProjectID, role, projectCtx.Config.JWTSecret, editorTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Auth().Info("Login succeeded", "projectId", projectCtx.ProjectID, "role", role)
	return token, role, nil
}

// ValidateToken parses a bearer token and returns its claims.
func (s *AuthService) ValidateToken(projectCtx *project.Context, token string) (jwt.MapClaims, error) {
	return security.ValidateJWT(token, projectCtx.Config.JWTSecret)
}

// InviteEditor emails an invitation link that carries a short-lived editor token.
func (s *AuthService) InviteEditor(projectCtx *project.Context, toEmail, baseURL string) error {
	if s.emailService == nil {
		return fmt.Errorf("email delivery is not configured")
	}

	token, err := security.GenerateEditorToken(projectCtx.ProjectID, RoleEditor, projectCtx.Config.JWTSecret, 48*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to sign invite token: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/editor/accept?token=%s", baseURL, token)
	if err := s.emailService.SendEditorInviteEmail(toEmail, projectCtx.ProjectID, inviteURL); err != nil {
		s.logger.Email().Error("Failed to send editor invite", "projectId", projectCtx.ProjectID, "error", err)
		return err
	}

	s.logger.Email().Info("Sent editor invite", "projectId", projectCtx.ProjectID, "to", toEmail)
	return nil
}
