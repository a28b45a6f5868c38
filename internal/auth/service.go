package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/internal/users"
	pkgauth "github.com/hijabina/hijabina-backend/pkg/auth"
	"github.com/hijabina/hijabina-backend/pkg/auth/session"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

const invalidSessionMessage = "Sesi tidak valid, silakan login kembali"

// Service is the shopper and staff authentication surface.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (session.Issued, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (session.Issued, error)
	Revoke(ctx context.Context, accessID string) error
}

// IdentityNotifier is told about logins and logouts so open cart streams can
// follow the identity.
type IdentityNotifier interface {
	IdentityChanged(ctx context.Context, userID uuid.UUID, loggedIn bool) error
}

// ServiceParams bundles the dependencies of the auth service.
type ServiceParams struct {
	Users     userRepository
	Sessions  sessionManager
	Hasher    *security.Hasher
	JWTConfig config.JWTConfig
	Identity  IdentityNotifier
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	users    userRepository
	sessions sessionManager
	hasher   *security.Hasher
	jwtCfg   config.JWTConfig
	identity IdentityNotifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password hasher is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.Users,
		sessions: params.Sessions,
		hasher:   params.Hasher,
		jwtCfg:   params.JWTConfig,
		identity: params.Identity,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// AdminLogin only admits admin and petugas accounts.
func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Akses khusus admin")
	}
	return s.issue(ctx, user)
}

// Refresh rotates the session named by the access token's jti. The access
// token may be expired; its signature must still be valid.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidSessionMessage)
	}
	issued, err := s.sessions.Rotate(ctx, claims.UserID, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidSessionMessage)
		}
		return nil, dependencyError(err, "rotate session")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		_ = s.sessions.Revoke(ctx, issued.AccessID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidSessionMessage)
		}
		return nil, dependencyError(err, "load user")
	}
	if !user.IsActive {
		_ = s.sessions.Revoke(ctx, issued.AccessID)
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Akun dinonaktifkan")
	}
	return s.mint(user, issued)
}

// Logout ends the session and tells open streams the user is gone.
func (s *service) Logout(ctx context.Context, userID uuid.UUID, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return dependencyError(err, "revoke session")
	}
	s.notifyIdentity(ctx, userID, false)
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "auth.logout")
	return nil
}

func (s *service) authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := users.NormalizeEmail(req.Email)
	if !ValidEmail(email) {
		return nil, ReasonError(ReasonInvalidEmail)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ReasonError(ReasonUserNotFound)
		}
		return nil, dependencyError(err, "lookup user")
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, ReasonError(ReasonWrongPassword)
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Akun dinonaktifkan")
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(req.Password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.rehash_failed")
			}
		}
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, dependencyError(err, "update last login")
	}
	user.LastLoginAt = &now
	return user, nil
}

func (s *service) issue(ctx context.Context, user *models.User) (*TokenResponse, error) {
	issued, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, dependencyError(err, "store session")
	}
	resp, err := s.mint(user, issued)
	if err != nil {
		return nil, err
	}
	s.notifyIdentity(ctx, user.ID, true)
	logCtx := s.logg.WithActorRole(s.logg.WithUserID(ctx, user.ID.String()), string(user.Role))
	s.logg.Info(logCtx, "auth.login")
	return resp, nil
}

func (s *service) mint(user *models.User, issued session.Issued) (*TokenResponse, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		JTI:    issued.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  token,
		RefreshToken: issued.RefreshToken,
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) notifyIdentity(ctx context.Context, userID uuid.UUID, loggedIn bool) {
	if s.identity == nil {
		return
	}
	if err := s.identity.IdentityChanged(ctx, userID, loggedIn); err != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "error", err.Error()), "auth.identity_notify_failed")
	}
}
