package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/validation"
)

const (
	resetTokenAudience = "password-reset"
	resetTokenTTL      = time.Hour
)

// Notifier hands an email to the delivery pipeline. Dispatcher implements it.
type Notifier interface {
	Send(ctx context.Context, e Email) error
}

type UserService struct {
	db          *store.DB
	notifier    Notifier
	resetSecret []byte
	hostURL     string
	now         func() time.Time
	logger      *slog.Logger
}

func NewUserService(db *store.DB, notifier Notifier, jwtSecret, hostURL string, logger *slog.Logger) *UserService {
	return &UserService{
		db:          db,
		notifier:    notifier,
		resetSecret: []byte(jwtSecret + ":" + resetTokenAudience),
		hostURL:     hostURL,
		now:         time.Now,
		logger:      logger,
	}
}

// Register creates a Reader account.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*models.RegisterOutput, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	existing, err := s.db.UserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Address: &models.Address{
			Country:        strings.TrimSpace(in.Address.Country),
			City:           strings.TrimSpace(in.Address.City),
			Street:         strings.TrimSpace(in.Address.Street),
			StreetNumber:   strings.TrimSpace(in.Address.StreetNumber),
			Building:       strings.TrimSpace(in.Address.Building),
			Apartment:      strings.TrimSpace(in.Address.Apartment),
			AdditionalInfo: strings.TrimSpace(in.Address.AdditionalInfo),
		},
	}
	if err := s.db.CreateUser(ctx, u, models.RoleReader); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "id", u.ID, "email", u.Email)
	return &models.RegisterOutput{ID: u.ID, Email: u.Email}, nil
}

// Login checks the credentials and returns the user with its roles.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.db.UserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ForgotPassword emails a reset link. Unknown addresses succeed silently.
func (s *UserService) ForgotPassword(ctx context.Context, in models.ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.db.UserByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	token, err := s.resetToken(u)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s", s.hostURL, url.QueryEscape(u.Email), url.QueryEscape(token))
	err = s.notifier.Send(ctx, Email{
		To:      u.Email,
		Subject: "Reset password",
		HTML:    fmt.Sprintf(`<p>Please reset your password by <a href="%s">clicking here</a>.</p>`, link),
		Kind:    models.EmailKindPasswordReset,
		UserID:  u.ID.String(),
	})
	if err != nil {
		return ErrEmailFailed
	}
	return nil
}

// ResetPassword sets a new password when the token matches. Unknown addresses succeed silently.
func (s *UserService) ResetPassword(ctx context.Context, in models.ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.db.UserByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil
	}
	if !s.validResetToken(u, in.Token) {
		return ErrResetPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.UpdatePasswordHash(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password reset", "id", u.ID)
	return nil
}

// SetRoles replaces the user's roles. The last Admin keeps the Admin role.
func (s *UserService) SetRoles(ctx context.Context, id uuid.UUID, in models.SetRolesInput) ([]string, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	roles := dedupe(in.Roles)
	err := s.db.Transaction(ctx, func(tx *store.DB) error {
		u, err := tx.UserByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}
		if u.HasRole(models.RoleAdmin) && !slices.Contains(roles, models.RoleAdmin) {
			admins, err := tx.UsersInRoleCount(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		return tx.SetUserRoles(ctx, id, roles)
	})
	if err != nil {
		if isAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("set roles: %w", err)
	}
	s.logger.Info("user roles changed", "id", id, "roles", roles)
	return roles, nil
}

// SeedAdmin creates the first Admin account unless one already exists.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}
	admins, err := s.db.UsersInRoleCount(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	existing, err := s.db.UserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		roles := append(existing.RoleNames(), models.RoleAdmin)
		if err := s.db.SetUserRoles(ctx, existing.ID, dedupe(roles)); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.logger.Info("existing user promoted to admin", "email", email)
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, PasswordHash: string(hash), FirstName: "Library", LastName: "Admin"}
	if err := s.db.CreateUser(ctx, u, models.RoleAdmin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin account seeded", "email", email)
	return nil
}

type resetClaims struct {
	Stamp string `json:"stamp"`
	jwt.RegisteredClaims
}

// resetToken is bound to the current password hash, so it stops working once used.
func (s *UserService) resetToken(u *models.User) (string, error) {
	now := s.now()
	claims := &resetClaims{
		Stamp: passwordStamp(u.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{resetTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetSecret)
}

func (s *UserService) validResetToken(u *models.User, token string) bool {
	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.resetSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetTokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Subject == u.ID.String() && claims.Stamp == passwordStamp(u.PasswordHash)
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
