package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/utils"
	"github.com/kevinaaaquil/library/backend/validation"
)

const (
	settingsSourceStored = "stored"
	settingsSourceEnv    = "environment"
)

type MailSettingsStore interface {
	GetMailSettings(ctx context.Context) (*models.MailSettings, error)
	UpsertMailSettings(ctx context.Context, s *models.MailSettings) error
}

// MailSettingsService serves the admin-managed SMTP account and resolves the account mail is
// sent through: the stored one when present, otherwise the environment one.
type MailSettingsService struct {
	store    MailSettingsStore
	sealer   *utils.Sealer
	fallback SMTPAccount
	loc      *time.Location
	logger   *slog.Logger
}

// NewMailSettingsService accepts a nil store or sealer; the service then only reports the
// environment account.
func NewMailSettingsService(store MailSettingsStore, sealer *utils.Sealer, fallback SMTPAccount, loc *time.Location, logger *slog.Logger) *MailSettingsService {
	return &MailSettingsService{store: store, sealer: sealer, fallback: fallback, loc: loc, logger: logger}
}

func (s *MailSettingsService) Account(ctx context.Context) (SMTPAccount, error) {
	if s.store == nil || s.sealer == nil {
		return s.fallback, nil
	}
	stored, err := s.store.GetMailSettings(ctx)
	if err != nil {
		s.logger.Warn("mail settings unavailable, using environment account", "error", err)
		return s.fallback, nil
	}
	if stored == nil {
		return s.fallback, nil
	}
	password, err := s.openPassword(stored.Password)
	if err != nil {
		return SMTPAccount{}, fmt.Errorf("decrypt smtp password: %w", err)
	}
	return SMTPAccount{
		Host:        stored.Host,
		Port:        stored.Port,
		Username:    stored.Username,
		Password:    password,
		SenderEmail: stored.SenderEmail,
		SenderName:  stored.SenderName,
	}, nil
}

func (s *MailSettingsService) Get(ctx context.Context) (*models.MailSettingsOutput, error) {
	if s.store == nil || s.sealer == nil {
		return s.envOutput(), nil
	}
	stored, err := s.store.GetMailSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mail settings: %w", err)
	}
	if stored == nil {
		return s.envOutput(), nil
	}
	password, err := s.openPassword(stored.Password)
	if err != nil {
		return nil, fmt.Errorf("decrypt smtp password: %w", err)
	}
	return &models.MailSettingsOutput{
		Host:        stored.Host,
		Port:        stored.Port,
		Username:    stored.Username,
		Password:    utils.Mask(password),
		SenderEmail: stored.SenderEmail,
		SenderName:  stored.SenderName,
		Source:      settingsSourceStored,
		UpdatedAt:   formatDate(stored.UpdatedAt, s.loc),
	}, nil
}

// Update stores the account. An empty password keeps the stored one.
func (s *MailSettingsService) Update(ctx context.Context, in models.MailSettingsInput) (*models.MailSettingsOutput, error) {
	if s.store == nil || s.sealer == nil {
		return nil, ErrMailSettingsDisabled
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	sealed := ""
	if in.Password != "" {
		var err error
		if sealed, err = s.sealer.Seal(in.Password); err != nil {
			return nil, fmt.Errorf("encrypt smtp password: %w", err)
		}
	} else {
		existing, err := s.store.GetMailSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load mail settings: %w", err)
		}
		if existing != nil {
			sealed = existing.Password
		}
	}
	err := s.store.UpsertMailSettings(ctx, &models.MailSettings{
		Host:        in.Host,
		Port:        in.Port,
		Username:    in.Username,
		Password:    sealed,
		SenderEmail: in.SenderEmail,
		SenderName:  in.SenderName,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("save mail settings: %w", err)
	}
	s.logger.Info("mail settings updated", "host", in.Host, "sender", in.SenderEmail)
	return s.Get(ctx)
}

func (s *MailSettingsService) openPassword(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	password, err := s.sealer.Open(sealed)
	if errors.Is(err, utils.ErrNotSealed) {
		return sealed, nil
	}
	return password, err
}

func (s *MailSettingsService) envOutput() *models.MailSettingsOutput {
	return &models.MailSettingsOutput{
		Host:        s.fallback.Host,
		Port:        s.fallback.Port,
		Username:    s.fallback.Username,
		Password:    utils.Mask(s.fallback.Password),
		SenderEmail: s.fallback.SenderEmail,
		SenderName:  s.fallback.SenderName,
		Source:      settingsSourceEnv,
	}
}
