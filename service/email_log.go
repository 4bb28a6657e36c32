package service

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/library/backend/apperr"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

var ErrEmailLogLimit = apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", store.MaxEmailLogs))

type EmailLogReader interface {
	ListEmailLogs(ctx context.Context, toEmail string, limit int64) ([]models.EmailLog, error)
}

type EmailLogService struct {
	logs EmailLogReader
}

// NewEmailLogService accepts a nil logs; listing then fails as unavailable.
func NewEmailLogService(logs EmailLogReader) *EmailLogService {
	return &EmailLogService{logs: logs}
}

// Recent returns up to limit entries, newest first.
func (s *EmailLogService) Recent(ctx context.Context, toEmail string, limit int64) ([]models.EmailLog, error) {
	if limit < 1 || limit > store.MaxEmailLogs {
		return nil, ErrEmailLogLimit
	}
	if s.logs == nil {
		return nil, ErrEmailLogDisabled
	}
	logs, err := s.logs.ListEmailLogs(ctx, normalizeEmail(toEmail), limit)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return logs, nil
}
