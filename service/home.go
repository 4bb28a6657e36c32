package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/validation"
)

const newBooksWindow = 14 * 24 * time.Hour

// HomeService serves the public landing page counters.
type HomeService struct {
	db  *store.DB
	loc *time.Location
	now func() time.Time
}

func NewHomeService(db *store.DB, loc *time.Location) *HomeService {
	return &HomeService{db: db, loc: loc, now: time.Now}
}

// LastBooks pages the books added in the last two weeks, newest first.
func (s *HomeService) LastBooks(ctx context.Context, p models.PaginatorInput) (*models.LastBooksOutput, error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	books, total, err := s.db.BooksCreatedSince(ctx, s.now().Add(-newBooksWindow), p)
	if err != nil {
		return nil, fmt.Errorf("recent books: %w", err)
	}
	return &models.LastBooksOutput{RetrievedBooks: toBookOutputs(books, s.loc), BooksCount: total}, nil
}

func (s *HomeService) BooksCount(ctx context.Context) (int64, error) {
	return s.db.BooksCount(ctx)
}

// GenresCount counts genres assigned to at least one live book.
func (s *HomeService) GenresCount(ctx context.Context) (int64, error) {
	return s.db.AssignedGenresCount(ctx)
}

func (s *HomeService) ReadersCount(ctx context.Context) (int64, error) {
	return s.db.UsersInRoleCount(ctx, models.RoleReader)
}
