package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/validation"
)

type AuthorService struct {
	db     *store.DB
	logger *slog.Logger
}

func NewAuthorService(db *store.DB, logger *slog.Logger) *AuthorService {
	return &AuthorService{db: db, logger: logger}
}

func (s *AuthorService) Add(ctx context.Context, in models.AuthorInput) (uuid.UUID, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}
	existing, err := s.db.AuthorByName(ctx, in.Name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find author: %w", err)
	}
	if existing != nil {
		return uuid.Nil, ErrAuthorExists
	}
	a := &models.Author{Name: in.Name}
	if err := s.db.CreateAuthor(ctx, a); err != nil {
		if store.IsUniqueViolation(err) {
			return uuid.Nil, ErrAuthorExists
		}
		return uuid.Nil, fmt.Errorf("create author: %w", err)
	}
	s.logger.Info("author added", "id", a.ID, "name", a.Name)
	return a.ID, nil
}

func (s *AuthorService) Update(ctx context.Context, id uuid.UUID, in models.AuthorInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}
	a, err := s.db.AuthorByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find author: %w", err)
	}
	if a == nil {
		return ErrAuthorNotFound
	}
	other, err := s.db.AuthorByName(ctx, in.Name)
	if err != nil {
		return fmt.Errorf("find author: %w", err)
	}
	if other != nil && other.ID != id {
		return ErrAuthorExists
	}
	if err := s.db.RenameAuthor(ctx, id, in.Name); err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAuthorExists
		}
		return fmt.Errorf("rename author: %w", err)
	}
	return nil
}

func (s *AuthorService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.db.AuthorByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find author: %w", err)
	}
	if a == nil {
		return ErrAuthorNotFound
	}
	n, err := s.db.BooksCountForAuthor(ctx, id)
	if err != nil {
		return fmt.Errorf("count author books: %w", err)
	}
	if n > 0 {
		return ErrAuthorHasBooks
	}
	if err := s.db.DeleteAuthor(ctx, id); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	s.logger.Info("author deleted", "id", id)
	return nil
}

func (s *AuthorService) ByID(ctx context.Context, id uuid.UUID) (*models.AuthorOutput, error) {
	a, err := s.db.AuthorByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find author: %w", err)
	}
	if a == nil {
		return nil, ErrAuthorNotFound
	}
	out := toAuthorOutput(*a)
	return &out, nil
}

func (s *AuthorService) All(ctx context.Context) ([]models.AuthorOutput, error) {
	authors, err := s.db.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	if len(authors) == 0 {
		return nil, ErrNoAuthorsFound
	}
	return toAuthorOutputs(authors), nil
}

func (s *AuthorService) Page(ctx context.Context, p models.PaginatorInput) (*models.Paged[models.AuthorOutput], error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	authors, total, err := s.db.AuthorsPage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("page authors: %w", err)
	}
	if len(authors) == 0 {
		return nil, ErrNoAuthorsFound
	}
	return &models.Paged[models.AuthorOutput]{Result: toAuthorOutputs(authors), TotalCount: total}, nil
}

func (s *AuthorService) Search(ctx context.Context, name string) ([]models.AuthorOutput, error) {
	authors, err := s.db.SearchAuthors(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	if len(authors) == 0 {
		return nil, ErrNoAuthorsFound
	}
	return toAuthorOutputs(authors), nil
}
