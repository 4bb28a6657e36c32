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

type GenreService struct {
	db     *store.DB
	logger *slog.Logger
}

func NewGenreService(db *store.DB, logger *slog.Logger) *GenreService {
	return &GenreService{db: db, logger: logger}
}

func (s *GenreService) Add(ctx context.Context, in models.GenreInput) (uuid.UUID, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}
	existing, err := s.db.GenreByName(ctx, in.Name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find genre: %w", err)
	}
	if existing != nil {
		return uuid.Nil, ErrGenreExists
	}
	g := &models.Genre{Name: in.Name}
	if err := s.db.CreateGenre(ctx, g); err != nil {
		if store.IsUniqueViolation(err) {
			return uuid.Nil, ErrGenreExists
		}
		return uuid.Nil, fmt.Errorf("create genre: %w", err)
	}
	s.logger.Info("genre added", "id", g.ID, "name", g.Name)
	return g.ID, nil
}

func (s *GenreService) Update(ctx context.Context, id uuid.UUID, in models.GenreInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}
	g, err := s.db.GenreByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find genre: %w", err)
	}
	if g == nil {
		return ErrGenreNotFound
	}
	other, err := s.db.GenreByName(ctx, in.Name)
	if err != nil {
		return fmt.Errorf("find genre: %w", err)
	}
	if other != nil && other.ID != id {
		return ErrGenreExists
	}
	if err := s.db.RenameGenre(ctx, id, in.Name); err != nil {
		if store.IsUniqueViolation(err) {
			return ErrGenreExists
		}
		return fmt.Errorf("rename genre: %w", err)
	}
	return nil
}

func (s *GenreService) Delete(ctx context.Context, id uuid.UUID) error {
	g, err := s.db.GenreByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find genre: %w", err)
	}
	if g == nil {
		return ErrGenreNotFound
	}
	n, err := s.db.BooksCountForGenre(ctx, id)
	if err != nil {
		return fmt.Errorf("count genre books: %w", err)
	}
	if n > 0 {
		return ErrGenreHasBooks
	}
	if err := s.db.DeleteGenre(ctx, id); err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	s.logger.Info("genre deleted", "id", id)
	return nil
}

func (s *GenreService) ByID(ctx context.Context, id uuid.UUID) (*models.GenreOutput, error) {
	g, err := s.db.GenreByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find genre: %w", err)
	}
	if g == nil {
		return nil, ErrGenreNotFound
	}
	out := toGenreOutput(*g)
	return &out, nil
}

func (s *GenreService) All(ctx context.Context) ([]models.GenreOutput, error) {
	genres, err := s.db.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if len(genres) == 0 {
		return nil, ErrNoGenresFound
	}
	return toGenreOutputs(genres), nil
}

func (s *GenreService) Page(ctx context.Context, p models.PaginatorInput) (*models.Paged[models.GenreOutput], error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	genres, total, err := s.db.GenresPage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("page genres: %w", err)
	}
	if len(genres) == 0 {
		return nil, ErrNoGenresFound
	}
	return &models.Paged[models.GenreOutput]{Result: toGenreOutputs(genres), TotalCount: total}, nil
}

func (s *GenreService) Search(ctx context.Context, name string) ([]models.GenreOutput, error) {
	genres, err := s.db.SearchGenres(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search genres: %w", err)
	}
	if len(genres) == 0 {
		return nil, ErrNoGenresFound
	}
	return toGenreOutputs(genres), nil
}
