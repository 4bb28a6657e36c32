package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/validation"
)

// CoverStore keeps book cover images. BlobService implements it.
type CoverStore interface {
	UploadCover(ctx context.Context, title string, f *Upload) (string, error)
	ReplaceCover(ctx context.Context, oldURL, title string, f *Upload) (string, error)
	RenameCover(ctx context.Context, oldURL, newTitle string) (string, error)
	RemoveCover(ctx context.Context, coverURL string) error
}

type BookService struct {
	db     *store.DB
	covers CoverStore
	loc    *time.Location
	logger *slog.Logger
}

// NewBookService accepts a nil covers; cover uploads then fail as unavailable.
func NewBookService(db *store.DB, covers CoverStore, loc *time.Location, logger *slog.Logger) *BookService {
	return &BookService{db: db, covers: covers, loc: loc, logger: logger}
}

// Add creates a book with all its copies on the shelf. cover may be nil.
func (s *BookService) Add(ctx context.Context, in models.BookInput, cover *Upload) (uuid.UUID, error) {
	normalizeBookInput(&in)
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}
	existing, err := s.db.BookByTitle(ctx, in.Title)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find book: %w", err)
	}
	if existing != nil {
		return uuid.Nil, ErrBookTitleExists
	}
	authors, genres, err := s.resolveLinks(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}
	if in.TotalQuantity <= 0 {
		return uuid.Nil, ErrBookQuantityInvalid
	}

	book := &models.Book{
		Title:           in.Title,
		Description:     in.Description,
		IsAvailable:     true,
		TotalQuantity:   in.TotalQuantity,
		CurrentQuantity: in.TotalQuantity,
		BorrowedTime:    models.StandardBorrowPeriodDays,
		Sku:             uuid.NewString(),
		Authors:         authors,
		Genres:          genres,
	}
	if cover != nil {
		if s.covers == nil {
			return uuid.Nil, ErrBlobStorageDisabled
		}
		if book.ImageURL, err = s.covers.UploadCover(ctx, in.Title, cover); err != nil {
			return uuid.Nil, err
		}
	}
	if err := s.db.CreateBook(ctx, book); err != nil {
		s.dropCover(ctx, book.ImageURL)
		if store.IsUniqueViolation(err) {
			return uuid.Nil, ErrBookTitleExists
		}
		return uuid.Nil, fmt.Errorf("create book: %w", err)
	}
	s.logger.Info("book added", "id", book.ID, "title", book.Title, "quantity", book.TotalQuantity)
	return book.ID, nil
}

// Update rewrites the book's details, links, cover and quantity. Quantity changes shift the
// copies on the shelf by the same difference and never drop below the borrowed copies.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, in models.BookInput, cover *Upload) error {
	normalizeBookInput(&in)
	if err := validation.Struct(in); err != nil {
		return err
	}
	book, err := s.db.BookByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return ErrBookNotFound
	}
	other, err := s.db.BookByTitle(ctx, in.Title)
	if err != nil {
		return fmt.Errorf("find book: %w", err)
	}
	if other != nil && other.ID != id {
		return ErrBookTitleExists
	}
	authors, genres, err := s.resolveLinks(ctx, in)
	if err != nil {
		return err
	}
	if in.TotalQuantity < 0 {
		return ErrBookQuantityLessThanZero
	}
	if in.TotalQuantity < book.Borrowed() {
		return errQuantityBelowBorrowed(book.Borrowed())
	}

	if cover != nil && s.covers == nil {
		return ErrBlobStorageDisabled
	}

	// cover changes run last; a storage error rolls the row update back
	current := *book
	book.Title = in.Title
	book.Description = in.Description
	book.Authors = authors
	book.Genres = genres
	err = s.db.Transaction(ctx, func(tx *store.DB) error {
		ok, err := tx.UpdateBookQuantity(ctx, id, in.TotalQuantity, in.Availability)
		if err != nil {
			return err
		}
		if !ok {
			stored, err := tx.BookByID(ctx, id)
			if err != nil {
				return err
			}
			if stored == nil {
				return ErrBookNotFound
			}
			return errQuantityBelowBorrowed(stored.Borrowed())
		}
		if err := tx.UpdateBookDetails(ctx, book); err != nil {
			return err
		}
		imageURL, err := s.updateCover(ctx, &current, in, cover)
		if err != nil {
			return err
		}
		if imageURL == current.ImageURL {
			return nil
		}
		book.ImageURL = imageURL
		return tx.SetBookImageURL(ctx, id, imageURL)
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrBookTitleExists
		}
		if isAppError(err) {
			return err
		}
		return fmt.Errorf("update book: %w", err)
	}
	s.logger.Info("book updated", "id", id, "title", book.Title, "quantity", in.TotalQuantity)
	return nil
}

func (s *BookService) updateCover(ctx context.Context, book *models.Book, in models.BookInput, cover *Upload) (string, error) {
	current := book.ImageURL
	switch {
	case in.DeleteCover:
		if current != "" && s.covers != nil {
			if err := s.covers.RemoveCover(ctx, current); err != nil {
				return "", err
			}
		}
		return "", nil
	case cover != nil && current != "":
		return s.covers.ReplaceCover(ctx, current, in.Title, cover)
	case cover != nil:
		return s.covers.UploadCover(ctx, in.Title, cover)
	case in.Title != book.Title && current != "" && s.covers != nil:
		return s.covers.RenameCover(ctx, current, in.Title)
	default:
		return current, nil
	}
}

// Delete soft-deletes the book and removes its cover.
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	book, err := s.db.BookByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return ErrBookNotFound
	}
	if err := s.db.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	s.dropCover(ctx, book.ImageURL)
	s.logger.Info("book deleted", "id", id, "title", book.Title)
	return nil
}

func (s *BookService) ByID(ctx context.Context, id uuid.UUID) (*models.BookOutput, error) {
	book, err := s.db.BookByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	out := toBookOutput(*book, s.loc)
	return &out, nil
}

func (s *BookService) All(ctx context.Context) ([]models.BookOutput, error) {
	books, err := s.db.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrNoBooksFound
	}
	return toBookOutputs(books, s.loc), nil
}

func (s *BookService) Page(ctx context.Context, p models.PaginatorInput) (*models.Paged[models.BookOutput], error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	books, total, err := s.db.BooksPage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("page books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrNoBooksFound
	}
	return &models.Paged[models.BookOutput]{Result: toBookOutputs(books, s.loc), TotalCount: total}, nil
}

func (s *BookService) Search(ctx context.Context, in models.SearchBookInput) (*models.Paged[models.BookOutput], error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	books, total, err := s.db.SearchBooks(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrNoBooksFound
	}
	return &models.Paged[models.BookOutput]{Result: toBookOutputs(books, s.loc), TotalCount: total}, nil
}

// BooksCountForAuthor counts the live books linked to an existing author.
func (s *BookService) BooksCountForAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	a, err := s.db.AuthorByID(ctx, authorID)
	if err != nil {
		return 0, fmt.Errorf("find author: %w", err)
	}
	if a == nil {
		return 0, ErrAuthorNotFound
	}
	return s.db.BooksCountForAuthor(ctx, authorID)
}

func (s *BookService) BooksCountForGenre(ctx context.Context, genreID uuid.UUID) (int64, error) {
	g, err := s.db.GenreByID(ctx, genreID)
	if err != nil {
		return 0, fmt.Errorf("find genre: %w", err)
	}
	if g == nil {
		return 0, ErrGenreNotFound
	}
	return s.db.BooksCountForGenre(ctx, genreID)
}

// resolveLinks loads the named authors and genres, keeping input order.
func (s *BookService) resolveLinks(ctx context.Context, in models.BookInput) ([]models.Author, []models.Genre, error) {
	if len(in.Authors) == 0 {
		return nil, nil, ErrNoAuthorsFound
	}
	if len(in.Genres) == 0 {
		return nil, nil, ErrNoGenresFound
	}
	if hasDuplicates(in.Authors) {
		return nil, nil, ErrDuplicateAuthorFound
	}

	found, err := s.db.AuthorsByNames(ctx, in.Authors)
	if err != nil {
		return nil, nil, fmt.Errorf("find authors: %w", err)
	}
	byName := make(map[string]models.Author, len(found))
	for _, a := range found {
		byName[a.Name] = a
	}
	authors := make([]models.Author, 0, len(in.Authors))
	for _, name := range in.Authors {
		a, ok := byName[name]
		if !ok {
			return nil, nil, errAuthorNameNotFound(name)
		}
		authors = append(authors, a)
	}

	genreNames := dedupe(in.Genres)
	foundGenres, err := s.db.GenresByNames(ctx, genreNames)
	if err != nil {
		return nil, nil, fmt.Errorf("find genres: %w", err)
	}
	genreByName := make(map[string]models.Genre, len(foundGenres))
	for _, g := range foundGenres {
		genreByName[g.Name] = g
	}
	genres := make([]models.Genre, 0, len(genreNames))
	for _, name := range genreNames {
		g, ok := genreByName[name]
		if !ok {
			return nil, nil, errGenreNameNotFound(name)
		}
		genres = append(genres, g)
	}
	return authors, genres, nil
}

func (s *BookService) dropCover(ctx context.Context, coverURL string) {
	if coverURL == "" || s.covers == nil {
		return
	}
	if err := s.covers.RemoveCover(ctx, coverURL); err != nil {
		s.logger.Warn("cover cleanup failed", "url", coverURL, "error", err)
	}
}

func normalizeBookInput(in *models.BookInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	for i := range in.Authors {
		in.Authors[i] = strings.TrimSpace(in.Authors[i])
	}
	for i := range in.Genres {
		in.Genres[i] = strings.TrimSpace(in.Genres[i])
	}
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
