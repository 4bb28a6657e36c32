package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
)

func (db *DB) GenreByID(ctx context.Context, id uuid.UUID) (*models.Genre, error) {
	return first[models.Genre](db.conn(ctx).Where("id = ?", id))
}

func (db *DB) GenreByName(ctx context.Context, name string) (*models.Genre, error) {
	return first[models.Genre](db.conn(ctx).Where("name = ?", name))
}

// GenresByNames returns the live genres whose names are in names, in no particular order.
func (db *DB) GenresByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	var genres []models.Genre
	err := db.conn(ctx).Where("name IN ?", names).Find(&genres).Error
	return genres, err
}

func (db *DB) CreateGenre(ctx context.Context, g *models.Genre) error {
	return db.conn(ctx).Create(g).Error
}

func (db *DB) RenameGenre(ctx context.Context, id uuid.UUID, name string) error {
	return db.conn(ctx).Model(&models.Genre{}).Where("id = ?", id).Update("name", name).Error
}

// DeleteGenre soft-deletes the genre.
func (db *DB) DeleteGenre(ctx context.Context, id uuid.UUID) error {
	return db.conn(ctx).Where("id = ?", id).Delete(&models.Genre{}).Error
}

func (db *DB) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := db.conn(ctx).Order("name").Find(&genres).Error
	return genres, err
}

func (db *DB) GenresPage(ctx context.Context, p models.PaginatorInput) ([]models.Genre, int64, error) {
	var total int64
	if err := db.conn(ctx).Model(&models.Genre{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var genres []models.Genre
	err := db.conn(ctx).Scopes(paginate(p)).Order("name").Find(&genres).Error
	return genres, total, err
}

func (db *DB) SearchGenres(ctx context.Context, text string) ([]models.Genre, error) {
	var genres []models.Genre
	err := db.conn(ctx).Where(likeOn("name"), containsPattern(text)).Order("name").Find(&genres).Error
	return genres, err
}

// BooksCountForGenre counts live books linked to the genre.
func (db *DB) BooksCountForGenre(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := db.conn(ctx).Table("genres_books").
		Joins("JOIN books ON books.id = genres_books.book_id AND books.deleted_on IS NULL").
		Where("genres_books.genre_id = ?", id).
		Count(&n).Error
	return n, err
}

// AssignedGenresCount counts distinct genres linked to at least one live book.
func (db *DB) AssignedGenresCount(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn(ctx).Table("genres_books").
		Joins("JOIN books ON books.id = genres_books.book_id AND books.deleted_on IS NULL").
		Joins("JOIN genres ON genres.id = genres_books.genre_id AND genres.deleted_on IS NULL").
		Distinct("genres_books.genre_id").
		Count(&n).Error
	return n, err
}
