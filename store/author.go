package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
)

func (db *DB) AuthorByID(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	return first[models.Author](db.conn(ctx).Where("id = ?", id))
}

func (db *DB) AuthorByName(ctx context.Context, name string) (*models.Author, error) {
	return first[models.Author](db.conn(ctx).Where("name = ?", name))
}

// AuthorsByNames returns the live authors whose names are in names, in no particular order.
func (db *DB) AuthorsByNames(ctx context.Context, names []string) ([]models.Author, error) {
	var authors []models.Author
	err := db.conn(ctx).Where("name IN ?", names).Find(&authors).Error
	return authors, err
}

func (db *DB) CreateAuthor(ctx context.Context, a *models.Author) error {
	return db.conn(ctx).Create(a).Error
}

func (db *DB) RenameAuthor(ctx context.Context, id uuid.UUID, name string) error {
	return db.conn(ctx).Model(&models.Author{}).Where("id = ?", id).Update("name", name).Error
}

// DeleteAuthor soft-deletes the author.
func (db *DB) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	return db.conn(ctx).Where("id = ?", id).Delete(&models.Author{}).Error
}

func (db *DB) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	err := db.conn(ctx).Order("name").Find(&authors).Error
	return authors, err
}

func (db *DB) AuthorsPage(ctx context.Context, p models.PaginatorInput) ([]models.Author, int64, error) {
	var total int64
	if err := db.conn(ctx).Model(&models.Author{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var authors []models.Author
	err := db.conn(ctx).Scopes(paginate(p)).Order("name").Find(&authors).Error
	return authors, total, err
}

func (db *DB) SearchAuthors(ctx context.Context, text string) ([]models.Author, error) {
	var authors []models.Author
	err := db.conn(ctx).Where(likeOn("name"), containsPattern(text)).Order("name").Find(&authors).Error
	return authors, err
}

// BooksCountForAuthor counts live books linked to the author.
func (db *DB) BooksCountForAuthor(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := db.conn(ctx).Table("authors_books").
		Joins("JOIN books ON books.id = authors_books.book_id AND books.deleted_on IS NULL").
		Where("authors_books.author_id = ?", id).
		Count(&n).Error
	return n, err
}
