package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kevinaaaquil/library/backend/models"
)

func (db *DB) books(ctx context.Context) *gorm.DB {
	return db.conn(ctx).Preload("Authors").Preload("Genres")
}

func (db *DB) BookByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return first[models.Book](db.books(ctx).Where("id = ?", id))
}

func (db *DB) BookByTitle(ctx context.Context, title string) (*models.Book, error) {
	return first[models.Book](db.books(ctx).Where("title = ?", title))
}

// CreateBook inserts the book and its author and genre links.
func (db *DB) CreateBook(ctx context.Context, b *models.Book) error {
	return db.conn(ctx).Omit("Authors.*", "Genres.*").Create(b).Error
}

// UpdateBookDetails writes title, description and cover url and replaces the author and
// genre links. Quantities are left alone; see UpdateBookQuantity.
func (db *DB) UpdateBookDetails(ctx context.Context, b *models.Book) error {
	return db.Transaction(ctx, func(tx *DB) error {
		err := tx.conn(ctx).Model(&models.Book{}).Where("id = ?", b.ID).Updates(map[string]any{
			"title":       b.Title,
			"description": b.Description,
			"image_url":   b.ImageURL,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(b).Association("Authors").Replace(b.Authors); err != nil {
			return err
		}
		return tx.conn(ctx).Model(b).Association("Genres").Replace(b.Genres)
	})
}

func (db *DB) SetBookImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	return db.conn(ctx).Model(&models.Book{}).Where("id = ?", id).Update("image_url", imageURL).Error
}

// UpdateBookQuantity sets total to the new value and shifts current by the same difference,
// relative to the stored row. It matches nothing when the new total is below the number of
// borrowed copies. Availability becomes available AND current > 0.
func (db *DB) UpdateBookQuantity(ctx context.Context, id uuid.UUID, total int, available bool) (bool, error) {
	var availability any = false
	if available {
		availability = gorm.Expr("current_quantity + (? - total_quantity) > 0", total)
	}
	res := db.conn(ctx).Model(&models.Book{}).
		Where("id = ? AND total_quantity - current_quantity <= ?", id, total).
		Updates(map[string]any{
			"current_quantity": gorm.Expr("current_quantity + (? - total_quantity)", total),
			"total_quantity":   total,
			"is_available":     availability,
		})
	return res.RowsAffected == 1, res.Error
}

// DecrementBookQuantity lends one copy. It matches nothing unless the book is available
// with at least one copy, and clears availability when the last copy goes.
func (db *DB) DecrementBookQuantity(ctx context.Context, id uuid.UUID) (bool, error) {
	res := db.conn(ctx).Model(&models.Book{}).
		Where("id = ? AND current_quantity > 0 AND is_available = ?", id, true).
		Updates(map[string]any{
			"current_quantity": gorm.Expr("current_quantity - 1"),
			"is_available":     gorm.Expr("current_quantity > 1"),
		})
	return res.RowsAffected == 1, res.Error
}

// DeleteBook drops the book's links, closes its unreviewed reservations as rejected and
// soft-deletes it.
func (db *DB) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return db.Transaction(ctx, func(tx *DB) error {
		b := &models.Book{Base: models.Base{ID: id}}
		err := tx.conn(ctx).Model(&models.BookReservation{}).
			Where("book_id = ? AND is_reviewed = ?", id, false).
			Updates(map[string]any{"is_reviewed": true, "is_approved": false}).Error
		if err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(b).Association("Authors").Clear(); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(b).Association("Genres").Clear(); err != nil {
			return err
		}
		return tx.conn(ctx).Where("id = ?", id).Delete(&models.Book{}).Error
	})
}

func (db *DB) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := db.books(ctx).Order("title").Find(&books).Error
	return books, err
}

func (db *DB) BooksPage(ctx context.Context, p models.PaginatorInput) ([]models.Book, int64, error) {
	return db.pageBooks(ctx, db.conn(ctx).Model(&models.Book{}), p, "title")
}

// SearchBooks filters on every non-empty field of in (substring, case-insensitive).
func (db *DB) SearchBooks(ctx context.Context, in models.SearchBookInput) ([]models.Book, int64, error) {
	q := db.conn(ctx).Model(&models.Book{})
	if in.Title != "" {
		q = q.Where(likeOn("books.title"), containsPattern(in.Title))
	}
	if in.Description != "" {
		q = q.Where(likeOn("books.description"), containsPattern(in.Description))
	}
	if in.Author != "" {
		sub := db.conn(ctx).Table("authors_books").
			Select("authors_books.book_id").
			Joins("JOIN authors ON authors.id = authors_books.author_id AND authors.deleted_on IS NULL").
			Where(likeOn("authors.name"), containsPattern(in.Author))
		q = q.Where("books.id IN (?)", sub)
	}
	if in.Genre != "" {
		sub := db.conn(ctx).Table("genres_books").
			Select("genres_books.book_id").
			Joins("JOIN genres ON genres.id = genres_books.genre_id AND genres.deleted_on IS NULL").
			Where(likeOn("genres.name"), containsPattern(in.Genre))
		q = q.Where("books.id IN (?)", sub)
	}
	return db.pageBooks(ctx, q, in.PaginatorInput, "title")
}

// BooksCreatedSince pages books created at or after since, newest first.
func (db *DB) BooksCreatedSince(ctx context.Context, since time.Time, p models.PaginatorInput) ([]models.Book, int64, error) {
	q := db.conn(ctx).Model(&models.Book{}).Where("created_on >= ?", since)
	return db.pageBooks(ctx, q, p, "created_on DESC")
}

func (db *DB) pageBooks(ctx context.Context, q *gorm.DB, p models.PaginatorInput, order string) ([]models.Book, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var books []models.Book
	err := q.Session(&gorm.Session{}).
		Preload("Authors").Preload("Genres").
		Scopes(paginate(p)).
		Order(order).
		Find(&books).Error
	return books, total, err
}

func (db *DB) BooksCount(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn(ctx).Model(&models.Book{}).Count(&n).Error
	return n, err
}
