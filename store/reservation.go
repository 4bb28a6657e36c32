package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kevinaaaquil/library/backend/models"
)

func (db *DB) CreateReservation(ctx context.Context, r *models.BookReservation) error {
	return db.conn(ctx).Omit("User", "Book").Create(r).Error
}

// ReservationByID loads the reservation with its user and book.
func (db *DB) ReservationByID(ctx context.Context, id uuid.UUID) (*models.BookReservation, error) {
	return first[models.BookReservation](db.conn(ctx).Preload("User").Preload("Book").Where("id = ?", id))
}

// PendingReservationsPage pages unreviewed reservations, oldest first.
func (db *DB) PendingReservationsPage(ctx context.Context, p models.PaginatorInput) ([]models.BookReservation, int64, error) {
	q := db.conn(ctx).Model(&models.BookReservation{}).Where("is_reviewed = ?", false)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rs []models.BookReservation
	err := q.Session(&gorm.Session{}).
		Preload("User").Preload("Book").
		Scopes(paginate(p)).
		Order("created_on").
		Find(&rs).Error
	return rs, total, err
}

// ApproveReservation moves an unreviewed reservation to approved. It matches nothing when
// the reservation was already reviewed.
func (db *DB) ApproveReservation(ctx context.Context, id, librarianID uuid.UUID, receive, ret time.Time) (bool, error) {
	res := db.conn(ctx).Model(&models.BookReservation{}).
		Where("id = ? AND is_reviewed = ?", id, false).
		Updates(map[string]any{
			"is_approved":  true,
			"is_reviewed":  true,
			"librarian_id": librarianID,
			"receive_date": receive,
			"return_date":  ret,
		})
	return res.RowsAffected == 1, res.Error
}

// RejectReservation moves an unreviewed reservation to rejected. It matches nothing when
// the reservation was already reviewed.
func (db *DB) RejectReservation(ctx context.Context, id, librarianID uuid.UUID) (bool, error) {
	res := db.conn(ctx).Model(&models.BookReservation{}).
		Where("id = ? AND is_reviewed = ?", id, false).
		Updates(map[string]any{
			"is_approved":  false,
			"is_reviewed":  true,
			"librarian_id": librarianID,
		})
	return res.RowsAffected == 1, res.Error
}
