package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
	"github.com/kevinaaaquil/library/backend/validation"
)

const (
	subjectApproved = "Book reservation approved"
	subjectRejected = "Rejected book reservation request"
)

// ReservationService runs the request, approve and reject workflow. A reservation is
// reviewed exactly once; approval takes one copy off the shelf in the same transaction.
type ReservationService struct {
	db       *store.DB
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func NewReservationService(db *store.DB, notifier Notifier, loc *time.Location, logger *slog.Logger) *ReservationService {
	return &ReservationService{db: db, notifier: notifier, loc: loc, now: time.Now, logger: logger}
}

// Add files an unreviewed request by userID for bookID. No copy is held until approval.
func (s *ReservationService) Add(ctx context.Context, userID, bookID uuid.UUID) (uuid.UUID, error) {
	u, err := s.db.UserByID(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return uuid.Nil, asValidation(ErrUserNotFound)
	}
	book, err := s.db.BookByID(ctx, bookID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return uuid.Nil, asValidation(ErrBookNotFound)
	}
	if !book.IsAvailable {
		return uuid.Nil, ErrBookNotAvailable
	}
	if book.CurrentQuantity <= 0 {
		return uuid.Nil, ErrBookQuantityIsZero
	}
	r := &models.BookReservation{UserID: userID, BookID: bookID}
	if err := s.db.CreateReservation(ctx, r); err != nil {
		return uuid.Nil, fmt.Errorf("create reservation: %w", err)
	}
	s.logger.Info("reservation requested", "id", r.ID, "user", userID, "book", bookID)
	return r.ID, nil
}

// Approve lends one copy to the requester and emails them the message.
func (s *ReservationService) Approve(ctx context.Context, librarianID uuid.UUID, in models.ReservationMessageInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	r, book, requester, err := s.loadForReview(ctx, librarianID, in.BookReservationID, ErrSelfApproval)
	if err != nil {
		return err
	}
	if book.CurrentQuantity <= 0 {
		return ErrBookQuantityIsZero
	}
	if !book.IsAvailable {
		return ErrBookNotAvailable
	}

	receive := s.now().UTC()
	ret := receive.AddDate(0, 0, book.BorrowedTime)
	err = s.db.Transaction(ctx, func(tx *store.DB) error {
		ok, err := tx.ApproveReservation(ctx, r.ID, librarianID, receive, ret)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReservationAlreadyReviewed
		}
		ok, err = tx.DecrementBookQuantity(ctx, book.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBookNotAvailable
		}
		return nil
	})
	if err != nil {
		if isAppError(err) {
			return err
		}
		return fmt.Errorf("approve reservation: %w", err)
	}
	s.logger.Info("reservation approved", "id", r.ID, "book", book.ID, "librarian", librarianID)

	s.notify(ctx, Email{
		To:            requester.Email,
		Subject:       subjectApproved,
		HTML:          "<p>" + html.EscapeString(in.Message) + "</p>",
		Kind:          models.EmailKindReservationApproved,
		UserID:        requester.ID.String(),
		ReservationID: r.ID.String(),
	})
	return nil
}

// Reject closes the request without touching stock and emails the reason.
func (s *ReservationService) Reject(ctx context.Context, librarianID uuid.UUID, in models.ReservationRejectInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	r, _, requester, err := s.loadForReview(ctx, librarianID, in.BookReservationID, ErrSelfRejection)
	if err != nil {
		return err
	}
	ok, err := s.db.RejectReservation(ctx, r.ID, librarianID)
	if err != nil {
		return fmt.Errorf("reject reservation: %w", err)
	}
	if !ok {
		return ErrReservationAlreadyReviewed
	}
	s.logger.Info("reservation rejected", "id", r.ID, "librarian", librarianID)

	s.notify(ctx, Email{
		To:            requester.Email,
		Subject:       subjectRejected,
		HTML:          "<p>" + html.EscapeString(in.Message) + "</p>",
		Kind:          models.EmailKindReservationRejected,
		UserID:        requester.ID.String(),
		ReservationID: r.ID.String(),
	})
	return nil
}

// loadForReview runs the checks shared by approve and reject.
func (s *ReservationService) loadForReview(ctx context.Context, librarianID, id uuid.UUID, selfErr error) (*models.BookReservation, *models.Book, *models.User, error) {
	r, err := s.db.ReservationByID(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find reservation: %w", err)
	}
	if r == nil {
		return nil, nil, nil, ErrReservationNotFound
	}
	if r.UserID == librarianID {
		return nil, nil, nil, selfErr
	}
	if r.IsReviewed {
		return nil, nil, nil, ErrReservationAlreadyReviewed
	}
	book, err := s.db.BookByID(ctx, r.BookID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return nil, nil, nil, ErrBookNotFound
	}
	requester, err := s.db.UserByID(ctx, r.UserID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find user: %w", err)
	}
	if requester == nil {
		return nil, nil, nil, ErrUserNotFound
	}
	librarian, err := s.db.UserByID(ctx, librarianID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find librarian: %w", err)
	}
	if librarian == nil {
		return nil, nil, nil, ErrLibrarianNotFound
	}
	return r, book, requester, nil
}

// notify runs after the review is committed; a failed send is logged, never rolled back.
func (s *ReservationService) notify(ctx context.Context, e Email) {
	if err := s.notifier.Send(ctx, e); err != nil {
		s.logger.Warn("reservation email failed", "reservation", e.ReservationID, "to", e.To, "error", err)
	}
}

// Pending pages the unreviewed requests, oldest first.
func (s *ReservationService) Pending(ctx context.Context, p models.PaginatorInput) (*models.Paged[models.ReservationListItem], error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	rs, total, err := s.db.PendingReservationsPage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("page reservations: %w", err)
	}
	if len(rs) == 0 {
		return nil, ErrAllReservationsReviewed
	}
	items := make([]models.ReservationListItem, 0, len(rs))
	for _, r := range rs {
		items = append(items, toReservationListItem(r, s.loc))
	}
	return &models.Paged[models.ReservationListItem]{Result: items, TotalCount: total}, nil
}

func (s *ReservationService) ByID(ctx context.Context, id uuid.UUID) (*models.ReservationDetails, error) {
	r, err := s.db.ReservationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}
	if r.IsReviewed {
		return nil, ErrReservationReviewed
	}
	out := toReservationDetails(*r, s.loc)
	return &out, nil
}
