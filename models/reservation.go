package models

import (
	"time"

	"github.com/google/uuid"
)

// BookReservation is a reader's request to borrow a copy. It is reviewed at most once.
type BookReservation struct {
	Base
	Deletable
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User        User       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	BookID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"bookId"`
	Book        Book       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	LibrarianID *uuid.UUID `gorm:"type:uuid" json:"librarianId,omitempty"`
	IsApproved  bool       `gorm:"not null;default:false" json:"isApproved"`
	IsReviewed  bool       `gorm:"not null;default:false;index" json:"isReviewed"`
	ReceiveDate *time.Time `json:"receiveDate,omitempty"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
}
