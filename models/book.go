package models

import "github.com/google/uuid"

const (
	BookTitleMaxLength       = 256
	BookDescriptionMaxLength = 1028
	BookQuantityMax          = 1000
	StandardBorrowPeriodDays = 30
)

type Book struct {
	Base
	Deletable
	Title           string            `gorm:"size:256;not null;uniqueIndex:idx_books_title_live,where:deleted_on IS NULL" json:"title"`
	Description     string            `gorm:"size:1028" json:"description"`
	ImageURL        string            `gorm:"size:2048" json:"imageUrl"`
	IsAvailable     bool              `gorm:"not null" json:"isAvailable"`
	TotalQuantity   int               `gorm:"not null;check:chk_books_total,total_quantity >= 0" json:"totalQuantity"`
	CurrentQuantity int               `gorm:"not null;check:chk_books_current,current_quantity >= 0 AND current_quantity <= total_quantity" json:"currentQuantity"`
	BorrowedTime    int               `gorm:"not null;default:30" json:"borrowedTime"`
	Sku             string            `gorm:"size:64;not null" json:"sku"`
	Authors         []Author          `gorm:"many2many:authors_books;" json:"authors,omitempty"`
	Genres          []Genre           `gorm:"many2many:genres_books;" json:"genres,omitempty"`
	Reservations    []BookReservation `json:"-"`
	Comments        []Comment         `json:"-"`
}

// Borrowed is the number of copies currently lent out.
func (b *Book) Borrowed() int {
	return b.TotalQuantity - b.CurrentQuantity
}

func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}

func (b *Book) GenreNames() []string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	return names
}

type Comment struct {
	Base
	Content string    `gorm:"size:500;not null" json:"content"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	BookID  uuid.UUID `gorm:"type:uuid;not null;index" json:"bookId"`
}
