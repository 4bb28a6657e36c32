package service

import (
	"strings"
	"time"

	"github.com/kevinaaaquil/library/backend/models"
)

const displayDateLayout = "02/01/2006 15:04:05"

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayDateLayout)
}

func toAuthorOutput(a models.Author) models.AuthorOutput {
	return models.AuthorOutput{ID: a.ID, Name: a.Name}
}

func toAuthorOutputs(authors []models.Author) []models.AuthorOutput {
	out := make([]models.AuthorOutput, 0, len(authors))
	for _, a := range authors {
		out = append(out, toAuthorOutput(a))
	}
	return out
}

func toGenreOutput(g models.Genre) models.GenreOutput {
	return models.GenreOutput{ID: g.ID, Name: g.Name}
}

func toGenreOutputs(genres []models.Genre) []models.GenreOutput {
	out := make([]models.GenreOutput, 0, len(genres))
	for _, g := range genres {
		out = append(out, toGenreOutput(g))
	}
	return out
}

func toBookOutput(b models.Book, loc *time.Location) models.BookOutput {
	return models.BookOutput{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		ImageURL:        b.ImageURL,
		IsAvailable:     b.IsAvailable,
		TotalQuantity:   b.TotalQuantity,
		CurrentQuantity: b.CurrentQuantity,
		BorrowedTime:    b.BorrowedTime,
		AllAuthors:      strings.Join(b.AuthorNames(), ", "),
		AllGenres:       strings.Join(b.GenreNames(), ", "),
		CreatedOn:       formatDate(b.CreatedOn, loc),
	}
}

func toBookOutputs(books []models.Book, loc *time.Location) []models.BookOutput {
	out := make([]models.BookOutput, 0, len(books))
	for _, b := range books {
		out = append(out, toBookOutput(b, loc))
	}
	return out
}

func toReservationListItem(r models.BookReservation, loc *time.Location) models.ReservationListItem {
	return models.ReservationListItem{
		ID:         r.ID,
		BookTitle:  r.Book.Title,
		UserName:   r.User.FullName(),
		Email:      r.User.Email,
		CreatedOn:  formatDate(r.CreatedOn, loc),
		IsApproved: r.IsApproved,
	}
}

func toReservationDetails(r models.BookReservation, loc *time.Location) models.ReservationDetails {
	return models.ReservationDetails{
		BookTitle:          r.Book.Title,
		Quantity:           r.Book.CurrentQuantity,
		IsAvailable:        r.Book.IsAvailable,
		UserName:           r.User.FullName(),
		CreatedRequestDate: formatDate(r.CreatedOn, loc),
	}
}
