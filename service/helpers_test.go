package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

var sofia = mustLocation("Europe/Sofia")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *store.DB {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, "sqlite", ":memory:", discardLogger())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, db *store.DB, email string, roles ...string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", FirstName: "Test", LastName: email}
	require.NoError(t, db.CreateUser(context.Background(), u, roles...))
	return u
}

func createBook(t *testing.T, db *store.DB, title string, qty int) *models.Book {
	t.Helper()
	ctx := context.Background()
	a := &models.Author{Name: "Author of " + title}
	require.NoError(t, db.CreateAuthor(ctx, a))
	g := &models.Genre{Name: "Genre of " + title}
	require.NoError(t, db.CreateGenre(ctx, g))
	b := &models.Book{
		Title:           title,
		IsAvailable:     true,
		TotalQuantity:   qty,
		CurrentQuantity: qty,
		BorrowedTime:    models.StandardBorrowPeriodDays,
		Sku:             "sku-" + title,
		Authors:         []models.Author{*a},
		Genres:          []models.Genre{*g},
	}
	require.NoError(t, db.CreateBook(ctx, b))
	return b
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, e Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, e)
	return n.err
}

func (n *fakeNotifier) emails() []Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Email(nil), n.sent...)
}

var errSMTPDown = errors.New("smtp down")
