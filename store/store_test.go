package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedBook(t *testing.T, db *DB, title string, qty int, authors []string, genres []string) *models.Book {
	t.Helper()
	ctx := context.Background()
	b := &models.Book{
		Title:           title,
		Description:     "about " + title,
		IsAvailable:     true,
		TotalQuantity:   qty,
		CurrentQuantity: qty,
		BorrowedTime:    models.StandardBorrowPeriodDays,
		Sku:             uuid.NewString(),
	}
	for _, name := range authors {
		a, err := db.AuthorByName(ctx, name)
		require.NoError(t, err)
		if a == nil {
			a = &models.Author{Name: name}
			require.NoError(t, db.CreateAuthor(ctx, a))
		}
		b.Authors = append(b.Authors, *a)
	}
	for _, name := range genres {
		g, err := db.GenreByName(ctx, name)
		require.NoError(t, err)
		if g == nil {
			g = &models.Genre{Name: name}
			require.NoError(t, db.CreateGenre(ctx, g))
		}
		b.Genres = append(b.Genres, *g)
	}
	require.NoError(t, db.CreateBook(ctx, b))
	return b
}

func seedUser(t *testing.T, db *DB, email string, roles ...string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "First",
		LastName:     "Last",
		Address:      &models.Address{Country: "Bulgaria", City: "Sofia", Street: "Main", StreetNumber: "1"},
	}
	require.NoError(t, db.CreateUser(context.Background(), u, roles...))
	return u
}

func Test_Migrate_SeedsRoles(t *testing.T) {
	db := newTestDB(t)

	var n int64
	require.NoError(t, db.Gorm.Model(&models.Role{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func Test_BookByID_LoadsLinks(t *testing.T) {
	db := newTestDB(t)
	b := seedBook(t, db, "Dune", 2, []string{"Frank Herbert"}, []string{"Sci-Fi", "Classic"})

	got, err := db.BookByID(context.Background(), b.ID)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Frank Herbert"}, got.AuthorNames())
	assert.ElementsMatch(t, []string{"Sci-Fi", "Classic"}, got.GenreNames())
}

func Test_BookByID_ReturnsNil_WhenMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.BookByID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_DecrementBookQuantity_ClearsAvailability_WhenLastCopyLent(t *testing.T) {
	// arrange
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Solaris", 1, []string{"Stanislaw Lem"}, []string{"Sci-Fi"})

	// act
	ok, err := db.DecrementBookQuantity(ctx, b.ID)
	require.NoError(t, err)
	again, err := db.DecrementBookQuantity(ctx, b.ID)
	require.NoError(t, err)

	// assert
	assert.True(t, ok)
	assert.False(t, again)
	got, err := db.BookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentQuantity)
	assert.False(t, got.IsAvailable)
}

func Test_DecrementBookQuantity_KeepsAvailability_WhenCopiesRemain(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Ubik", 2, []string{"Philip K. Dick"}, []string{"Sci-Fi"})

	ok, err := db.DecrementBookQuantity(ctx, b.ID)

	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := db.BookByID(ctx, b.ID)
	assert.Equal(t, 1, got.CurrentQuantity)
	assert.True(t, got.IsAvailable)
}

func Test_UpdateBookQuantity_ShiftsCurrent_AndRejectsBelowBorrowed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Emma", 5, []string{"Jane Austen"}, []string{"Classic"})
	_, err := db.DecrementBookQuantity(ctx, b.ID)
	require.NoError(t, err)
	_, err = db.DecrementBookQuantity(ctx, b.ID)
	require.NoError(t, err)

	ok, err := db.UpdateBookQuantity(ctx, b.ID, 7, true)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := db.BookByID(ctx, b.ID)
	assert.Equal(t, 7, got.TotalQuantity)
	assert.Equal(t, 5, got.CurrentQuantity)
	assert.True(t, got.IsAvailable)

	ok, err = db.UpdateBookQuantity(ctx, b.ID, 1, true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.UpdateBookQuantity(ctx, b.ID, 2, true)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = db.BookByID(ctx, b.ID)
	assert.Equal(t, 0, got.CurrentQuantity)
	assert.False(t, got.IsAvailable)
}

func Test_DeleteBook_SoftDeletes_AndFreesTitle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Dracula", 1, []string{"Bram Stoker"}, []string{"Horror"})

	require.NoError(t, db.DeleteBook(ctx, b.ID))

	got, err := db.BookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	var raw int64
	require.NoError(t, db.Gorm.Unscoped().Model(&models.Book{}).Where("id = ?", b.ID).Count(&raw).Error)
	assert.Equal(t, int64(1), raw)

	author, _ := db.AuthorByName(ctx, "Bram Stoker")
	n, err := db.BooksCountForAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	seedBook(t, db, "Dracula", 1, []string{"Bram Stoker"}, []string{"Horror"})
}

func Test_CreateBook_FailsWithUniqueViolation_WhenTitleTaken(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBook(t, db, "Beloved", 1, []string{"Toni Morrison"}, []string{"Classic"})

	err := db.CreateBook(ctx, &models.Book{Title: "Beloved", TotalQuantity: 1, CurrentQuantity: 1, Sku: "s"})

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func Test_SearchBooks_MatchesAuthorAndGenreSubstrings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBook(t, db, "Dune", 1, []string{"Frank Herbert"}, []string{"Sci-Fi"})
	seedBook(t, db, "Emma", 1, []string{"Jane Austen"}, []string{"Classic"})
	seedBook(t, db, "Persuasion", 1, []string{"Jane Austen"}, []string{"Romance"})

	books, total, err := db.SearchBooks(ctx, models.SearchBookInput{
		PaginatorInput: models.PaginatorInput{Page: 1, PageSize: 10},
		Author:         "austen",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, books, 2)
	assert.Equal(t, "Emma", books[0].Title)

	books, total, err = db.SearchBooks(ctx, models.SearchBookInput{
		PaginatorInput: models.PaginatorInput{Page: 1, PageSize: 10},
		Author:         "austen",
		Genre:          "rom",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Persuasion", books[0].Title)
}

func Test_SearchBooks_EscapesWildcards(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBook(t, db, "Dune", 1, []string{"Frank Herbert"}, []string{"Sci-Fi"})

	_, total, err := db.SearchBooks(ctx, models.SearchBookInput{
		PaginatorInput: models.PaginatorInput{Page: 1, PageSize: 10},
		Title:          "%",
	})

	require.NoError(t, err)
	assert.Zero(t, total)
}

func Test_BooksPage_CapsPageSize(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	for i := 0; i < 35; i++ {
		seedBook(t, db, "Book "+uuid.NewString(), 1, []string{"Anon"}, []string{"Misc"})
	}

	books, total, err := db.BooksPage(ctx, models.PaginatorInput{Page: 1, PageSize: 100})

	require.NoError(t, err)
	assert.Equal(t, int64(35), total)
	assert.Len(t, books, models.MaxPageSize)

	books, _, err = db.BooksPage(ctx, models.PaginatorInput{Page: 2, PageSize: 30})
	require.NoError(t, err)
	assert.Len(t, books, 5)
}

func Test_BooksCreatedSince_OrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	old := seedBook(t, db, "Old", 1, []string{"A"}, []string{"G"})
	require.NoError(t, db.Gorm.Model(&models.Book{}).Where("id = ?", old.ID).
		UpdateColumn("created_on", time.Now().AddDate(0, 0, -30)).Error)
	seedBook(t, db, "First", 1, []string{"A"}, []string{"G"})
	time.Sleep(10 * time.Millisecond)
	seedBook(t, db, "Second", 1, []string{"A"}, []string{"G"})

	books, total, err := db.BooksCreatedSince(ctx, time.Now().AddDate(0, 0, -14), models.PaginatorInput{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Second", books[0].Title)
	assert.Equal(t, "First", books[1].Title)
}

func Test_AssignedGenresCount_CountsDistinctLinkedGenres(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBook(t, db, "Dune", 1, []string{"Frank Herbert"}, []string{"Sci-Fi", "Classic"})
	seedBook(t, db, "Emma", 1, []string{"Jane Austen"}, []string{"Classic"})
	require.NoError(t, db.CreateGenre(ctx, &models.Genre{Name: "Unused"}))

	n, err := db.AssignedGenresCount(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func Test_AuthorsPage_AndSearch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	for _, n := range []string{"Ann Leckie", "Anne Rice", "Iain Banks"} {
		require.NoError(t, db.CreateAuthor(ctx, &models.Author{Name: n}))
	}

	page, total, err := db.AuthorsPage(ctx, models.PaginatorInput{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	found, err := db.SearchAuthors(ctx, "ANN")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func Test_ReservationReview_HappensAtMostOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Dune", 2, []string{"Frank Herbert"}, []string{"Sci-Fi"})
	reader := seedUser(t, db, "reader@example.com", models.RoleReader)
	librarian := seedUser(t, db, "librarian@example.com", models.RoleLibrarian)
	r := &models.BookReservation{UserID: reader.ID, BookID: b.ID}
	require.NoError(t, db.CreateReservation(ctx, r))
	now := time.Now()

	// act
	first, err := db.ApproveReservation(ctx, r.ID, librarian.ID, now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	second, err := db.RejectReservation(ctx, r.ID, librarian.ID)
	require.NoError(t, err)

	// assert
	assert.True(t, first)
	assert.False(t, second)
	got, err := db.ReservationByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	assert.True(t, got.IsReviewed)
	require.NotNil(t, got.LibrarianID)
	assert.Equal(t, librarian.ID, *got.LibrarianID)
	assert.Equal(t, "reader@example.com", got.User.Email)
	assert.Equal(t, "Dune", got.Book.Title)
}

func Test_PendingReservationsPage_ExcludesReviewed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	b := seedBook(t, db, "Dune", 3, []string{"Frank Herbert"}, []string{"Sci-Fi"})
	reader := seedUser(t, db, "reader@example.com", models.RoleReader)
	librarian := seedUser(t, db, "librarian@example.com", models.RoleLibrarian)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := &models.BookReservation{UserID: reader.ID, BookID: b.ID}
		require.NoError(t, db.CreateReservation(ctx, r))
		ids = append(ids, r.ID)
	}
	_, err := db.RejectReservation(ctx, ids[1], librarian.ID)
	require.NoError(t, err)

	rs, total, err := db.PendingReservationsPage(ctx, models.PaginatorInput{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range rs {
		assert.False(t, r.IsReviewed)
		assert.NotEqual(t, ids[1], r.ID)
	}
}

func Test_Users_RolesAndCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUser(t, db, "r1@example.com", models.RoleReader)
	seedUser(t, db, "r2@example.com", models.RoleReader)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)

	readers, err := db.UsersInRoleCount(ctx, models.RoleReader)
	require.NoError(t, err)
	assert.Equal(t, int64(2), readers)

	require.NoError(t, db.SetUserRoles(ctx, admin.ID, []string{models.RoleAdmin, models.RoleReader}))
	got, err := db.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleAdmin, models.RoleReader}, got.RoleNames())
	require.NotNil(t, got.Address)
	assert.Equal(t, "Sofia", got.Address.City)

	_, err = db.RolesByNames(ctx, []string{"Wizard"})
	assert.Error(t, err)

	err = db.CreateUser(ctx, &models.User{Email: "r1@example.com", PasswordHash: "x", FirstName: "a", LastName: "b"}, models.RoleReader)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
