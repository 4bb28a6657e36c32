package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	adminEmail    = "admin@example.com"
	adminPassword = "Admin#Pass12"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.Email
}

func (n *recordingNotifier) Send(_ context.Context, e service.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, e)
	return nil
}

func (n *recordingNotifier) emails() []service.Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]service.Email(nil), n.sent...)
}

type testApp struct {
	handler  http.Handler
	notifier *recordingNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loc, err := time.LoadLocation("Europe/Sofia")
	require.NoError(t, err)
	db, err := store.Open(ctx, "sqlite", ":memory:", logger)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })

	n := &recordingNotifier{}
	users := service.NewUserService(db, n, testSecret, "https://library.example.com", logger)
	require.NoError(t, users.SeedAdmin(ctx, adminEmail, adminPassword))
	env := service.SMTPAccount{Host: "smtp.example.com", Port: 587, Username: "mailer", Password: "env-secret", SenderEmail: "library@example.com"}

	return &testApp{
		notifier: n,
		handler: NewRouter(Deps{
			DB:           db,
			JWT:          middleware.NewJWT(testSecret, "library-api", "library-client", time.Hour),
			CorsOrigins:  []string{"*"},
			Users:        users,
			Authors:      service.NewAuthorService(db, logger),
			Genres:       service.NewGenreService(db, logger),
			Books:        service.NewBookService(db, nil, loc, logger),
			Reservations: service.NewReservationService(db, n, loc, logger),
			Home:         service.NewHomeService(db, loc),
			EmailLogs:    service.NewEmailLogService(nil),
			MailSettings: service.NewMailSettingsService(nil, nil, env, loc, logger),
			Logger:       logger,
		}),
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, email, password string) models.LoginOutput {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginInput{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.LoginOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (a *testApp) registerReader(t *testing.T, email string) models.LoginOutput {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/users/register", "", models.RegisterInput{
		FirstName:       "Maria",
		LastName:        "Ivanova",
		Email:           email,
		PhoneNumber:     "+(359)888123456",
		Password:        "Secret#Pass1",
		ConfirmPassword: "Secret#Pass1",
		Address: models.AddressInput{
			Country:      "Bulgaria",
			City:         "Plovdiv",
			Street:       "Glavna",
			StreetNumber: "3",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return a.login(t, email, "Secret#Pass1")
}

func (a *testApp) addBook(t *testing.T, token string, fields map[string][]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/add", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedDune adds one author, one genre and a single-copy book as admin.
func (a *testApp) seedDune(t *testing.T, adminToken string) uuid.UUID {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/authors/add", adminToken, models.AuthorInput{Name: "Frank Herbert"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/api/v1/genres/add", adminToken, models.GenreInput{Name: "Science Fiction"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.addBook(t, adminToken, map[string][]string{
		"bookTitle":     {"Dune"},
		"description":   {"Desert planet"},
		"totalQuantity": {"1"},
		"bookAuthors":   {"Frank Herbert"},
		"genres":        {"Science Fiction"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResponse](t, rec).ID
}

func Test_Health_ReturnsOK(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func Test_Login_IssuesTokenWithRoles(t *testing.T) {
	app := newTestApp(t)

	out := app.login(t, adminEmail, adminPassword)

	assert.Equal(t, []string{models.RoleAdmin}, out.Roles)
	assert.NotEmpty(t, out.AccessToken)
	rec := app.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginInput{Email: adminEmail, Password: "Wrong#Pass12"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password."}`, rec.Body.String())
}

func Test_Routes_EnforceRolePolicies(t *testing.T) {
	app := newTestApp(t)
	reader := app.registerReader(t, "maria@example.com")

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/books/getbooks", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, "/api/v1/authors/add", reader.AccessToken, models.AuthorInput{Name: "X"}).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/mailsettings", reader.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/home/books-count", "", nil).Code)
}

func Test_Errors_MapToStatusAndBody(t *testing.T) {
	// arrange
	app := newTestApp(t)
	reader := app.registerReader(t, "maria@example.com")

	// act
	empty := app.do(t, http.MethodGet, "/api/v1/books/getbooks", reader.AccessToken, nil)
	badPage := app.do(t, http.MethodGet, "/api/v1/books/getbooks?page=abc", reader.AccessToken, nil)
	zeroPage := app.do(t, http.MethodGet, "/api/v1/books/getbooks?page=0", reader.AccessToken, nil)
	badID := app.do(t, http.MethodGet, "/api/v1/books/not-a-uuid", reader.AccessToken, nil)
	badJSON := app.do(t, http.MethodPost, "/api/v1/users/forgot-password", "", "{")

	// assert
	assert.Equal(t, http.StatusNotFound, empty.Code)
	assert.JSONEq(t, `{"error":"Books are not found."}`, empty.Body.String())
	assert.Equal(t, http.StatusBadRequest, badPage.Code)
	assert.Equal(t, http.StatusBadRequest, zeroPage.Code)
	assert.Equal(t, http.StatusBadRequest, badID.Code)
	assert.Equal(t, http.StatusBadRequest, badJSON.Code)
}

func Test_ReservationFlow_LendsLastCopyOnce(t *testing.T) {
	// arrange
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)
	bookID := app.seedDune(t, admin.AccessToken)
	reader := app.registerReader(t, "maria@example.com")

	// act
	rec := app.do(t, http.MethodPost, "/api/v1/bookreservations/add-reservation", reader.AccessToken, models.ReservationInput{BookID: bookID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resID := decode[idResponse](t, rec).ID
	review := models.ReservationMessageInput{BookReservationID: resID, Message: "Enjoy"}
	byReader := app.do(t, http.MethodPost, "/api/v1/bookreservations/approve-reservation", reader.AccessToken, review)
	first := app.do(t, http.MethodPost, "/api/v1/bookreservations/approve-reservation", admin.AccessToken, review)
	second := app.do(t, http.MethodPost, "/api/v1/bookreservations/approve-reservation", admin.AccessToken, review)

	// assert
	assert.Equal(t, http.StatusForbidden, byReader.Code)
	assert.Equal(t, http.StatusNoContent, first.Code, first.Body.String())
	assert.Equal(t, http.StatusConflict, second.Code)

	book := decode[models.BookOutput](t, app.do(t, http.MethodGet, "/api/v1/books/"+bookID.String(), reader.AccessToken, nil))
	assert.Equal(t, 0, book.CurrentQuantity)
	assert.False(t, book.IsAvailable)
	assert.Equal(t, "Frank Herbert", book.AllAuthors)

	emails := app.notifier.emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "maria@example.com", emails[0].To)
}

func Test_AddReservation_Forbidden_WhenReaderFilesForSomeoneElse(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)
	bookID := app.seedDune(t, admin.AccessToken)
	reader := app.registerReader(t, "maria@example.com")

	rec := app.do(t, http.MethodPost, "/api/v1/bookreservations/add-reservation", reader.AccessToken,
		models.ReservationInput{BookID: bookID, UserID: &admin.ID})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Readers can only reserve books for themselves."}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/v1/bookreservations/add-reservation", admin.AccessToken,
		models.ReservationInput{BookID: bookID, UserID: &reader.ID})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pending := decode[models.Paged[models.ReservationListItem]](t, app.do(t, http.MethodGet, "/api/v1/bookreservations/getall", admin.AccessToken, nil))
	require.Len(t, pending.Result, 1)
	assert.Equal(t, "maria@example.com", pending.Result[0].Email)
}

func Test_AddBook_ReturnsValidationDetails_WhenAuthorUnknown(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)
	rec := app.do(t, http.MethodPost, "/api/v1/genres/add", admin.AccessToken, models.GenreInput{Name: "Poetry"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.addBook(t, admin.AccessToken, map[string][]string{
		"bookTitle":     {"Songs"},
		"totalQuantity": {"2"},
		"bookAuthors":   {"Nobody Known"},
		"genres":        {"Poetry"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, []string{"Nobody Known"}, body.Details)
}

func Test_SetRoles_KeepsLastAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)
	reader := app.registerReader(t, "maria@example.com")

	promoted := app.do(t, http.MethodPut, "/api/v1/users/"+reader.ID.String()+"/roles", admin.AccessToken,
		models.SetRolesInput{Roles: []string{models.RoleLibrarian}})
	demoted := app.do(t, http.MethodPut, "/api/v1/users/"+admin.ID.String()+"/roles", admin.AccessToken,
		models.SetRolesInput{Roles: []string{models.RoleReader}})

	assert.Equal(t, http.StatusOK, promoted.Code)
	assert.JSONEq(t, `{"roles":["Librarian"]}`, promoted.Body.String())
	assert.Equal(t, http.StatusConflict, demoted.Code)
	assert.Equal(t, []string{models.RoleLibrarian}, app.login(t, "maria@example.com", "Secret#Pass1").Roles)
}

func Test_OptionalBackends_ReportUnavailable(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)

	settings := app.do(t, http.MethodGet, "/api/v1/mailsettings", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, settings.Code)
	out := decode[models.MailSettingsOutput](t, settings)
	assert.Equal(t, "environment", out.Source)
	assert.NotEqual(t, "env-secret", out.Password)

	assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodPut, "/api/v1/mailsettings", admin.AccessToken,
		models.MailSettingsInput{Host: "smtp.example.com", Port: 465, Username: "u", SenderEmail: "noreply@example.com"}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodGet, "/api/v1/emaillogs", admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/emaillogs?limit=300", admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/v1/emaillogs?limit=ten", admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodGet, "/api/v1/blobs/getall", admin.AccessToken, nil).Code)
}
