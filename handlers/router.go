package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/service"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the router wires into handlers. Blobs may be nil.
type Deps struct {
	DB           Pinger
	JWT          *middleware.JWT
	CorsOrigins  []string
	Users        *service.UserService
	Authors      *service.AuthorService
	Genres       *service.GenreService
	Books        *service.BookService
	Reservations *service.ReservationService
	Home         *service.HomeService
	Blobs        *service.BlobService
	EmailLogs    *service.EmailLogService
	MailSettings *service.MailSettingsService
	Logger       *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	auth := &AuthHandler{Users: d.Users, JWT: d.JWT, Logger: d.Logger}
	users := &UsersHandler{Users: d.Users, Logger: d.Logger}
	authors := &AuthorsHandler{Authors: d.Authors, Logger: d.Logger}
	genres := &GenresHandler{Genres: d.Genres, Logger: d.Logger}
	books := &BooksHandler{Books: d.Books, Logger: d.Logger}
	reservations := &ReservationsHandler{Reservations: d.Reservations, Logger: d.Logger}
	home := &HomeHandler{Home: d.Home, Logger: d.Logger}
	blobs := &BlobsHandler{Blobs: d.Blobs, Logger: d.Logger}
	email := &EmailConfigHandler{MailSettings: d.MailSettings, EmailLogs: d.EmailLogs, Logger: d.Logger}

	members := d.JWT.Require(middleware.Members)
	staff := d.JWT.Require(middleware.Staff)
	admins := d.JWT.Require(middleware.Admins)

	r := chi.NewRouter()
	r.Use(middleware.CORS(d.CorsOrigins))
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Post("/forgot-password", auth.ForgotPassword)
			r.Post("/reset-password", auth.ResetPassword)
			r.With(admins).Put("/{id}/roles", users.SetRoles)
		})

		r.Route("/home", func(r chi.Router) {
			r.Get("/last-books", home.LastBooks)
			r.Get("/books-count", home.BooksCount)
			r.Get("/genres-count", home.GenresCount)
			r.Get("/readers-count", home.ReadersCount)
		})

		r.Route("/authors", func(r chi.Router) {
			r.With(members).Get("/search", authors.Search)
			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/add", authors.Add)
				r.Get("/all", authors.All)
				r.Get("/getAuthors", authors.List)
				r.Get("/{id}", authors.Get)
				r.Put("/{id}", authors.Update)
				r.Delete("/{id}", authors.Delete)
			})
		})

		r.Route("/genres", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(members)
				r.Get("/getall", genres.All)
				r.Get("/search", genres.Search)
			})
			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/add", genres.Add)
				r.Get("/getgenres", genres.List)
				r.Get("/{id}", genres.Get)
				r.Put("/{id}", genres.Update)
				r.Delete("/{id}", genres.Delete)
			})
		})

		r.Route("/books", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(members)
				r.Get("/getbooks", books.List)
				r.Get("/search", books.Search)
				r.Get("/{id}", books.Get)
			})
			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/add", books.Add)
				r.Get("/getall", books.All)
				r.Get("/checkgenre/{id}", books.CountForGenre)
				r.Get("/checkauthor/{id}", books.CountForAuthor)
				r.Put("/{id}", books.Update)
				r.Delete("/{id}", books.Delete)
			})
		})

		r.Route("/bookreservations", func(r chi.Router) {
			r.With(members).Post("/add-reservation", reservations.Add)
			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/approve-reservation", reservations.Approve)
				r.Post("/reject-reservation", reservations.Reject)
				r.Get("/getall", reservations.Pending)
				r.Get("/{id}", reservations.Get)
			})
		})

		r.Route("/blobs", func(r chi.Router) {
			r.Use(staff)
			r.Get("/getall", blobs.List)
			r.Post("/uploadfile", blobs.Upload)
			r.Put("/updatefile", blobs.Update)
			r.Get("/{name}", blobs.Get)
			r.Delete("/{name}", blobs.Delete)
		})

		r.With(admins).Get("/emaillogs", email.Logs)
		r.Route("/mailsettings", func(r chi.Router) {
			r.Use(admins)
			r.Get("/", email.Get)
			r.Put("/", email.Save)
		})
	})

	return r
}
