package models

import "github.com/google/uuid"

// Request and response shapes exchanged with API clients.

const (
	DefaultPageSize = 10
	MaxPageSize     = 30
)

type PaginatorInput struct {
	Page     int `json:"page" validate:"gte=1"`
	PageSize int `json:"pageSize" validate:"gte=1"`
}

// Normalize caps the page size and returns the row offset.
func (p *PaginatorInput) Normalize() int {
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return (p.Page - 1) * p.PageSize
}

type Paged[T any] struct {
	Result     []T   `json:"result"`
	TotalCount int64 `json:"totalCount"`
}

type AuthorInput struct {
	Name string `json:"name" validate:"required,max=256,bookattr"`
}

type AuthorOutput struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type GenreInput struct {
	Name string `json:"name" validate:"required,max=65,bookattr"`
}

type GenreOutput struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BookInput struct {
	Title         string   `json:"bookTitle" validate:"required,max=256,bookattr"`
	Description   string   `json:"description" validate:"max=1028"`
	Availability  bool     `json:"availability"`
	TotalQuantity int      `json:"totalQuantity" validate:"lte=1000"`
	Authors       []string `json:"bookAuthors" validate:"required,min=1,dive,required,max=256"`
	Genres        []string `json:"genres" validate:"required,min=1,dive,required,max=65"`
	DeleteCover   bool     `json:"deleteCover"`
}

type BookOutput struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl"`
	IsAvailable     bool      `json:"isAvailable"`
	TotalQuantity   int       `json:"totalQuantity"`
	CurrentQuantity int       `json:"currentQuantity"`
	BorrowedTime    int       `json:"borrowedTime"`
	AllAuthors      string    `json:"allAuthors"`
	AllGenres       string    `json:"allGenres"`
	CreatedOn       string    `json:"createdOn"`
}

type SearchBookInput struct {
	PaginatorInput
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
}

type LastBooksOutput struct {
	RetrievedBooks []BookOutput `json:"retrievedBooks"`
	BooksCount     int64        `json:"booksCount"`
}

type AddressInput struct {
	Country        string `json:"country" validate:"required,min=3,max=56"`
	City           string `json:"city" validate:"required,max=128"`
	Street         string `json:"street" validate:"required,max=128"`
	StreetNumber   string `json:"streetNumber" validate:"required,max=65"`
	Building       string `json:"building" validate:"max=65"`
	Apartment      string `json:"apartment" validate:"max=65"`
	AdditionalInfo string `json:"additionalInfo" validate:"max=1028"`
}

type RegisterInput struct {
	FirstName       string       `json:"firstName" validate:"required,max=65"`
	LastName        string       `json:"lastName" validate:"required,max=65"`
	Email           string       `json:"email" validate:"required,libemail"`
	PhoneNumber     string       `json:"phoneNumber" validate:"required,phone"`
	Password        string       `json:"password" validate:"required,password"`
	ConfirmPassword string       `json:"confirmPassword" validate:"required,eqfield=Password"`
	Address         AddressInput `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,libemail"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"`
	AccessToken string    `json:"accessToken"`
}

type RegisterOutput struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,libemail"`
}

type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,libemail"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type SetRolesInput struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=Admin Librarian Reader"`
}

type ReservationInput struct {
	BookID uuid.UUID  `json:"bookId" validate:"required"`
	UserID *uuid.UUID `json:"userId,omitempty"`
}

type ReservationMessageInput struct {
	BookReservationID uuid.UUID `json:"bookReservationId" validate:"required"`
	Message           string    `json:"message" validate:"max=1028"`
}

type ReservationRejectInput struct {
	BookReservationID uuid.UUID `json:"bookReservationId" validate:"required"`
	Message           string    `json:"message" validate:"required,max=1028"`
}

type ReservationListItem struct {
	ID         uuid.UUID `json:"id"`
	BookTitle  string    `json:"bookTitle"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	CreatedOn  string    `json:"createdOn"`
	IsApproved bool      `json:"isApproved"`
}

type ReservationDetails struct {
	BookTitle          string `json:"bookTitle"`
	Quantity           int    `json:"quantity"`
	IsAvailable        bool   `json:"isAvailable"`
	UserName           string `json:"userName"`
	CreatedRequestDate string `json:"createdRequestDate"`
	Message            string `json:"message"`
}

type MailSettingsInput struct {
	Host        string `json:"host" validate:"required,hostname|ip"`
	Port        int    `json:"port" validate:"required,gte=1,lte=65535"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password"`
	SenderEmail string `json:"senderEmail" validate:"required,libemail"`
	SenderName  string `json:"senderName" validate:"max=128"`
}

type MailSettingsOutput struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	SenderEmail string `json:"senderEmail"`
	SenderName  string `json:"senderName"`
	Source      string `json:"source"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}
