package service

import (
	"fmt"

	"github.com/kevinaaaquil/library/backend/apperr"
)

var (
	ErrGenreExists   = apperr.Validation("Genre already exists")
	ErrGenreNotFound = apperr.NotFound("Genre not found")
	ErrNoGenresFound = apperr.NotFound("No genres found.")
	ErrGenreHasBooks = apperr.Validation("Genre is assigned to book(s)")

	ErrAuthorExists         = apperr.Validation("Author already exists")
	ErrAuthorNotFound       = apperr.NotFound("Author not found")
	ErrNoAuthorsFound       = apperr.NotFound("No authors found.")
	ErrAuthorHasBooks       = apperr.Validation("Author is assigned to book(s)")
	ErrDuplicateAuthorFound = apperr.Validation("Duplicate author entered.")

	ErrBookNotFound             = apperr.NotFound("Book does not exist in the database.")
	ErrNoBooksFound             = apperr.NotFound("Books are not found.")
	ErrBookNotAvailable         = apperr.Validation("Book is not available.")
	ErrBookTitleExists          = apperr.Validation("The booktitle already exist in the database.")
	ErrBookQuantityInvalid      = apperr.Validation("Book quantity can not be zero or less than zero")
	ErrBookQuantityLessThanZero = apperr.Validation("Book quantity can not be less than zero")
	ErrBookQuantityIsZero       = apperr.Validation("Book quantity is zero or less than zero.")

	ErrReservationNotFound        = apperr.NotFound("The choosen book reservation request does not exist.")
	ErrReservationReviewed        = apperr.NotFound("The choosen book reservation request has been reviewed.")
	ErrReservationAlreadyReviewed = apperr.Conflict("The choosen book reservation request has been reviewed.")
	ErrAllReservationsReviewed    = apperr.NotFound("All book reservations have been reviewed.")
	ErrSelfApproval               = apperr.Validation("Librarian cannot approve its own book reservation requests.")
	ErrSelfRejection              = apperr.Validation("Librarian cannot reject its own book reservation requests.")
	ErrReservationForOtherUser    = apperr.Forbidden("Readers can only reserve books for themselves.")

	ErrUserNotFound       = apperr.NotFound("User does not exist in the database.")
	ErrLibrarianNotFound  = apperr.NotFound("Librarian does not exist.")
	ErrEmailTaken         = apperr.Validation("Email is already taken.")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password.")
	ErrResetPassword      = apperr.Validation("Could not reset the password.")
	ErrLastAdmin          = apperr.Conflict("Cannot remove the Admin role from the last admin.")

	ErrEmailFailed = apperr.New(apperr.KindInternal, "Email sending failed.")

	ErrBlobNotFound        = apperr.NotFound("Blob file does not exist.")
	ErrBlobStorageEmpty    = apperr.NotFound("Blob storage is empty.")
	ErrFileFormat          = apperr.Validation("The chosen file has no correct extension.")
	ErrFileTooLarge        = apperr.Validation("File must not be larger than 512 KB")
	ErrFileEmpty           = apperr.Validation("Blob file can not be uploaded.")
	ErrFileUpload          = apperr.New(apperr.KindInternal, "Problem occures by uploading the file. The file can not be uploaded")
	ErrBlobStorageDisabled = apperr.Unavailable("Blob storage is not configured.")

	ErrMailSettingsDisabled = apperr.Unavailable("Mail settings storage is not configured.")
	ErrEmailLogDisabled     = apperr.Unavailable("Email log storage is not configured.")
)

func errQuantityBelowBorrowed(borrowed int) error {
	return apperr.Validation(fmt.Sprintf(
		"Inserted book quantity can not be less than the number of the borrowed books. %d book/books has/have already been taken.", borrowed))
}

func errAuthorNameNotFound(name string) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: ErrAuthorNotFound.Message, Details: []string{name}}
}

func errGenreNameNotFound(name string) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: ErrGenreNotFound.Message, Details: []string{name}}
}

func isAppError(err error) bool {
	_, ok := apperr.As(err)
	return ok
}

// asValidation re-tags a sentinel as a bad request, keeping its message.
func asValidation(e *apperr.Error) error {
	return apperr.Validation(e.Message)
}
