package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/apperr"
	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/validation"
)

func validRegister() models.RegisterInput {
	return models.RegisterInput{
		FirstName:       "Ivan",
		LastName:        "Petrov",
		Email:           "ivan.petrov@example.com",
		PhoneNumber:     "+(359)888123456",
		Password:        "Secret#Pass1",
		ConfirmPassword: "Secret#Pass1",
		Address: models.AddressInput{
			Country:      "Bulgaria",
			City:         "Sofia",
			Street:       "Vitosha",
			StreetNumber: "12",
		},
	}
}

func Test_Struct_Succeeds_WhenRegisterInputIsValid(t *testing.T) {
	in := validRegister()

	assert.NoError(t, validation.Struct(in))
}

func Test_Struct_ReturnsValidationKind_WithMessages(t *testing.T) {
	// arrange
	in := validRegister()
	in.ConfirmPassword = "Other#Pass1"
	in.Address.Country = "BG"

	// act
	err := validation.Struct(in)

	// assert
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "Password and Confirm password do not match!")
	assert.Contains(t, appErr.Details, "Country must contain minimum of 3 and maximum of 56 characters.")
	assert.Equal(t, appErr.Details[0], appErr.Message)
}

func Test_Struct_RejectsPunctuationOnlyNames(t *testing.T) {
	err := validation.Struct(models.AuthorInput{Name: "!!! ..."})

	require.Error(t, err)
	assert.Equal(t, "Author name must contain at least one letter or number", err.Error())
}

func Test_Struct_RejectsTooLongGenre(t *testing.T) {
	err := validation.Struct(models.GenreInput{Name: strings.Repeat("a", 66)})

	require.Error(t, err)
	assert.Equal(t, "Genre name cannot contain more than 65 characters.", err.Error())
}

func Test_Struct_RejectsEmptyAuthorListOnBook(t *testing.T) {
	err := validation.Struct(models.BookInput{Title: "Dune", Genres: []string{"Sci-Fi"}, TotalQuantity: 2})

	require.Error(t, err)
	assert.Equal(t, "Please insert authors!", err.Error())
}

func Test_Struct_RejectsPageBelowOne_WhenEmbedded(t *testing.T) {
	in := models.SearchBookInput{PaginatorInput: models.PaginatorInput{Page: 0, PageSize: 5}}

	err := validation.Struct(in)

	require.Error(t, err)
	assert.Equal(t, "Page number can't be less than one", err.Error())
}

func Test_Struct_RejectsMissingRejectMessage(t *testing.T) {
	in := models.ReservationRejectInput{Message: ""}

	err := validation.Struct(in)

	require.Error(t, err)
	appErr, _ := apperr.As(err)
	assert.Contains(t, appErr.Details, "The message is required.")
}

func Test_ValidPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret#Pass1":          true,
		"short#A1":              false,
		"nouppercase#1":         false,
		"NOLOWERCASE#1":         false,
		"NoDigitsHere#":         false,
		"NoSymbolsHere1":        false,
		"Has Space#Pass1":       false,
		strings.Repeat("aA1#", 17): false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, validation.ValidPassword(pw), pw)
	}
}

func Test_PhoneAndEmailRules(t *testing.T) {
	good := validRegister()
	for _, phone := range []string{"+(359)888123456", "+(1)5551234", "+(1-234)5678", "+(12-3456)789"} {
		good.PhoneNumber = phone
		assert.NoError(t, validation.Struct(good), phone)
	}

	bad := validRegister()
	bad.PhoneNumber = "0888123456"
	assert.EqualError(t, validation.Struct(bad), "Invalid phone number!")

	bad = validRegister()
	bad.Email = "not-an-email"
	assert.EqualError(t, validation.Struct(bad), "An invalid email address has been entered into the email field.")
}

func Test_HasLetterOrDigit(t *testing.T) {
	assert.True(t, validation.HasLetterOrDigit("  Тolstoy "))
	assert.True(t, validation.HasLetterOrDigit("1984"))
	assert.False(t, validation.HasLetterOrDigit("?!-_"))
	assert.False(t, validation.HasLetterOrDigit(""))
}
