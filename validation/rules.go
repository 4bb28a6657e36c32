package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSymbols = "@$!%*?&#^()_-;:+"

var (
	emailRe = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	phoneRe = regexp.MustCompile(`^(?:\+\(\d-\d{3}\)\d{1,61}|\+\(\d{2}-\d{4}\)\d{1,59}|\+\(\d\)\d{1,64}|\+\(\d{2}\)\d{1,63}|\+\(\d{3}\)\d{1,62})$`)
)

var rules = map[string]validator.Func{
	"bookattr": func(fl validator.FieldLevel) bool { return HasLetterOrDigit(fl.Field().String()) },
	"password": func(fl validator.FieldLevel) bool { return ValidPassword(fl.Field().String()) },
	"phone":    func(fl validator.FieldLevel) bool { return phoneRe.MatchString(fl.Field().String()) },
	"libemail": func(fl validator.FieldLevel) bool { return emailRe.MatchString(fl.Field().String()) },
}

// HasLetterOrDigit reports whether s contains at least one letter or number.
func HasLetterOrDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// ValidPassword requires 10 to 65 characters drawn from ASCII letters, digits and
// passwordSymbols, with at least one of each class.
func ValidPassword(s string) bool {
	if len(s) < 10 || len(s) > 65 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

var messages = map[string]string{
	"AuthorInput.Name|required": "Please enter an author name!",
	"AuthorInput.Name|max":      "Author name must contain minimum of 1 and maximum of 256 characters.",
	"AuthorInput.Name|bookattr": "Author name must contain at least one letter or number",

	"GenreInput.Name|required": "Please enter a genre name.",
	"GenreInput.Name|max":      "Genre name cannot contain more than 65 characters.",
	"GenreInput.Name|bookattr": "Genre name must contain at least one letter or number",

	"BookInput.Title|required":    "Please enter a book title!",
	"BookInput.Title|max":         "Book title must contain minimum of 1 and maximum of 256 characters.",
	"BookInput.Title|bookattr":    "Book title must contain at least one letter or number",
	"BookInput.Description|max":   "Description must contain max length of 1028 characters.",
	"BookInput.TotalQuantity|lte": "Book quantity can not be more than 1000.",
	"BookInput.Authors|required":  "Please insert authors!",
	"BookInput.Authors|min":       "Please insert authors!",
	"BookInput.Authors|max":       "Author name must contain minimum of 1 and maximum of 256 characters.",
	"BookInput.Genres|required":   "Please insert your genres!",
	"BookInput.Genres|min":        "Please insert your genres!",
	"BookInput.Genres|max":        "Genre name cannot contain more than 65 characters.",

	"PaginatorInput.Page|gte":     "Page number can't be less than one",
	"PaginatorInput.PageSize|gte": "Page size can't be less than one",

	"RegisterInput.FirstName|required":       "Please enter your first name!",
	"RegisterInput.FirstName|max":            "First name must contain minimum of 1 and maximum of 65 characters.",
	"RegisterInput.LastName|required":        "Please enter your last name!",
	"RegisterInput.LastName|max":             "Last name must contain minimum of 1 and maximum of 65 characters.",
	"RegisterInput.Email|required":           "Please enter your email!",
	"RegisterInput.Email|libemail":           "An invalid email address has been entered into the email field.",
	"RegisterInput.PhoneNumber|required":     "Please enter your phone number!",
	"RegisterInput.PhoneNumber|phone":        "Invalid phone number!",
	"RegisterInput.Password|required":        "Please enter your password!",
	"RegisterInput.Password|password":        "Password must contain minimum of 10 and maximum of 65 characters. Password must contain at least one upper-case letter, one lower-case letter, one number and one symbol",
	"RegisterInput.ConfirmPassword|required": "Please confirm your password!",
	"RegisterInput.ConfirmPassword|eqfield":  "Password and Confirm password do not match!",

	"Address.Country|required":      "Please enter your country!",
	"Address.Country|min":           "Country must contain minimum of 3 and maximum of 56 characters.",
	"Address.Country|max":           "Country must contain minimum of 3 and maximum of 56 characters.",
	"Address.City|required":         "Please enter your city!",
	"Address.City|max":              "City must contain minimum of 1 and maximum of 128 characters.",
	"Address.Street|required":       "Please enter your street!",
	"Address.Street|max":            "Street name must contain minimum of 1 and maximum of 128 characters.",
	"Address.StreetNumber|required": "Please enter your street number!",
	"Address.StreetNumber|max":      "Street number must contain minimum of 1 and maximum of 65 characters.",
	"Address.Building|max":          "Building number cannot contain more than 65 characters.",
	"Address.Apartment|max":         "Apartment number cannot contain more than 65 characters.",
	"Address.AdditionalInfo|max":    "Additional info cannot contain more than 1028 characters.",

	"LoginInput.Email|required":    "Please enter your email!",
	"LoginInput.Email|libemail":    "An invalid email address has been entered into the email field.",
	"LoginInput.Password|required": "Please enter your password!",

	"ForgotPasswordInput.Email|required": "Please enter your email!",
	"ForgotPasswordInput.Email|libemail": "An invalid email address has been entered into the email field.",

	"ResetPasswordInput.Email|required":           "Please enter your email!",
	"ResetPasswordInput.Email|libemail":           "An invalid email address has been entered into the email field.",
	"ResetPasswordInput.Token|required":           "Could not reset the password.",
	"ResetPasswordInput.Password|required":        "Please enter your password!",
	"ResetPasswordInput.Password|password":        "Password must contain minimum of 10 and maximum of 65 characters. Password must contain at least one upper-case letter, one lower-case letter, one number and one symbol",
	"ResetPasswordInput.ConfirmPassword|required": "Please confirm your password!",
	"ResetPasswordInput.ConfirmPassword|eqfield":  "Password and Confirm password do not match!",

	"SetRolesInput.Roles|required": "Please select at least one role.",
	"SetRolesInput.Roles|min":      "Please select at least one role.",
	"SetRolesInput.Roles|oneof":    "Role must be one of Admin, Librarian or Reader.",

	"ReservationInput.BookID|required": "Book does not exist in the database.",

	"ReservationMessageInput.BookReservationID|required": "The choosen book reservation request does not exist.",
	"ReservationMessageInput.Message|max":                "The message must contain max length of 1028 characters.",

	"ReservationRejectInput.BookReservationID|required": "The choosen book reservation request does not exist.",
	"ReservationRejectInput.Message|required":           "The message is required.",
	"ReservationRejectInput.Message|max":                "The message must contain max length of 1028 characters.",

	"MailSettingsInput.Host|required":        "Please enter the SMTP host.",
	"MailSettingsInput.Host|hostname|ip":     "SMTP host must be a hostname or IP address.",
	"MailSettingsInput.Port|required":        "Please enter the SMTP port.",
	"MailSettingsInput.Port|gte":             "SMTP port must be between 1 and 65535.",
	"MailSettingsInput.Port|lte":             "SMTP port must be between 1 and 65535.",
	"MailSettingsInput.Username|required":    "Please enter the SMTP username.",
	"MailSettingsInput.SenderEmail|required": "Please enter the sender email.",
	"MailSettingsInput.SenderEmail|libemail": "An invalid email address has been entered into the email field.",
}
