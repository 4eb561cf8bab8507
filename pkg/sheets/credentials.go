package sheets

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/sheets/v4"
)

// ErrConfiguration marks errors caused by missing or malformed credentials.
// It is always returned before any network call is attempted.
var ErrConfiguration = errors.New("Google Sheets API credentials are not configured")

// Credentials identify the service account and the spreadsheet it works on.
type Credentials struct {
	SpreadsheetID string `env:"GOOGLE_SHEET_ID" validate:"required"`
	ClientEmail   string `env:"GOOGLE_SHEETS_CLIENT_EMAIL" validate:"required,email"`
	PrivateKey    string `env:"GOOGLE_SHEETS_PRIVATE_KEY" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	return v
}

// Validate reports every missing or malformed field, named by its
// environment variable.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w (%v)", ErrConfiguration, err)
	}

	problems := []string{}
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}

	return fmt.Errorf("%w (%s)", ErrConfiguration, strings.Join(problems, ", "))
}

func (c Credentials) jwtConfig() *jwt.Config {
	return &jwt.Config{
		Email:      c.ClientEmail,
		PrivateKey: []byte(UnescapeKey(c.PrivateKey)),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
}

// UnescapeKey turns the literal \n sequences of a PEM key stored in a single
// line environment variable back into newlines.
func UnescapeKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// SpreadsheetID accepts either a bare spreadsheet ID or the URL of the
// spreadsheet and returns the ID.
func SpreadsheetID(v string) string {
	v = strings.TrimSpace(v)
	if match := spreadsheetURL.FindStringSubmatch(v); len(match) > 1 {
		return match[1]
	}

	return v
}
