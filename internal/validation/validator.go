package validation

import (
	"reflect"
	"regexp"
	"strings"

	"mockbank/internal/models"

	"github.com/go-playground/validator/v10"
)

var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// New returns a validator with the API's custom rules. Field names in errors
// are the JSON names so clients see from_acct rather than FromAcct.
func New() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("account_id", validateAccountID)
	_ = v.RegisterValidation("transfer_mode", validateTransferMode)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateAccountID accepts ids such as ACC1001
func validateAccountID(fl validator.FieldLevel) bool {
	return accountIDPattern.MatchString(fl.Field().String())
}

func validateTransferMode(fl validator.FieldLevel) bool {
	return models.IsValidTransferMode(fl.Field().String())
}
