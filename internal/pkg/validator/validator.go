package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Token codes: 1-12 uppercase letters or digits, letter first
	validate.RegisterValidation("token_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) < 1 || len(code) > 12 {
			return false
		}
		for i, c := range code {
			switch {
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
		return true
	})

	// XRPL classic addresses start with 'r'
	validate.RegisterValidation("ledger_address", func(fl validator.FieldLevel) bool {
		addr := fl.Field().String()
		return addr == "" || (strings.HasPrefix(addr, "r") && len(addr) >= 25 && len(addr) <= 35)
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "uuid":
			errors[field] = "Invalid UUID format"
		case "token_code":
			errors[field] = "Invalid token code. Use 1-12 uppercase letters or digits, starting with a letter"
		case "ledger_address":
			errors[field] = "Invalid ledger address"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
