package validator

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vrroom/booking-bff/internal/pkg/response"
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

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Payment method validation
	validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		method := fl.Field().String()
		validMethods := []string{"ONLINE", "CASH"}
		for _, m := range validMethods {
			if method == m {
				return true
			}
		}
		return false
	})

	// ISO calendar date validation
	validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	// Slot start time validation
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
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
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "payment_method":
			errors[field] = "Invalid payment method. Must be: ONLINE or CASH"
		case "iso_date":
			errors[field] = "Invalid date. Must be YYYY-MM-DD"
		case "hhmm":
			errors[field] = "Invalid time. Must be HH:mm"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// DecodeAndValidate decodes the JSON request body into req and validates it.
// On failure it writes a 400 or 422 response and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}
