// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or phone formats) defined in struct tags
// and turns validation failures into client-facing errors
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/deppfellow/call-relay/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
)

// phoneRegex is the accepted phone number shape: a leading "+", a non-zero
// first digit and 2 to 15 digits in total.
//
// validator's built-in e164 tag is looser (it makes the first digit optional
// and caps length differently), hence the custom "phone" tag.
var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// validate is shared by every payload. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})

	return v
}

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,phone"`)
// - Implement Validate() error that runs validation.Struct(req)
type Validatable interface {
	Validate() error
}

// FailureMessager lets a payload choose the message clients see when binding
// or validation fails. Without it the message is "Validation failed".
type FailureMessager interface {
	FailureMessage() string
}

// Struct validates v against its struct tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// IsValidPhone reports whether s is an acceptable phone number.
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) a JSON body must hold exactly one JSON value.
// 2) c.Bind(payload) populates request struct from the incoming request body.
// 3) payload.Validate() applies validation rules.
// 4) Returns *errs.HTTPError (400) if either step fails. The bind or field
// errors ride along as the cause for logging.
//
// NOTE: c.Bind expects a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	message := failureMessage(payload)

	// A malformed body is treated the same as a missing field.
	if err := ensureSingleJSONValue(c); err != nil {
		return errs.NewBadRequestError(message).WithCause(err)
	}

	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(message).WithCause(pkgerrors.Wrap(err, "bind request"))
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError(message).WithCause(describeValidationError(err))
	}

	return nil
}

// ensureSingleJSONValue rejects JSON bodies with data after the first value,
// e.g. `{"phoneNumber":"+15551234567"} trailing`, which echo's binder would
// silently ignore. The body is restored for c.Bind.
func ensureSingleJSONValue(c echo.Context) error {
	req := c.Request()
	if req.ContentLength == 0 || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return pkgerrors.Wrap(err, "read request body")
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	dec := json.NewDecoder(bytes.NewReader(body))

	var first json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return pkgerrors.Wrap(err, "decode request body")
	}

	if _, err := dec.Token(); !pkgerrors.Is(err, io.EOF) {
		return pkgerrors.New("unexpected data after JSON body")
	}

	return nil
}

func failureMessage(payload Validatable) string {
	if m, ok := payload.(FailureMessager); ok {
		return m.FailureMessage()
	}
	return "Validation failed"
}

// describeValidationError flattens validator errors into one readable error
// such as "phonenumber: must be a valid phone number with country code".
func describeValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	parts := make([]string, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		var msg string

		switch fieldErr.Tag() {
		case "required":
			msg = "is required"

		case "phone":
			msg = "must be a valid phone number with country code"

		default:
			if fieldErr.Param() != "" {
				msg = fmt.Sprintf("%s:%s", fieldErr.Tag(), fieldErr.Param())
			} else {
				msg = fieldErr.Tag()
			}
		}

		parts = append(parts, field+": "+msg)
	}

	return pkgerrors.New(strings.Join(parts, "; "))
}
