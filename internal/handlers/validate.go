package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps JSON request bodies. Uploads use their own limits.
const maxBodyBytes = 1 << 20 // 1 MB

// validate is the shared validator instance for request DTOs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads and unmarshals a JSON request body into dst, then runs
// struct validation. Returns a client-safe error message on failure.
func decodeJSON(r *http.Request, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return validateStruct(dst)
}

// decodeJSONWithFields additionally returns the set of top-level keys
// present in the body, so PATCH-style handlers can distinguish an omitted
// field from an explicit zero value.
func decodeJSONWithFields(r *http.Request, dst any) (map[string]json.RawMessage, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return fields, validateStruct(dst)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}
	return body, nil
}

// validateStruct runs validator tags and converts the first failure into a
// readable message like "email must be a valid email address".
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	// Non-struct payloads (plain maps) have no tags to check.
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid request")
	}

	fe := verrs[0]
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

// jsonFieldName lowercases the struct field's first letter to match the
// camelCase JSON names clients send.
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "field"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// isJSONValue reports whether s parses as the expected JSON container,
// used for the tags/images/metadata columns stored as JSON text.
func isJSONValue(s string, wantArray bool) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if wantArray && !strings.HasPrefix(trimmed, "[") {
		return false
	}
	if !wantArray && !strings.HasPrefix(trimmed, "{") {
		return false
	}
	return json.Valid([]byte(trimmed))
}
