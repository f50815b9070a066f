package apperror

import "net/http"

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int          // HTTP Status Code (e.g., 400, 404)
	Message string       // User-facing error message
	Err     error        // The underlying error, if any (not exposed to user)
	Fields  []FieldError // Field-level issues for validation failures
}

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a 400 AppError listing the offending fields.
func Validation(fields ...FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Fields:  fields,
	}
}

// FieldErrors accumulates field issues while validating a payload.
type FieldErrors []FieldError

// Add records an issue for path.
func (f *FieldErrors) Add(path, message string) {
	*f = append(*f, FieldError{Path: path, Message: message})
}

// Err returns nil when no issues were recorded, otherwise a validation AppError.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f...)
}

// Has reports whether an issue was already recorded for path.
func (f FieldErrors) Has(path string) bool {
	for _, fe := range f {
		if fe.Path == path {
			return true
		}
	}
	return false
}
