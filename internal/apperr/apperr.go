package apperr

import "net/http"

// Error is an HTTP-mappable application error: a status code plus the
// message returned to the client in the {"detail": ...} envelope.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// New creates an application error with an explicit status code.
func New(status int, detail string) *Error {
	return &Error{Status: status, Detail: detail}
}

func BadRequest(detail string) *Error {
	return New(http.StatusBadRequest, detail)
}

func Unauthorized(detail string) *Error {
	return New(http.StatusUnauthorized, detail)
}

func PaymentRequired(detail string) *Error {
	return New(http.StatusPaymentRequired, detail)
}

func NotFound(detail string) *Error {
	return New(http.StatusNotFound, detail)
}

func TooManyRequests(detail string) *Error {
	return New(http.StatusTooManyRequests, detail)
}

func ServerError(detail string) *Error {
	return New(http.StatusInternalServerError, detail)
}

func ServiceUnavailable(detail string) *Error {
	return New(http.StatusServiceUnavailable, detail)
}

// InvalidLoginCodeError is raised when a submitted login code does not match.
// It carries the session identifier so the client can resume the same login
// session; the error middleware echoes it in the X-Session response header.
type InvalidLoginCodeError struct {
	Session string
}

func (e *InvalidLoginCodeError) Error() string {
	return "Login code was invalid"
}

// RefreshTokenError marks a failed refresh-token exchange. It has no HTTP
// mapping of its own and surfaces as a 500 unless a caller handles it.
type RefreshTokenError struct{}

func (e *RefreshTokenError) Error() string {
	return "refresh token error"
}
