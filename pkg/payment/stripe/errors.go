package stripe

import "errors"

var (
	ErrNetworkError   = errors.New("stripe: network error")
	ErrUnauthorized   = errors.New("stripe: unauthorized")
	ErrInvalidRequest = errors.New("stripe: invalid request")
	ErrAPIError       = errors.New("stripe: api error")
)

// ErrorResponse is the error envelope Stripe returns on non-2xx.
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
