package mercadopago

import "errors"

var (
	ErrNetworkError   = errors.New("mercadopago: network error")
	ErrUnauthorized   = errors.New("mercadopago: unauthorized")
	ErrInvalidRequest = errors.New("mercadopago: invalid request")
	ErrAPIError       = errors.New("mercadopago: api error")
)

// ErrorResponse is the error envelope Mercado Pago returns on non-2xx.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
