// Package cartcookie serializes the anonymous (guest) cart carried in a
// client-side cookie. The snapshot is plain JSON: an id generated on first
// add-to-cart plus the line identities; prices and stock are never stored
// client-side and are always resolved server-side.
package cartcookie

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie key holding the guest cart snapshot.
	CookieName = "cart"
	// MaxAge is 30 days, matching the storefront session horizon.
	MaxAge = 30 * 24 * 60 * 60
)

type Item struct {
	ProductID uint   `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
}

// New returns an empty guest cart with a fresh client identifier.
func New() *Cart {
	return &Cart{ID: uuid.NewString(), Items: []Item{}}
}

// Parse decodes a cookie value. Returns nil for missing or malformed
// values; callers start a new cart in that case rather than failing.
func Parse(value string) *Cart {
	if value == "" {
		return nil
	}
	var cart Cart
	if err := json.Unmarshal([]byte(value), &cart); err != nil {
		return nil
	}
	if cart.ID == "" || cart.Items == nil {
		return nil
	}
	return &cart
}

func Serialize(cart *Cart) (string, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromRequest reads the guest cart out of the request cookie, returning a
// fresh cart when none is present.
func FromRequest(c *gin.Context) *Cart {
	value, err := c.Cookie(CookieName)
	if err != nil {
		return New()
	}
	if cart := Parse(value); cart != nil {
		return cart
	}
	return New()
}

// Write sets the cart cookie on the response: httpOnly, SameSite=Lax,
// path "/" per the cart transport contract. Gin URL-encodes the JSON
// value, and Cookie() on the way back decodes it.
func Write(c *gin.Context, cart *Cart) error {
	value, err := Serialize(cart)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, MaxAge, "/", "", false, true)
	return nil
}

// Clear expires the cart cookie.
func Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
