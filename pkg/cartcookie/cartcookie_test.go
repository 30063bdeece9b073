package cartcookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	cart := New()
	cart.Items = append(cart.Items, Item{ProductID: 1, Size: "42", Color: "Negro", Quantity: 2})

	value, err := Serialize(cart)
	require.NoError(t, err)

	parsed := Parse(value)
	require.NotNil(t, parsed)
	assert.Equal(t, cart.ID, parsed.ID)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, uint(1), parsed.Items[0].ProductID)
	assert.Equal(t, 2, parsed.Items[0].Quantity)
}

func TestParse_Malformed(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("not-json"))
	assert.Nil(t, Parse(`{"items":[]}`))
	assert.Nil(t, Parse(`{"id":"abc"}`))
}

func TestFromRequest_NoCookieStartsFresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	cart := FromRequest(c)
	require.NotNil(t, cart)
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)
}

func TestWriteAndFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	cart := New()
	cart.Items = append(cart.Items, Item{ProductID: 7, Size: "41", Color: "Blanco", Quantity: 1})
	require.NoError(t, Write(c, cart))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	// Round-trip through a new request carrying the cookie.
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])

	parsed := FromRequest(c2)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, uint(7), parsed.Items[0].ProductID)
}

func TestClear_ExpiresCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}
