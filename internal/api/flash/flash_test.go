package flash

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlashApp() *fiber.App {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		return Redirect(c, "/show", Success, "Ticket created.")
	})
	app.Get("/show", func(c *fiber.Ctx) error {
		var out string
		for _, m := range Pop(c) {
			out += string(m.Level) + ":" + m.Text + ";"
		}
		return c.SendString(out)
	})
	app.Get("/inline", func(c *fiber.Ctx) error {
		Add(c, Danger, "Invalid credentials.")
		Add(c, Info, "Second.")
		var out string
		for _, m := range Pop(c) {
			out += m.Text + ";"
		}
		return c.SendString(out)
	})
	return app
}

func TestFlashSurvivesRedirect(t *testing.T) {
	app := newFlashApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/show", resp.Header.Get("Location"))

	var flashCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			flashCookie = c
		}
	}
	require.NotNil(t, flashCookie)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(flashCookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "success:Ticket created.;", string(body))

	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestFlashRenderedInSameRequest(t *testing.T) {
	app := newFlashApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/inline", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Invalid credentials.;Second.;", string(body))
}

func TestPopIgnoresTamperedCookie(t *testing.T) {
	app := newFlashApp()

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "%%%not-base64"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, string(body))
}
