// Package flash carries one-shot notices across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Level selects how a notice is styled.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Danger  Level = "danger"
)

// Message is a single notice.
type Message struct {
	Level Level  `json:"l"`
	Text  string `json:"t"`
}

const (
	cookieName = "helpdesk_flash"
	localsKey  = "flash_pending"
)

// Add queues a notice for the next rendered page.
func Add(c *fiber.Ctx, level Level, text string) {
	msgs := append(pending(c), Message{Level: level, Text: text})
	c.Locals(localsKey, msgs)

	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Pop returns queued notices and clears them.
func Pop(c *fiber.Ctx) []Message {
	msgs := pending(c)
	c.Locals(localsKey, []Message{})
	if c.Cookies(cookieName) != "" || len(msgs) > 0 {
		c.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Unix(0, 0),
		})
	}
	return msgs
}

// Redirect queues a notice and redirects to location.
func Redirect(c *fiber.Ctx, location string, level Level, text string) error {
	Add(c, level, text)
	return c.Redirect(location, fiber.StatusFound)
}

func pending(c *fiber.Ctx) []Message {
	if msgs, ok := c.Locals(localsKey).([]Message); ok {
		return msgs
	}
	raw := c.Cookies(cookieName)
	if raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(decoded, &msgs); err != nil {
		return nil
	}
	return msgs
}
