package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestPlayerIDOutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, PlayerID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	ids := []string{"alice", "bob", "carol", "mallory"}
	for i, id := range ids {
		// alternate between header and query so both paths are covered
		req := httptest.NewRequest(http.MethodGet, "/?playerId="+id, nil)
		if i%2 == 0 {
			req = httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Player-ID", id)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: got %d", id, resp.StatusCode)
		}
	}

	for i, id := range ids {
		if seen[i] != id {
			t.Fatalf("stored id %d: got %q want %q", i, seen[i], id)
		}
	}
}

func TestMissingPlayerID(t *testing.T) {
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("got %d", resp.StatusCode)
	}
}
