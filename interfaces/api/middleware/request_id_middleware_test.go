package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/pkg/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"missing header gets generated id", "", false},
		{"client id is echoed", "req-123_abc.7", true},
		{"oversized id is replaced", strings.Repeat("a", maxRequestIDLength+1), false},
		{"id with spaces is replaced", "abc def", false},
		{"id with newline is replaced", "abc\ninjected=1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			app := fiber.New()
			app.Use(RequestIDMiddleware())
			app.Get("/", func(c *fiber.Ctx) error {
				seen = logger.GetRequestID(c.UserContext())
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.incoming != "" {
				req.Header[RequestIDHeader] = []string{tt.incoming}
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			got := resp.Header.Get(RequestIDHeader)
			assert.Equal(t, got, seen, "context id must match response header")
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
				return
			}
			assert.NotEqual(t, tt.incoming, got)
			_, parseErr := uuid.Parse(got)
			assert.NoError(t, parseErr, "generated id should be a uuid")
		})
	}
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID(strings.Repeat("x", maxRequestIDLength)))
	assert.False(t, validRequestID(strings.Repeat("x", maxRequestIDLength+1)))
	assert.False(t, validRequestID("ไทย"))
	assert.False(t, validRequestID(""))
}
