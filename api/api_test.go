package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachme/platform-api/utils/apperr"
)

func TestErrorHandlerRendersEnvelope(t *testing.T) {
	server := NewAPIServer(":0", "test", 1024)
	app := server.GetEngine()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperr.New(apperr.CodeConflict, "Already there")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{path: "/conflict", status: http.StatusConflict, message: "Already there"},
		{path: "/teapot", status: http.StatusTeapot, message: "short and stout"},
		{path: "/missing", status: http.StatusNotFound, message: "Cannot GET /missing"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}
