package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c fiber.Ctx) error {
		return Success(c, fiber.StatusOK, "", fiber.Map{"total": 3})
	})
	app.Post("/created", func(c fiber.Ctx) error {
		return Created(c, fiber.Map{"id": "abc"})
	})
	app.Get("/bad-status", func(c fiber.Ctx) error {
		return Error(c, 42, "", nil)
	})

	cases := []struct {
		method, path string
		status       int
		message      string
	}{
		{method: "GET", path: "/ok", status: 200, message: MessageOK},
		{method: "POST", path: "/created", status: 201, message: MessageCreated},
		{method: "GET", path: "/bad-status", status: 500, message: MessageInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var env SemanticResponse
			require.NoError(t, json.Unmarshal(body, &env))
			assert.Equal(t, tc.status, env.Status)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, MessageServiceUnavailable, DefaultMessage(503))
	assert.Equal(t, MessageInternalServerError, DefaultMessage(502))
	assert.Equal(t, MessageOK, DefaultMessage(204))
	assert.Equal(t, MessageError, DefaultMessage(418))
}
