// Package response writes the {status, message, data} envelope every API
// route answers with.
package response

import "github.com/gofiber/fiber/v3"

type SemanticResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessageCreated             = "created"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageTooManyRequests     = "too many requests"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
	MessageError               = "error"
)

var defaultMessages = map[int]string{
	fiber.StatusOK:                  MessageOK,
	fiber.StatusCreated:             MessageCreated,
	fiber.StatusBadRequest:          MessageBadRequest,
	fiber.StatusUnauthorized:        MessageUnauthorized,
	fiber.StatusForbidden:           MessageForbidden,
	fiber.StatusNotFound:            MessageNotFound,
	fiber.StatusConflict:            MessageConflict,
	fiber.StatusUnprocessableEntity: MessageUnprocessableEntity,
	fiber.StatusTooManyRequests:     MessageTooManyRequests,
	fiber.StatusInternalServerError: MessageInternalServerError,
	fiber.StatusServiceUnavailable:  MessageServiceUnavailable,
}

func Success(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func Created(c fiber.Ctx, data any) error {
	return write(c, fiber.StatusCreated, MessageCreated, data)
}

// Error writes the envelope for a failed request. data carries field
// details for validation errors and is null otherwise.
func Error(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func write(c fiber.Ctx, status int, message string, data any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	return c.Status(status).JSON(SemanticResponse{Status: status, Message: message, Data: data})
}

func DefaultMessage(status int) string {
	if m, ok := defaultMessages[status]; ok {
		return m
	}
	if status >= 500 {
		return MessageInternalServerError
	}
	if status >= 200 && status < 300 {
		return MessageOK
	}
	return MessageError
}
