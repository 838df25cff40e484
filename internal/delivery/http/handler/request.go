package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"concoro/internal/delivery/http/middleware"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindBody decodes the JSON body and runs struct validation on it.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if err := validate.Struct(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", validationDetails(err), err)
	}
	return nil
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			out[key] = fe.Tag() + "=" + fe.Param()
			continue
		}
		out[key] = fe.Tag()
	}
	return out
}

func userIDFromCtx(c fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return userID, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseQueryIntPtr(c fiber.Ctx, key string) (*int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &v, nil
}

func parseQueryBool(c fiber.Ctx, key string) (bool, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// parseQueryDate reads a YYYY-MM-DD day in loc. endOfDay moves the instant
// to the last nanosecond of that day so "to" bounds are inclusive.
func parseQueryDate(c fiber.Ctx, key string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &d, nil
}

func listParamsFromQuery(c fiber.Ctx, loc *time.Location) (usecase.ConcorsoListParams, error) {
	p := usecase.ConcorsoListParams{
		Query:     c.Query("q"),
		Location:  c.Query("location"),
		Regione:   c.Query("regione"),
		Ente:      c.Query("ente"),
		Settore:   c.Query("settore"),
		Tipologia: c.Query("tipologia"),
		Stato:     c.Query("stato"),
		Sort:      c.Query("sort"),
	}

	var err error
	if p.Page, err = parseQueryIntStrict(c, "page", 1); err != nil {
		return p, badRequest(err)
	}
	if p.Limit, err = parseQueryIntStrict(c, "limit", 20); err != nil {
		return p, badRequest(err)
	}
	if p.ClosingWithinDays, err = parseQueryIntPtr(c, "closing_within_days"); err != nil {
		return p, badRequest(err)
	}
	if p.DeadlineFrom, err = parseQueryDate(c, "deadline_from", loc, false); err != nil {
		return p, badRequest(err)
	}
	if p.DeadlineTo, err = parseQueryDate(c, "deadline_to", loc, true); err != nil {
		return p, badRequest(err)
	}
	return p, nil
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}

// mapUsecaseError turns usecase sentinels into HTTP errors.
func mapUsecaseError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, notFoundMsg, nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Conflict", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
