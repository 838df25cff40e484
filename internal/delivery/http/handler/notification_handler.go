package handler

import (
	"concoro/internal/delivery/http/dto"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const notificationNotFound = "Notification not found"

type NotificationHandler struct {
	uc      usecase.NotificationUsecase
	present *Presenter
}

func NewNotificationHandler(uc usecase.NotificationUsecase, present *Presenter) *NotificationHandler {
	return &NotificationHandler{uc: uc, present: present}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/notifications", h.List)
	r.Get("/me/notifications/unread-count", h.UnreadCount)
	r.Post("/me/notifications/read-all", h.MarkAllRead)
	r.Post("/me/notifications/:id/read", h.MarkRead)
	r.Delete("/me/notifications/:id", h.Delete)
	r.Get("/me/matches", h.Matches)
}

func (h *NotificationHandler) List(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	unread, err := parseQueryBool(c, "unread")
	if err != nil {
		return badRequest(err)
	}
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return badRequest(err)
	}
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return badRequest(err)
	}

	res, err := h.uc.List(c.Context(), userID, unread, page, limit)
	if err != nil {
		return mapUsecaseError(err, notificationNotFound)
	}

	items := make([]dto.NotificationResponse, 0, len(res.Items))
	for _, n := range res.Items {
		items = append(items, h.present.Notification(n))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		pageOf(items, res.Total, res.Page, res.Limit, res.TotalPages, res.HasMore))
}

func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	n, err := h.uc.UnreadCount(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err, notificationNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.UnreadCountResponse{Unread: n})
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err)
	}

	if err := h.uc.MarkRead(c.Context(), userID, id); err != nil {
		return mapUsecaseError(err, notificationNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	n, err := h.uc.MarkAllRead(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err, notificationNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]int64{"updated": n})
}

func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err)
	}

	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapUsecaseError(err, notificationNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *NotificationHandler) Matches(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return badRequest(err)
	}

	items, err := h.uc.Matches(c.Context(), userID, limit)
	if err != nil {
		return mapUsecaseError(err, "Match not found")
	}

	out := make([]dto.MatchResponse, 0, len(items))
	for _, it := range items {
		reasons := it.Match.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		out = append(out, dto.MatchResponse{
			Score:      it.Match.Score,
			Reasons:    reasons,
			ComputedAt: it.Match.ComputedAt,
			Concorso:   h.present.Concorso(it.Concorso, false),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
