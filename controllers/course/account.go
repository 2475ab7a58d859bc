package controllers

import (
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetPointsSummary(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	summary, err := h.Ledger.Summary(c.UserContext(), cl.UserID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Points summary fetched successfully!", summary)
}

func (h *Handler) GetPointsHistory(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}
	page, _ := c.Locals("validatedPage").(*validators.PageQuery)
	if page == nil {
		page = &validators.PageQuery{Page: 1, Limit: 20}
	}

	entries, total, err := h.Ledger.History(c.UserContext(), cl.UserID, page.Page, page.Limit)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Points history fetched successfully!", fiber.Map{
		"transactions": entries,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}
	page, _ := c.Locals("validatedPage").(*validators.PageQuery)
	limit := 20
	if page != nil {
		limit = page.Limit
	}

	items, err := h.Notifications.List(c.UserContext(), cl.UserID, c.QueryBool("unread"), limit)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", items)
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	if err := h.Notifications.MarkRead(c.UserContext(), cl.UserID, localID(c, "notification_id")); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read!", nil)
}
