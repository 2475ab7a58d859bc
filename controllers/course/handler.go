package controllers

import (
	"lms/middleware"
	"lms/services/learning"
	"lms/services/notification"
	"lms/services/rewards"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the learning services over HTTP
type Handler struct {
	Learning      *learning.Service
	Ledger        *rewards.Ledger
	Notifications *notification.Dispatcher
}

func NewHandler(svc *learning.Service, ledger *rewards.Ledger, inbox *notification.Dispatcher) *Handler {
	return &Handler{Learning: svc, Ledger: ledger, Notifications: inbox}
}

func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
}

func localID(c *fiber.Ctx, key string) uint {
	id, _ := c.Locals(key).(uint)
	return id
}
