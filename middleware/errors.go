package middleware

import (
	"errors"
	"lms/services/learning"
	"lms/services/notification"
	"lms/services/rewards"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ServiceErrorResponse maps a service error onto the response envelope
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	var verr *learning.ValidationError
	switch {
	case errors.As(err, &verr):
		return ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, learning.ErrUnauthenticated):
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	case errors.Is(err, learning.ErrAccessDenied):
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	case errors.Is(err, learning.ErrNotEnrolled):
		return JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	case errors.Is(err, learning.ErrNotFound),
		errors.Is(err, rewards.ErrUserNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, learning.ErrAttemptLimitReached),
		errors.Is(err, learning.ErrAlreadySubmitted),
		errors.Is(err, learning.ErrAttemptExpired):
		return JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, learning.ErrOutOfRange):
		return JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong, please try again later!", nil)
}
