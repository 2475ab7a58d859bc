package middleware

import (
	"lms/models"
	"lms/services/learning"

	"github.com/gofiber/fiber/v2"
)

// CurrentCaller returns the identity stored by JWTMiddleware, or nil
func CurrentCaller(c *fiber.Ctx) *learning.Caller {
	userID, ok := c.Locals("userId").(uint)
	if !ok || userID == 0 {
		return nil
	}
	role, _ := c.Locals("role").(models.Role)
	if role == "" {
		role = models.RoleStudent
	}
	return &learning.Caller{UserID: userID, Role: role}
}

// RequireCapability returns a middleware that rejects callers whose role
// does not hold the capability
func RequireCapability(capability models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := CurrentCaller(c)
		if caller == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if !caller.Role.Can(capability) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}
