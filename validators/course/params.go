package courseValidator

import (
	"lms/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route parameter
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IDParams validates each named route parameter and stores it in Locals
// under the same name, e.g. "course_id".
func IDParams(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fieldErrs := make(map[string]string)
		for _, p := range params {
			id, ok := parseID(c, p)
			if !ok {
				fieldErrs[p] = "Must be a positive integer!"
				continue
			}
			c.Locals(p, id)
		}
		if len(fieldErrs) > 0 {
			return middleware.ValidationErrorResponse(c, fieldErrs)
		}
		return c.Next()
	}
}

// CertificateNumber validates the public certificate number parameter
func CertificateNumber() fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := strings.TrimSpace(c.Params("number"))
		if number == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate number is required!", nil)
		}
		c.Locals("certificateNumber", number)
		return c.Next()
	}
}
