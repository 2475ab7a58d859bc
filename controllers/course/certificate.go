package controllers

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUserCertificates(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	certs, err := h.Learning.ListCertificates(c.UserContext(), cl)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}

func (h *Handler) GetCertificate(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	cert, err := h.Learning.GetCertificate(c.UserContext(), cl, localID(c, "certificate_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", cert)
}

// VerifyCertificate is public: anyone holding the number may check it
func (h *Handler) VerifyCertificate(c *fiber.Ctx) error {
	number, _ := c.Locals("certificateNumber").(string)

	cert, err := h.Learning.VerifyCertificate(c.UserContext(), number)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified!", cert)
}

func (h *Handler) RevokeCertificate(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	cert, err := h.Learning.RevokeCertificate(c.UserContext(), cl, localID(c, "certificate_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked!", cert)
}
