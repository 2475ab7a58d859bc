package courseValidator

import (
	"lms/middleware"
	"lms/services/learning"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SubmitAttemptRequest is the body of a quiz submission
type SubmitAttemptRequest struct {
	Answers []learning.AnswerInput `json:"answers"`
}

// GradeEssayRequest is the body of an essay grade
type GradeEssayRequest struct {
	Score    *int   `json:"score"`
	Feedback string `json:"feedback"`
}

// PageQuery is the optional pagination of list endpoints
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func SubmitAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitAttemptRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Answers == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"answers": "Answers are required!"})
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

func GradeEssay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GradeEssayRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		fieldErrs := make(map[string]string)
		if reqData.Score == nil {
			fieldErrs["score"] = "Score is required!"
		}
		reqData.Feedback = strings.TrimSpace(reqData.Feedback)

		if len(fieldErrs) > 0 {
			return middleware.ValidationErrorResponse(c, fieldErrs)
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}

// Pagination defaults to the first page of 20 and caps limit at 100
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PageQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		fieldErrs := make(map[string]string)
		if reqData.Page < 0 {
			fieldErrs["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit < 0 || reqData.Limit > 100 {
			fieldErrs["limit"] = "Limit must be between 1 and 100!"
		}
		if len(fieldErrs) > 0 {
			return middleware.ValidationErrorResponse(c, fieldErrs)
		}

		if reqData.Page == 0 {
			reqData.Page = 1
		}
		if reqData.Limit == 0 {
			reqData.Limit = 20
		}
		c.Locals("validatedPage", reqData)
		return c.Next()
	}
}
