package controllers

import (
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) StartQuizAttempt(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	attemptID, err := h.Learning.StartAttempt(c.UserContext(), cl, localID(c, "quiz_id"), localID(c, "course_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz attempt started!", fiber.Map{
		"attempt_id": attemptID,
	})
}

func (h *Handler) GetAttemptQuestions(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	sheet, err := h.Learning.AttemptQuestions(c.UserContext(), cl, localID(c, "attempt_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz questions fetched successfully!", sheet)
}

func (h *Handler) SubmitQuizAttempt(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}
	reqData, ok := c.Locals("validatedSubmission").(*validators.SubmitAttemptRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := h.Learning.SubmitAttempt(c.UserContext(), cl, localID(c, "attempt_id"), reqData.Answers)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	message := "Quiz submitted successfully!"
	if result.PendingGrading {
		message = "Quiz submitted, essay answers are waiting for grading!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (h *Handler) GetAttemptResult(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	result, err := h.Learning.GetAttemptResult(c.UserContext(), cl, localID(c, "attempt_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt result fetched successfully!", result)
}

func (h *Handler) GradeEssay(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}
	reqData, ok := c.Locals("validatedGrade").(*validators.GradeEssayRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := h.Learning.GradeEssay(c.UserContext(), cl, localID(c, "answer_id"), *reqData.Score, reqData.Feedback)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Essay graded successfully!", result)
}

func (h *Handler) GetPendingEssays(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	essays, err := h.Learning.PendingEssays(c.UserContext(), cl, localID(c, "quiz_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending essays fetched successfully!", essays)
}
