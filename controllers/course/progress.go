package controllers

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) EnrollInCourse(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	enrollment, err := h.Learning.Enroll(c.UserContext(), cl, localID(c, "course_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

func (h *Handler) UnenrollFromCourse(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	if err := h.Learning.Unenroll(c.UserContext(), cl, localID(c, "course_id")); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrolled from course successfully!", nil)
}

func (h *Handler) EnrollInPath(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	pe, err := h.Learning.EnrollPath(c.UserContext(), cl, localID(c, "path_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in learning path successfully!", pe)
}

func (h *Handler) GetEnrollments(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	enrollments, err := h.Learning.ListEnrollments(c.UserContext(), cl)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

func (h *Handler) GetCourseProgress(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	progress, err := h.Learning.Progress(c.UserContext(), cl, localID(c, "course_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", progress)
}

func (h *Handler) CompleteLesson(c *fiber.Ctx) error {
	cl := middleware.CurrentCaller(c)
	if cl == nil {
		return unauthorized(c)
	}

	progress, err := h.Learning.CompleteLesson(c.UserContext(), cl, localID(c, "course_id"), localID(c, "lesson_id"))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed!", fiber.Map{
		"progress": progress,
	})
}

// ReconcilePaths replays learning path cascades on demand
func (h *Handler) ReconcilePaths(c *fiber.Ctx) error {
	n, err := h.Learning.ReconcilePaths(c.UserContext())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning paths reconciled!", fiber.Map{
		"processed": n,
	})
}
