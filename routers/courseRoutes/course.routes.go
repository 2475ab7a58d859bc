package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing routes
func SetupCourseRoutes(app *fiber.App, h *controllers.Handler) {
	userGroup := app.Group("/course", middleware.JWTMiddleware)

	// Enrollment
	userGroup.Post("/:course_id/enroll", validators.IDParams("course_id"), h.EnrollInCourse)
	userGroup.Delete("/:course_id/enroll", validators.IDParams("course_id"), h.UnenrollFromCourse)

	// Progress tracking
	userGroup.Get("/:course_id/progress", validators.IDParams("course_id"), h.GetCourseProgress)
	userGroup.Post("/:course_id/lesson/:lesson_id/complete", validators.IDParams("course_id", "lesson_id"), h.CompleteLesson)

	// Quiz attempts
	userGroup.Post("/:course_id/quiz/:quiz_id/attempt", validators.IDParams("course_id", "quiz_id"), h.StartQuizAttempt)

	attemptGroup := app.Group("/attempt", middleware.JWTMiddleware)
	attemptGroup.Get("/:attempt_id/questions", validators.IDParams("attempt_id"), h.GetAttemptQuestions)
	attemptGroup.Post("/:attempt_id/submit", validators.IDParams("attempt_id"), validators.SubmitAttempt(), h.SubmitQuizAttempt)
	attemptGroup.Get("/:attempt_id/result", validators.IDParams("attempt_id"), h.GetAttemptResult)

	// Learning paths
	pathGroup := app.Group("/path", middleware.JWTMiddleware)
	pathGroup.Post("/:path_id/enroll", validators.IDParams("path_id"), h.EnrollInPath)

	// User enrollments, certificates, points and notifications
	userEnrollGroup := app.Group("/user", middleware.JWTMiddleware)
	userEnrollGroup.Get("/enrollments", h.GetEnrollments)
	userEnrollGroup.Get("/certificates", h.GetUserCertificates)
	userEnrollGroup.Get("/certificates/:certificate_id", validators.IDParams("certificate_id"), h.GetCertificate)
	userEnrollGroup.Get("/points", h.GetPointsSummary)
	userEnrollGroup.Get("/points/history", validators.Pagination(), h.GetPointsHistory)
	userEnrollGroup.Get("/notifications", validators.Pagination(), h.GetNotifications)
	userEnrollGroup.Put("/notifications/:notification_id/read", validators.IDParams("notification_id"), h.MarkNotificationRead)

	// Public verification
	app.Get("/certificate/verify/:number", validators.CertificateNumber(), h.VerifyCertificate)
}
