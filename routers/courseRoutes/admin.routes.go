package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up grading and administration routes
func SetupAdminCourseRoutes(app *fiber.App, h *controllers.Handler) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware)

	// Essay grading
	adminGroup.Get("/quiz/:quiz_id/pending-essays", middleware.RequireCapability(models.CapGradeEssays), validators.IDParams("quiz_id"), h.GetPendingEssays)
	adminGroup.Post("/answer/:answer_id/grade", middleware.RequireCapability(models.CapGradeEssays), validators.IDParams("answer_id"), validators.GradeEssay(), h.GradeEssay)

	// Certificates
	adminGroup.Post("/certificate/:certificate_id/revoke", middleware.RequireCapability(models.CapRevokeCertificates), validators.IDParams("certificate_id"), h.RevokeCertificate)

	// Learning path maintenance
	adminGroup.Post("/paths/reconcile", middleware.RequireCapability(models.CapReconcilePaths), h.ReconcilePaths)
}
