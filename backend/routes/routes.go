package routes

import (
	"log"
	"skillforge/backend/config"
	"skillforge/backend/controllers"
	"skillforge/backend/middleware"
	"skillforge/backend/services"
	"skillforge/backend/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger, store storage.Store) {
	// Services
	progressService := services.NewProgressService(db, logger)
	reviewService := services.NewReviewService(db, logger, progressService)
	commentService := services.NewCommentService(db, logger)
	catalogService := services.NewCatalogService(db, logger, reviewService)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	teacherMiddleware := middleware.TeacherMiddleware()
	adminMiddleware := middleware.AdminMiddleware()

	// Profile routes
	profileController := controllers.NewProfileController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, profileController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, profileController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, logger, catalogService, reviewService, store)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/catalog", coursesController.SearchCatalog)
	courses.Post("/", teacherMiddleware, coursesController.CreateCourse)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Put("/:id", teacherMiddleware, coursesController.UpdateCourse)
	courses.Delete("/:id", teacherMiddleware, coursesController.DeleteCourse)
	courses.Put("/:id/published", teacherMiddleware, coursesController.SetPublished)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Delete("/:id/enroll", coursesController.Unenroll)

	// Video routes
	videosController := controllers.NewVideosController(db, cfg, logger, progressService, store)
	courses.Post("/:id/videos", teacherMiddleware, videosController.UploadVideo)
	courses.Delete("/:id/videos/:videoId", teacherMiddleware, videosController.DeleteVideo)
	courses.Get("/:id/player", videosController.PlayerContent)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, logger, progressService)
	courses.Put("/:id/videos/:videoId/progress", progressController.RecordTick)
	courses.Get("/:id/videos/:videoId/progress", progressController.GetVideoProgress)
	courses.Get("/:id/progress", progressController.GetCourseProgress)

	// Rating and review routes
	reviewsController := controllers.NewReviewsController(db, cfg, logger, reviewService)
	courses.Put("/:id/rating", reviewsController.SetRating)
	courses.Get("/:id/rating", reviewsController.GetRatingStats)
	courses.Get("/:id/reviews", reviewsController.ListReviews)
	courses.Post("/:id/reviews", reviewsController.SubmitReview)

	reviews := app.Group("/api/reviews", authMiddleware)
	reviews.Put("/:reviewId", reviewsController.EditReview)
	reviews.Delete("/:reviewId", reviewsController.DeleteReview)
	reviews.Post("/:reviewId/helpful", reviewsController.MarkHelpful)
	reviews.Post("/:reviewId/replies", reviewsController.ReplyToReview)

	// Comment routes
	commentsController := controllers.NewCommentsController(db, cfg, logger, commentService)
	courses.Post("/:id/comments", commentsController.PostComment)
	courses.Get("/:id/comments", commentsController.ListComments)

	comments := app.Group("/api/comments", authMiddleware)
	comments.Put("/:commentId", commentsController.EditComment)
	comments.Delete("/:commentId", commentsController.DeleteComment)
	comments.Post("/:commentId/like", commentsController.LikeComment)
	comments.Post("/:commentId/replies", commentsController.ReplyToComment)

	// Teacher dashboard
	app.Get("/api/teacher/stats", authMiddleware, teacherMiddleware, coursesController.TeacherStats)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg, logger)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/users", adminController.ListUsers)
	admin.Put("/users/:email/status", adminController.SetUserStatus)
	admin.Get("/courses", adminController.ListCourses)
}
