package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/config"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/handlers"
	admin_handlers "github.com/sahilchouksey/devcamper-api/handlers/admin"
	auth_handlers "github.com/sahilchouksey/devcamper-api/handlers/auth"
	bootcamp_handlers "github.com/sahilchouksey/devcamper-api/handlers/bootcamp"
	course_handlers "github.com/sahilchouksey/devcamper-api/handlers/course"
	review_handlers "github.com/sahilchouksey/devcamper-api/handlers/review"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/services"
	"github.com/sahilchouksey/devcamper-api/services/storage"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/query"
	"go.uber.org/zap"
)

// Dependencies is everything the routes need, built once at startup
type Dependencies struct {
	Env    *config.EnviornmentVariable
	Store  database.Storage
	Logger *zap.Logger

	JWTManager *auth.JWTManager
	Blacklist  *auth.BlacklistService
	// BruteForce and RateLimitStorage are nil without Redis
	BruteForce       *middleware.BruteForceProtection
	RateLimitStorage fiber.Storage

	Bootcamps *services.BootcampService
	Photos    storage.PhotoStore
	Mailer    services.Mailer
	Metrics   *middleware.Metrics
}

// SetupRoutes mounts the middleware stack and every route on app
func SetupRoutes(app *fiber.App, deps Dependencies) {
	db := deps.Store.GetDB()
	env := deps.Env

	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_MAX,
		RateLimitWindow:   env.RATE_LIMIT_WINDOW,
		RateLimitStorage:  deps.RateLimitStorage,
		AccessLog:         !env.IsProduction(),
	})

	authMiddleware := middleware.NewAuthMiddleware(deps.JWTManager, deps.Blacklist, db)
	protect := authMiddleware.Required()
	publishers := authMiddleware.RequireRole(model.RolePublisher, model.RoleAdmin)
	reviewers := authMiddleware.RequireRole(model.RoleUser, model.RoleAdmin)
	admins := authMiddleware.RequireRole(model.RoleAdmin)

	authHandler := auth_handlers.NewAuthHandler(db, deps.JWTManager, deps.Blacklist, deps.BruteForce, deps.Mailer, auth_handlers.Config{
		CookieExpireDays: env.JWT_COOKIE_EXPIRE,
		SecureCookie:     env.IsProduction(),
	}, deps.Logger)
	bootcampHandler := bootcamp_handlers.NewBootcampHandler(db, deps.Bootcamps, deps.Photos, env.MAX_FILE_UPLOAD)
	courseHandler := course_handlers.NewCourseHandler(db)
	reviewHandler := review_handlers.NewReviewHandler(db)
	userHandler := admin_handlers.NewUserHandler(db)

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, deps.Store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if deps.BruteForce != nil {
		authGroup.Post("/login", deps.BruteForce.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Get("/logout", authHandler.Logout)
	authGroup.Get("/me", protect, authHandler.GetMe)
	authGroup.Put("/updatedetails", protect, authHandler.UpdateDetails)
	authGroup.Put("/updatepassword", protect, authHandler.UpdatePassword)
	authGroup.Post("/forgotpassword", authHandler.ForgotPassword)
	authGroup.Put("/resetpassword/:resettoken", authHandler.ResetPassword)

	// Bootcamps routes
	bootcamps := api.Group("/bootcamps")
	bootcamps.Get("/", query.AdvancedResults[model.Bootcamp](db, bootcamp_handlers.ListOptions), bootcampHandler.GetBootcamps)
	bootcamps.Get("/radius/:zipcode/:distance", bootcampHandler.GetBootcampsInRadius)
	bootcamps.Get("/:id", bootcampHandler.GetBootcamp)
	bootcamps.Post("/", protect, publishers, bootcampHandler.CreateBootcamp)
	bootcamps.Put("/:id/photo", protect, publishers, bootcampHandler.UploadPhoto)
	bootcamps.Put("/:id", protect, publishers, bootcampHandler.UpdateBootcamp)
	bootcamps.Delete("/:id", protect, publishers, bootcampHandler.DeleteBootcamp)

	// Courses and reviews nested under their bootcamp
	bootcamps.Get("/:bootcampId/courses", courseHandler.GetCourses)
	bootcamps.Post("/:bootcampId/courses", protect, publishers, courseHandler.CreateCourse)
	bootcamps.Get("/:bootcampId/reviews", reviewHandler.GetReviews)
	bootcamps.Post("/:bootcampId/reviews", protect, reviewers, reviewHandler.CreateReview)

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", query.AdvancedResults[model.Course](db, course_handlers.ListOptions), courseHandler.GetCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", protect, publishers, courseHandler.UpdateCourse)
	courses.Delete("/:id", protect, publishers, courseHandler.DeleteCourse)

	// Reviews routes
	reviews := api.Group("/reviews")
	reviews.Get("/", query.AdvancedResults[model.Review](db, review_handlers.ListOptions), reviewHandler.GetReviews)
	reviews.Get("/:id", reviewHandler.GetReview)
	reviews.Put("/:id", protect, reviewers, reviewHandler.UpdateReview)
	reviews.Delete("/:id", protect, reviewers, reviewHandler.DeleteReview)

	// Users routes (admin only)
	users := api.Group("/users", protect, admins)
	users.Get("/", query.AdvancedResults[model.User](db, admin_handlers.UserListOptions), userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// Uploaded photos and other public assets
	app.Static("/", env.PUBLIC_DIR, fiber.Static{
		MaxAge: int((24 * time.Hour).Seconds()),
	})
}
