package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/controllers"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/middleware"
	"github.com/yigit/edustay/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth             *controllers.AuthController
	Course           *controllers.CourseController
	CourseEngagement *controllers.EngagementController
	House            *controllers.HouseController
	HouseEngagement  *controllers.EngagementController
	Stats            *controllers.StatsController
	Upload           *controllers.UploadController
	Notifications    *websocket.Handler
}

// SetupRouter configures all application routes under /api/v1.
// limiter may be nil, in which case write endpoints are not throttled.
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) *gin.RouterGroup {
	throttle := func(ctx *gin.Context) { ctx.Next() }
	if limiter != nil {
		throttle = limiter.Handler()
	}

	v1 := router.Group("/api/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", throttle, c.Auth.Register)
		auth.POST("/login", throttle, c.Auth.Login)
		auth.POST("/refresh", throttle, c.Auth.RefreshToken)
		auth.POST("/logout", authMiddleware.JWTAuth(), c.Auth.Logout)
		auth.GET("/me", authMiddleware.JWTAuth(), c.Auth.Me)
	}

	// --- Live notifications ---
	if c.Notifications != nil {
		v1.GET("/ws", authMiddleware.JWTAuth(), c.Notifications.HandleConnection)
	}

	instructorOnly := authMiddleware.RoleRequired(models.RoleInstructor)
	homeownerOnly := authMiddleware.RoleRequired(models.RoleHomeowner)

	// --- Course routes ---
	courses := v1.Group("/courses")
	{
		// Optional auth lets instructors see their own catalogue and callers see their own state
		public := courses.Group("")
		public.Use(authMiddleware.OptionalAuth())
		{
			public.GET("", c.Course.ListCourses)
			public.GET("/:courseId", c.Course.GetCourse)
			public.GET("/:courseId/enrollment", c.Course.EnrollmentStatus)
			public.GET("/:courseId/rating", c.CourseEngagement.GetRatings)
			public.GET("/:courseId/favorite", c.CourseEngagement.FavoriteStatus)
		}

		protected := courses.Group("")
		protected.Use(authMiddleware.JWTAuth(), throttle)
		{
			protected.POST("/:courseId/enroll", c.Course.Enroll)
			protected.GET("/:courseId/progress", c.Course.GetProgress)
			protected.POST("/:courseId/progress", c.Course.UpdateProgress)
			protected.POST("/:courseId/rating", c.CourseEngagement.Rate)
			protected.POST("/:courseId/favorite", c.CourseEngagement.ToggleFavorite)

			protected.POST("", instructorOnly, c.Course.CreateCourse)
			protected.PUT("/:courseId", instructorOnly, c.Course.UpdateCourse)
			protected.DELETE("/:courseId", instructorOnly, c.Course.DeleteCourse)
		}
	}

	// --- Housing routes ---
	housing := v1.Group("/housing")
	{
		public := housing.Group("")
		public.Use(authMiddleware.OptionalAuth())
		{
			public.GET("", c.House.ListHouses)
			public.GET("/:houseId", c.House.GetHouse)
			public.GET("/:houseId/rating", c.HouseEngagement.GetRatings)
			public.GET("/:houseId/favorite", c.HouseEngagement.FavoriteStatus)
		}

		protected := housing.Group("")
		protected.Use(authMiddleware.JWTAuth(), throttle)
		{
			protected.POST("", homeownerOnly, c.House.CreateHouse)
			protected.POST("/upload", homeownerOnly, c.Upload.UploadHouseImage)
			protected.PUT("/:houseId", c.House.UpdateHouse)
			protected.DELETE("/:houseId", c.House.DeleteHouse)

			protected.POST("/:houseId/rent", c.House.RentHouse)
			protected.DELETE("/:houseId/rent", c.House.EndRental)
			protected.POST("/:houseId/rating", c.HouseEngagement.Rate)
			protected.POST("/:houseId/favorite", c.HouseEngagement.ToggleFavorite)
		}
	}

	// --- Dashboards and uploads ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/user/stats", c.Stats.UserStats)
		authenticated.GET("/instructor/stats", instructorOnly, c.Stats.InstructorStats)
		authenticated.GET("/homeowner/stats", homeownerOnly, c.Stats.HomeownerStats)
		authenticated.POST("/upload", throttle, instructorOnly, c.Upload.UploadCourseFile)
	}

	return v1
}
