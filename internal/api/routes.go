package api

import (
	"net/http"

	"ksaphier/trainerapp/internal/metrics"
	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth             service.AuthService
	Exercises        service.ExerciseService
	Muscles          service.MuscleService
	Workouts         service.WorkoutService
	WorkoutExercises service.WorkoutExerciseService
}

func SetupRoutes(
	router *gin.Engine,
	log *zap.Logger,
	services Services,
	loginLimiter *RateLimiter,
) {
	authHandler := NewAuthHandler(services.Auth, log)
	exerciseHandler := NewExerciseHandler(services.Exercises, log)
	muscleHandler := NewMuscleHandler(services.Muscles, log)
	workoutHandler := NewWorkoutHandler(services.Workouts, services.WorkoutExercises, log)

	authMiddleware := AuthMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	}

	exerciseGroup := router.Group("/exercises")
	{
		exerciseGroup.GET("", exerciseHandler.ListExercises)
		exerciseGroup.POST("", exerciseHandler.CreateExercise)
		exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
		exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
		exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)

		exerciseGroup.POST("/:id/muscles/:muscleId", exerciseHandler.LinkMuscle)
		exerciseGroup.DELETE("/:id/muscles/:muscleId", exerciseHandler.UnlinkMuscle)

		exerciseGroup.POST("/:id/media/upload-url", exerciseHandler.RequestMediaUploadURL)
		exerciseGroup.PUT("/:id/media", exerciseHandler.ConfirmMedia)
		exerciseGroup.GET("/:id/media", exerciseHandler.GetMediaURL)
	}

	muscleGroup := router.Group("/muscles")
	{
		muscleGroup.GET("", muscleHandler.ListMuscles)
		muscleGroup.POST("", muscleHandler.CreateMuscle)
		muscleGroup.GET("/by-exercise/:exerciseId", muscleHandler.ListByExercise)
		muscleGroup.GET("/:id", muscleHandler.GetMuscle)
		muscleGroup.PUT("/:id", muscleHandler.UpdateMuscle)
		muscleGroup.DELETE("/:id", muscleHandler.DeleteMuscle)
	}

	workoutGroup := router.Group("/workouts")
	{
		// Only listing and creation are tied to the caller.
		workoutGroup.GET("", authMiddleware, workoutHandler.ListMyWorkouts)
		workoutGroup.POST("", authMiddleware, workoutHandler.CreateWorkout)

		workoutGroup.POST("/addExercise", workoutHandler.AddExercise)
		workoutGroup.DELETE("/deleteExercise/:id", workoutHandler.DeleteExercise)

		workoutGroup.GET("/:id", workoutHandler.GetWorkout)
		workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
		workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		workoutGroup.GET("/:id/details", workoutHandler.GetWorkoutDetails)
	}
}
