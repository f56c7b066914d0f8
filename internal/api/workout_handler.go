package api

import (
	"net/http"

	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorkoutHandler serves workouts, their details and their exercise links.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	linkService    service.WorkoutExerciseService
	log            *zap.Logger
}

func NewWorkoutHandler(workoutService service.WorkoutService, linkService service.WorkoutExerciseService, log *zap.Logger) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		linkService:    linkService,
		log:            log,
	}
}

// WorkoutRequest has no owner field: the owner always comes from the token.
type WorkoutRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// AddExerciseRequest rejects missing or non-positive ids with 400; ids that
// are well formed but unknown get 404 from the service.
type AddExerciseRequest struct {
	WorkoutID  int64 `json:"workoutId" binding:"required,gt=0"`
	ExerciseID int64 `json:"exerciseId" binding:"required,gt=0"`
	Series     int   `json:"series" binding:"min=0"`
	Reps       int   `json:"reps" binding:"min=0"`
	Rest       int   `json:"rest" binding:"min=0"`
	Weight     int   `json:"weight" binding:"min=0"`
}

// ListMyWorkouts godoc
// @Summary List the caller's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts [get]
func (h *WorkoutHandler) ListMyWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workouts, err := h.workoutService.ListWorkoutsForUser(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// CreateWorkout godoc
// @Summary Create a workout owned by the caller
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body WorkoutRequest true "Workout details"
// @Success 200 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, req.Name, req.Description, req.Type)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkoutByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), id, req.Name, req.Description, req.Type)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}

// GetWorkoutDetails godoc
// @Summary Workout with its exercises flattened
// @Description Each entry carries the link id, the exercise name and description, and the link's training parameters.
// @Tags Workouts
// @Produce json
// @Param id path int true "Workout ID"
// @Success 200 {object} domain.WorkoutDetails
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id}/details [get]
func (h *WorkoutHandler) GetWorkoutDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	details, err := h.workoutService.GetWorkoutDetails(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	link, err := h.linkService.AddToWorkout(c.Request.Context(), req.WorkoutID, req.ExerciseID, service.TrainingParams{
		Series: req.Series,
		Reps:   req.Reps,
		Rest:   req.Rest,
		Weight: req.Weight,
	})
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.linkService.RemoveFromWorkout(c.Request.Context(), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}
