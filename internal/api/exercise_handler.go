package api

import (
	"net/http"

	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	log             *zap.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, log *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest is the body for creating or updating an exercise.
type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaConfirmRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List the exercise catalog
// @Tags Exercises
// @Produce json
// @Param name query string false "Exact name filter"
// @Success 200 {array} domain.Exercise
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// CreateExercise godoc
// @Summary Create a new exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Description Also removes the exercise from every workout and detaches its muscles.
// @Tags Exercises
// @Param id path int true "Exercise ID"
// @Success 200
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ExerciseHandler) LinkMuscle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	muscleID, ok := parseIDParam(c, "muscleId")
	if !ok {
		return
	}
	if err := h.exerciseService.LinkMuscle(c.Request.Context(), id, muscleID); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ExerciseHandler) UnlinkMuscle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	muscleID, ok := parseIDParam(c, "muscleId")
	if !ok {
		return
	}
	if err := h.exerciseService.UnlinkMuscle(c.Request.Context(), id, muscleID); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}

// RequestMediaUploadURL godoc
// @Summary Get a presigned URL to upload exercise demo media
// @Tags Exercises
// @Accept json
// @Produce json
// @Param id path int true "Exercise ID"
// @Param body body MediaUploadRequest true "Media content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /exercises/{id}/media/upload-url [post]
func (h *ExerciseHandler) RequestMediaUploadURL(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.exerciseService.RequestMediaUploadURL(c.Request.Context(), id, req.ContentType)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExerciseHandler) ConfirmMedia(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req MediaConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.ConfirmMedia(c.Request.Context(), id, req.ObjectKey, req.ContentType)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) GetMediaURL(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	url, err := h.exerciseService.GetMediaDownloadURL(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
