package api

import (
	"net/http"

	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MuscleHandler serves the muscle catalog.
type MuscleHandler struct {
	muscleService service.MuscleService
	log           *zap.Logger
}

func NewMuscleHandler(muscleService service.MuscleService, log *zap.Logger) *MuscleHandler {
	return &MuscleHandler{muscleService: muscleService, log: log}
}

type MuscleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *MuscleHandler) ListMuscles(c *gin.Context) {
	muscles, err := h.muscleService.ListMuscles(c.Request.Context())
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, muscles)
}

// ListByExercise godoc
// @Summary Muscles linked to an exercise
// @Tags Muscles
// @Produce json
// @Param exerciseId path int true "Exercise ID"
// @Success 200 {array} domain.Muscle "Possibly empty"
// @Router /muscles/by-exercise/{exerciseId} [get]
func (h *MuscleHandler) ListByExercise(c *gin.Context) {
	exerciseID, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}
	muscles, err := h.muscleService.ListMusclesForExercise(c.Request.Context(), exerciseID)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, muscles)
}

func (h *MuscleHandler) GetMuscle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	muscle, err := h.muscleService.GetMuscleByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, muscle)
}

func (h *MuscleHandler) CreateMuscle(c *gin.Context) {
	var req MuscleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	muscle, err := h.muscleService.CreateMuscle(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, muscle)
}

func (h *MuscleHandler) UpdateMuscle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req MuscleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	muscle, err := h.muscleService.UpdateMuscle(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, muscle)
}

func (h *MuscleHandler) DeleteMuscle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.muscleService.DeleteMuscle(c.Request.Context(), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusOK)
}
