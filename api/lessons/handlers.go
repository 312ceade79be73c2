package lessons

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	lessonService "github.com/LeiShi1313/readrepeat/internal/services/lessons"
)

// Create creates a lesson in UPLOADED state
// @Summary      Create lesson
// @Description  Creates a lesson from a foreign text and its translation. Audio is attached or synthesized afterwards.
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        lesson body lessonService.CreateInput true "Lesson content"
// @Success      201 {object} types.LessonResponse
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Router       /api/lessons [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input lessonService.CreateInput
		if !types.BindJSONOrError(c, &input) {
			return
		}

		lesson, err := deps.LessonService.Create(c.Request.Context(), input)
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendCreated(c, types.LessonResponse{Lesson: lesson})
	}
}

// List returns all lessons, newest first
// @Summary      List lessons
// @Tags         lessons
// @Produce      json
// @Success      200 {object} types.LessonsResponse
// @Router       /api/lessons [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.LessonService.List(c.Request.Context())
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.LessonsResponse{Lessons: list, Count: len(list)})
	}
}

// Get returns a lesson with its sentences ordered by idx
// @Summary      Get lesson
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      200 {object} types.LessonResponse
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Router       /api/lessons/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, err := deps.LessonService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.LessonResponse{Lesson: lesson})
	}
}

// Edit applies a partial update
// @Summary      Edit lesson
// @Description  Updates lesson fields. Changing the text, languages, model or dialog flag of a READY or FAILED lesson with audio sends it back to PROCESSING. Editing a PROCESSING lesson is rejected.
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Param        lesson body lessonService.EditInput true "Fields to change"
// @Success      200 {object} types.LessonResponse
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is processing"
// @Router       /api/lessons/{id} [patch]
func Edit(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input lessonService.EditInput
		if !types.BindJSONOrError(c, &input) {
			return
		}

		lesson, err := deps.LessonService.Edit(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.LessonResponse{Lesson: lesson})
	}
}

// Delete removes a lesson, its sentences, its outstanding jobs and its files
// @Summary      Delete lesson
// @Tags         lessons
// @Param        id path string true "Lesson ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Router       /api/lessons/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.LessonService.Delete(c.Request.Context(), c.Param("id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
