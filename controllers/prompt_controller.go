package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prompteria-api/middleware"
	"prompteria-api/models"
	"prompteria-api/repositories"
	"prompteria-api/services"
	"prompteria-api/utils"
)

type PromptController struct {
	prompts *services.PromptService
	likes   *services.LikeService
	views   *services.ViewService
	lists   *services.ListService
}

func NewPromptController(prompts *services.PromptService, likes *services.LikeService, views *services.ViewService, lists *services.ListService) *PromptController {
	return &PromptController{
		prompts: prompts,
		likes:   likes,
		views:   views,
		lists:   lists,
	}
}

// ToggleLike handles POST /prompt/:id/like.
func (pc *PromptController) ToggleLike(c *gin.Context) {
	resp, err := pc.likes.Toggle(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to toggle like")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecordView handles POST /prompt/:id/view.
func (pc *PromptController) RecordView(c *gin.Context) {
	views, err := pc.views.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to increment view")
		return
	}

	c.JSON(http.StatusOK, models.ViewResponse{Views: views})
}

// GetFeed handles GET /prompt with optional tag and search filters.
func (pc *PromptController) GetFeed(c *gin.Context) {
	filter := repositories.ListFilter{
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}

	page, err := pc.lists.List(c.Request.Context(), filter, utils.QueryInt(c, "page"), utils.QueryInt(c, "limit"))
	if err != nil {
		respondError(c, err, "Failed to fetch prompts")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (pc *PromptController) CreatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body")
		return
	}

	resp, err := pc.prompts.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create a new prompt")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (pc *PromptController) GetPrompt(c *gin.Context) {
	resp, err := pc.prompts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch prompt")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (pc *PromptController) UpdatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body")
		return
	}

	resp, err := pc.prompts.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to update prompt")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (pc *PromptController) DeletePrompt(c *gin.Context) {
	if err := pc.prompts.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err, "Failed to delete prompt")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prompt deleted successfully"})
}
