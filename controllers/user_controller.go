package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"prompteria-api/repositories"
	"prompteria-api/services"
	"prompteria-api/utils"
)

type UserController struct {
	users *services.UserService
	lists *services.ListService
}

func NewUserController(users *services.UserService, lists *services.ListService) *UserController {
	return &UserController{users: users, lists: lists}
}

// GetUser returns a profile with the first page of the user's prompts.
func (uc *UserController) GetUser(c *gin.Context) {
	profile, err := uc.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch user data")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetUserPosts pages through prompts created by the user.
func (uc *UserController) GetUserPosts(c *gin.Context) {
	uc.listFor(c, func(id string) repositories.ListFilter {
		return repositories.ListFilter{CreatorID: id}
	}, "Failed to fetch user's prompts")
}

// GetUserLikes pages through prompts the user has liked.
func (uc *UserController) GetUserLikes(c *gin.Context) {
	uc.listFor(c, func(id string) repositories.ListFilter {
		return repositories.ListFilter{LikedBy: id}
	}, "Failed to fetch liked prompts")
}

func (uc *UserController) listFor(c *gin.Context, filter func(id string) repositories.ListFilter, failure string) {
	id := c.Param("id")
	if strings.TrimSpace(id) == "" {
		utils.SendError(c, http.StatusBadRequest, "Missing user ID")
		return
	}

	page, err := uc.lists.List(c.Request.Context(), filter(id), utils.QueryInt(c, "page"), utils.QueryInt(c, "limit"))
	if err != nil {
		respondError(c, err, failure)
		return
	}

	c.JSON(http.StatusOK, page)
}
