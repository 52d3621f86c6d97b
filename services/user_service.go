package services

import (
	"context"
	"strings"

	"prompteria-api/models"
	"prompteria-api/repositories"
)

type UserService struct {
	users UserStore
	lists *ListService
}

func NewUserService(users UserStore, lists *ListService) *UserService {
	return &UserService{users: users, lists: lists}
}

// Profile returns a user with the first page of their prompts.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.UserProfileResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, err := s.lists.List(ctx, repositories.ListFilter{CreatorID: user.ID}, DefaultPage, DefaultLimit)
	if err != nil {
		return nil, err
	}

	return &models.UserProfileResponse{
		User:       *user,
		Prompts:    page.Prompts,
		Pagination: page.Pagination,
	}, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newError(ErrInvalidInput, "Missing user id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}
