package server

import (
	"scratch/internal/models"
	"scratch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/users
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.userService.Create(c.Context(), service.CreateUserInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"id":       user.ID,
		"username": user.Username,
	})
}

// SearchUsers handles GET /api/users/search
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}
	viewerID, _ := s.optionalUserID(c)
	limit := c.QueryInt("limit", 0)
	after := c.Query("after")

	result, err := s.userService.Search(c.Context(), query, limit, after, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetSuggestedUsers handles GET /api/users/suggested-users
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	limit := c.QueryInt("limit", 0)

	users, err := s.userService.Suggested(c.Context(), viewerID, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetHomeTimeline handles GET /api/users/timeline
func (s *Server) GetHomeTimeline(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	result, err := s.scratchService.HomeTimeline(c.Context(), userID, page.Limit, page.After)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetUserByUsername handles GET /api/users/username/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID, _ := s.optionalUserID(c)

	user, err := s.userService.GetByUsername(c.Context(), username, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	user, err := s.userService.Get(c.Context(), id, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserTimeline handles GET /api/users/:id/timeline
func (s *Server) GetUserTimeline(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.scratchService.UserTimeline(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.userService.Followers(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetFollowed handles GET /api/users/:id/followed
func (s *Server) GetFollowed(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.userService.Followed(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetBookmarks handles GET /api/users/:id/bookmarks. Bookmarks are private;
// only the owner may list them.
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != userID {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Bookmarks are private"))
	}
	page := parsePagination(c)

	result, err := s.scratchService.Bookmarks(c.Context(), userID, page.Limit, page.After)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetLikedScratches handles GET /api/users/:id/likes
func (s *Server) GetLikedScratches(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.scratchService.Liked(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// UpdateProfile handles PATCH /api/users/:id
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != userID {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Cannot modify another user's profile"))
	}

	var req struct {
		Name             *string `json:"name"`
		Description      *string `json:"description"`
		ProfileImageURL  *string `json:"profileImageUrl"`
		ProfileBannerURL *string `json:"profileBannerUrl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), userID, service.UpdateProfileInput{
		Name:             req.Name,
		Description:      req.Description,
		ProfileImageURL:  req.ProfileImageURL,
		ProfileBannerURL: req.ProfileBannerURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// ChangePassword handles PUT /api/users/:id/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != userID {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Cannot change another user's password"))
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != userID {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Cannot delete another user's account"))
	}

	if err := s.userService.Delete(c.Context(), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
