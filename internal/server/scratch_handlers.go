package server

import (
	"scratch/internal/models"
	"scratch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetScratch handles GET /api/scratches/:id
func (s *Server) GetScratch(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	scratch, extra, err := s.scratchService.Get(c.Context(), id, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"scratch":        scratch,
		"extraScratches": extra,
	})
}

// GetConversation handles GET /api/scratches/:id/conversation
func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	conversation, err := s.scratchService.Conversation(c.Context(), id, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(conversation)
}

// SearchScratches handles GET /api/scratches/search
func (s *Server) SearchScratches(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.scratchService.Search(c.Context(), query, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// CreateScratch handles POST /api/scratches
func (s *Server) CreateScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Body          string `json:"body"`
		MediaURL      string `json:"mediaUrl"`
		ParentID      *uint  `json:"parentId"`
		RescratchedID *uint  `json:"rescratchedId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	scratch, err := s.scratchService.Create(c.Context(), service.CreateScratchInput{
		AuthorID:      userID,
		Body:          req.Body,
		MediaURL:      req.MediaURL,
		ParentID:      req.ParentID,
		RescratchedID: req.RescratchedID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"id":       scratch.ID,
		"authorId": scratch.AuthorID,
	})
}

// DeleteScratch handles DELETE /api/scratches/:id
func (s *Server) DeleteScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Delete(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteDirectRescratch handles DELETE /api/scratches/:id/direct-rescratch.
// The :id names the reshared scratch, not the reshare itself.
func (s *Server) DeleteDirectRescratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.DeleteDirectRescratch(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetRescratchers handles GET /api/scratches/:id/rescratches
func (s *Server) GetRescratchers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.scratchService.Rescratchers(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetLikers handles GET /api/scratches/:id/likes
func (s *Server) GetLikers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	page := parsePagination(c)

	result, err := s.scratchService.Likers(c.Context(), id, page.Limit, page.After, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// LikeScratch handles POST /api/scratches/:id/likes
func (s *Server) LikeScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Like(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// UnlikeScratch handles DELETE /api/scratches/:id/likes
func (s *Server) UnlikeScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Unlike(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// BookmarkScratch handles POST /api/scratches/:id/bookmark
func (s *Server) BookmarkScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Bookmark(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// UnbookmarkScratch handles DELETE /api/scratches/:id/bookmark
func (s *Server) UnbookmarkScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Unbookmark(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// PinScratch handles POST /api/scratches/:id/pin
func (s *Server) PinScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Pin(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// UnpinScratch handles POST /api/scratches/:id/unpin
func (s *Server) UnpinScratch(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.scratchService.Unpin(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
