package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
)

// StoryHandler serves traveller stories
type StoryHandler struct {
	storyService *services.StoryService
	logger       *logrus.Logger
}

// NewStoryHandler creates a new story handler
func NewStoryHandler(storyService *services.StoryService, logger *logrus.Logger) *StoryHandler {
	return &StoryHandler{storyService: storyService, logger: logger}
}

// List handles GET /api/v1/stories
func (h *StoryHandler) List(c *gin.Context) {
	page, err := h.storyService.List(models.StoryFilter{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
		Search: c.Query("search"),
		Author: c.Query("author"),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       page.Count,
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"data":        page.Data,
	})
}

// Get handles GET /api/v1/stories/:id
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	story, err := h.storyService.View(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", story)
}

// Create handles POST /api/v1/stories
func (h *StoryHandler) Create(c *gin.Context) {
	user := middleware.MustGetUser(c)

	var req services.CreateStoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	story, err := h.storyService.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Story created successfully", story)
}

// Update handles PUT /api/v1/stories/:id
func (h *StoryHandler) Update(c *gin.Context) {
	user := middleware.MustGetUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	story, err := h.storyService.Update(c.Request.Context(), user, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Story updated successfully", story)
}

// Delete handles DELETE /api/v1/stories/:id
func (h *StoryHandler) Delete(c *gin.Context) {
	user := middleware.MustGetUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.storyService.Delete(user, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Story deleted successfully", nil)
}

// ToggleLike handles POST /api/v1/stories/:id/like
func (h *StoryHandler) ToggleLike(c *gin.Context) {
	user := middleware.MustGetUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.storyService.ToggleLike(user.ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", result)
}

// Popular handles GET /api/v1/stories/popular
func (h *StoryHandler) Popular(c *gin.Context) {
	h.list(c, h.storyService.Popular)
}

// Recent handles GET /api/v1/stories/recent
func (h *StoryHandler) Recent(c *gin.Context) {
	h.list(c, h.storyService.Recent)
}

// ByTag handles GET /api/v1/stories/tag/:tag
func (h *StoryHandler) ByTag(c *gin.Context) {
	tag := c.Param("tag")
	h.list(c, func() ([]models.Story, error) { return h.storyService.ByTag(tag) })
}

// Search handles GET /api/v1/stories/search?q=
func (h *StoryHandler) Search(c *gin.Context) {
	q := c.Query("q")
	h.list(c, func() ([]models.Story, error) { return h.storyService.Search(q) })
}

// MyStories handles GET /api/v1/stories/user/my-stories
func (h *StoryHandler) MyStories(c *gin.Context) {
	user := middleware.MustGetUser(c)
	h.list(c, func() ([]models.Story, error) { return h.storyService.MyStories(user.ID) })
}

// MyStats handles GET /api/v1/stories/user/stats
func (h *StoryHandler) MyStats(c *gin.Context) {
	user := middleware.MustGetUser(c)

	stats, err := h.storyService.MyStats(user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

func (h *StoryHandler) list(c *gin.Context, fetch func() ([]models.Story, error)) {
	stories, err := fetch()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if stories == nil {
		stories = []models.Story{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(stories), "data": stories})
}
