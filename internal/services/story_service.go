package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/media"
)

const (
	defaultStoryLimit = 10
	maxStoryLimit     = 100
	popularLimit      = 10
	recentLimit       = 10
	searchLimit       = 20
)

// StoryStore persists stories and likes
type StoryStore interface {
	List(f models.StoryFilter) ([]models.Story, int, error)
	GetByID(id uuid.UUID) (*models.Story, error)
	IncrementViews(id uuid.UUID) (*models.Story, error)
	Create(s *models.Story) error
	Update(s *models.Story) error
	Delete(id uuid.UUID) error
	ToggleLike(storyID, userID uuid.UUID) (*models.LikeResult, error)
	Popular(limit int) ([]models.Story, error)
	Recent(limit int) ([]models.Story, error)
	ByTag(tag string) ([]models.Story, error)
	Search(q string, limit int) ([]models.Story, error)
	ByCreator(userID uuid.UUID) ([]models.Story, error)
	CreatorStats(userID uuid.UUID) (*models.UserStoryStats, error)
}

// StoryService manages blog stories
type StoryService struct {
	store  StoryStore
	media  media.Uploader
	logger *logrus.Logger
}

// NewStoryService creates a new story service
func NewStoryService(store StoryStore, uploader media.Uploader, logger *logrus.Logger) *StoryService {
	return &StoryService{store: store, media: uploader, logger: logger}
}

// Tags accepts either a comma separated string or a JSON array of strings
type Tags []string

// UnmarshalJSON implements json.Unmarshaler
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	var raw []string
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.Split(s, ",")
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tags must be a string or an array of strings")
	}

	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	*t = out
	return nil
}

// CreateStoryInput is a new story. Images are base64 data URIs.
type CreateStoryInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Tags     Tags   `json:"tags"`
	Image1   string `json:"image1"`
	Image2   string `json:"image2"`
	Image3   string `json:"image3"`
	Image4   string `json:"image4"`
}

// UpdateStoryInput is a partial story change. An empty image clears the slot.
type UpdateStoryInput struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Author      *string `json:"author"`
	Content     *string `json:"content"`
	Tags        *Tags   `json:"tags"`
	Image1      *string `json:"image1"`
	Image2      *string `json:"image2"`
	Image3      *string `json:"image3"`
	Image4      *string `json:"image4"`
	IsPublished *bool   `json:"isPublished"`
}

// List returns a page of published stories
func (s *StoryService) List(f models.StoryFilter) (*models.StoryPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultStoryLimit
	}
	if f.Limit > maxStoryLimit {
		f.Limit = maxStoryLimit
	}

	stories, total, err := s.store.List(f)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []models.Story{}
	}

	return &models.StoryPage{
		Count:       len(stories),
		Total:       total,
		TotalPages:  models.NewPagination(f.Page, f.Limit, total).Pages,
		CurrentPage: f.Page,
		Data:        stories,
	}, nil
}

// View returns a story and counts the view
func (s *StoryService) View(id uuid.UUID) (*models.Story, error) {
	story, err := s.store.IncrementViews(id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrNotFound
	}
	return story, nil
}

// Create publishes a new story
func (s *StoryService) Create(ctx context.Context, userID uuid.UUID, in CreateStoryInput) (*models.Story, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, invalid("Title and content are required")
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = models.DefaultStoryAuthor
	}

	now := time.Now()
	story := &models.Story{
		ID:          uuid.New(),
		Title:       in.Title,
		Subtitle:    models.NewNullString(strings.TrimSpace(in.Subtitle)),
		Author:      author,
		Content:     in.Content,
		Tags:        []string(in.Tags),
		IsPublished: true,
		CreatedBy:   uuid.NullUUID{UUID: userID, Valid: true},
		UpdatedBy:   uuid.NullUUID{UUID: userID, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if story.Tags == nil {
		story.Tags = []string{}
	}

	slots := story.StoryImages()
	for i, value := range []string{in.Image1, in.Image2, in.Image3, in.Image4} {
		url, err := s.storeImage(ctx, value)
		if err != nil {
			return nil, err
		}
		*slots[i] = models.NewNullString(url)
	}

	if err := s.store.Create(story); err != nil {
		return nil, err
	}
	story.FillExcerpt()

	s.logger.WithFields(logrus.Fields{
		"story_id": story.ID,
		"user_id":  userID,
	}).Info("Story created")
	return story, nil
}

// storeImage uploads data URIs and passes hosted URLs through
func (s *StoryService) storeImage(ctx context.Context, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", nil
	case strings.HasPrefix(value, "data:image/"):
		asset, err := s.media.Upload(ctx, value, media.StoryFolder, media.StoryTransformation)
		if err != nil {
			return "", fmt.Errorf("failed to upload story image: %w", err)
		}
		return asset.URL, nil
	case strings.HasPrefix(value, "https://"), strings.HasPrefix(value, "http://"):
		return value, nil
	}
	return "", invalid("Images must be base64 data URIs")
}

func (s *StoryService) owned(requester *models.User, id uuid.UUID) (*models.Story, error) {
	story, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrNotFound
	}
	isOwner := story.CreatedBy.Valid && story.CreatedBy.UUID == requester.ID
	if !isOwner && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return story, nil
}

// Update applies a partial change for the owner or an admin
func (s *StoryService) Update(ctx context.Context, requester *models.User, id uuid.UUID, in UpdateStoryInput) (*models.Story, error) {
	story, err := s.owned(requester, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, invalid("Title cannot be empty")
		}
		story.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, invalid("Content cannot be empty")
		}
		story.Content = *in.Content
	}
	if in.Subtitle != nil {
		story.Subtitle = models.NewNullString(strings.TrimSpace(*in.Subtitle))
	}
	if in.Author != nil {
		story.Author = strings.TrimSpace(*in.Author)
		if story.Author == "" {
			story.Author = models.DefaultStoryAuthor
		}
	}
	if in.Tags != nil {
		story.Tags = []string(*in.Tags)
		if story.Tags == nil {
			story.Tags = []string{}
		}
	}
	if in.IsPublished != nil {
		story.IsPublished = *in.IsPublished
	}

	slots := story.StoryImages()
	for i, value := range []*string{in.Image1, in.Image2, in.Image3, in.Image4} {
		if value == nil || *value == slots[i].String {
			continue
		}
		url, err := s.storeImage(ctx, *value)
		if err != nil {
			return nil, err
		}
		*slots[i] = models.NewNullString(url)
	}

	story.UpdatedBy = uuid.NullUUID{UUID: requester.ID, Valid: true}
	if err := s.store.Update(story); err != nil {
		return nil, err
	}
	story.UpdatedAt = time.Now()
	story.FillExcerpt()
	return story, nil
}

// Delete removes a story for the owner or an admin. Default stories are kept.
func (s *StoryService) Delete(requester *models.User, id uuid.UUID) error {
	story, err := s.owned(requester, id)
	if err != nil {
		return err
	}
	if story.IsDefault {
		return ErrDefaultStory
	}
	return s.store.Delete(id)
}

// ToggleLike likes or unlikes a story for userID
func (s *StoryService) ToggleLike(userID, storyID uuid.UUID) (*models.LikeResult, error) {
	story, err := s.store.GetByID(storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrNotFound
	}
	return s.store.ToggleLike(storyID, userID)
}

// Popular returns the most viewed published stories
func (s *StoryService) Popular() ([]models.Story, error) {
	return s.store.Popular(popularLimit)
}

// Recent returns the newest published stories
func (s *StoryService) Recent() ([]models.Story, error) {
	return s.store.Recent(recentLimit)
}

// ByTag returns published stories with tag
func (s *StoryService) ByTag(tag string) ([]models.Story, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, invalid("Tag is required")
	}
	return s.store.ByTag(tag)
}

// Search matches published stories against q
func (s *StoryService) Search(q string) ([]models.Story, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("Search query is required")
	}
	return s.store.Search(q, searchLimit)
}

// MyStories returns every story userID created
func (s *StoryService) MyStories(userID uuid.UUID) ([]models.Story, error) {
	return s.store.ByCreator(userID)
}

// MyStats summarizes userID's stories
func (s *StoryService) MyStats(userID uuid.UUID) (*models.UserStoryStats, error) {
	return s.store.CreatorStats(userID)
}
