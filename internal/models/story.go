package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ExcerptLength is the number of characters kept in a story excerpt
const ExcerptLength = 100

// DefaultStoryAuthor is used when a story is created without an author
const DefaultStoryAuthor = "Admin"

// Story is a blog article with up to four hosted images
type Story struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Subtitle    NullString     `json:"subtitle" db:"subtitle"`
	Author      string         `json:"author" db:"author"`
	Content     string         `json:"content" db:"content"`
	Image1      NullString     `json:"image1" db:"image1"`
	Image2      NullString     `json:"image2" db:"image2"`
	Image3      NullString     `json:"image3" db:"image3"`
	Image4      NullString     `json:"image4" db:"image4"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	IsDefault   bool           `json:"isDefault" db:"is_default"`
	IsPublished bool           `json:"isPublished" db:"is_published"`
	Views       int            `json:"views" db:"views"`
	LikeCount   int            `json:"likeCount" db:"like_count"`
	CreatedBy   uuid.NullUUID  `json:"createdBy" db:"created_by"`
	UpdatedBy   uuid.NullUUID  `json:"updatedBy" db:"updated_by"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
	Excerpt     string         `json:"excerpt" db:"-"`
}

// FillExcerpt derives Excerpt from Content
func (s *Story) FillExcerpt() {
	s.Excerpt = Excerpt(s.Content)
}

// Excerpt returns the first ExcerptLength characters of content, suffixed
// with "..." when it was cut
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:ExcerptLength]) + "..."
}

// StoryImages returns the image slots in order
func (s *Story) StoryImages() []*NullString {
	return []*NullString{&s.Image1, &s.Image2, &s.Image3, &s.Image4}
}

// StorySort lists the columns a listing may be sorted by
var StorySort = map[string]string{
	"created_at": "s.created_at",
	"views":      "s.views",
	"title":      "s.title",
	"updated_at": "s.updated_at",
}

// StoryFilter narrows the public listing
type StoryFilter struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
	Author string
	Tag    string
}

// StoryPage is a page of published stories
type StoryPage struct {
	Count       int     `json:"count"`
	Total       int     `json:"total"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Data        []Story `json:"data"`
}

// LikeResult is the state after toggling a like
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// UserStoryStats summarizes a user's own stories
type UserStoryStats struct {
	TotalStories     int `json:"totalStories" db:"total_stories"`
	PublishedStories int `json:"publishedStories" db:"published_stories"`
	DraftStories     int `json:"draftStories" db:"draft_stories"`
	TotalViews       int `json:"totalViews" db:"total_views"`
	TotalLikes       int `json:"totalLikes" db:"total_likes"`
}
