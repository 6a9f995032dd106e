package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

const storyColumns = `
	s.id, s.title, s.subtitle, s.author, s.content,
	s.image1, s.image2, s.image3, s.image4, s.tags,
	s.is_default, s.is_published, s.views,
	(SELECT COUNT(*) FROM story_likes l WHERE l.story_id = s.id) AS like_count,
	s.created_by, s.updated_by, s.created_at, s.updated_at
`

// StoryRepository persists stories and their likes
type StoryRepository struct {
	db DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db DB) *StoryRepository {
	return &StoryRepository{db: db}
}

// likeEscaper escapes ILIKE wildcards using Postgres' default backslash escape
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in a column
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func withExcerpts(stories []models.Story) []models.Story {
	for i := range stories {
		stories[i].FillExcerpt()
	}
	return stories
}

// List returns one page of published stories matching f and the total match count
func (r *StoryRepository) List(f models.StoryFilter) ([]models.Story, int, error) {
	conditions := []string{"s.is_published = TRUE"}
	args := []interface{}{}

	if f.Search != "" {
		args = append(args, containsPattern(f.Search))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(s.title ILIKE $%d OR s.content ILIKE $%d OR s.subtitle ILIKE $%d)", n, n, n))
	}
	if f.Author != "" {
		args = append(args, containsPattern(f.Author))
		conditions = append(conditions, fmt.Sprintf("s.author ILIKE $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(s.tags)", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM stories s`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	sortColumn, ok := models.StorySort[f.Sort]
	if !ok {
		sortColumn = models.StorySort["created_at"]
	}
	order := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM stories s%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		storyColumns, where, sortColumn, order, len(args)+1, len(args)+2,
	)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	stories := []models.Story{}
	if err := r.db.Select(&stories, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}

	return withExcerpts(stories), total, nil
}

// GetByID retrieves a story, or nil when it does not exist
func (r *StoryRepository) GetByID(id uuid.UUID) (*models.Story, error) {
	var s models.Story
	err := r.db.Get(&s, `SELECT `+storyColumns+` FROM stories s WHERE s.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	s.FillExcerpt()
	return &s, nil
}

// IncrementViews bumps the view counter and returns the updated story, or nil when it does not exist
func (r *StoryRepository) IncrementViews(id uuid.UUID) (*models.Story, error) {
	var s models.Story
	err := r.db.Get(&s, `UPDATE stories s SET views = views + 1 WHERE s.id = $1 RETURNING `+storyColumns, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to increment story views: %w", err)
	}
	s.FillExcerpt()
	return &s, nil
}

// Create inserts a story
func (r *StoryRepository) Create(s *models.Story) error {
	query := `
		INSERT INTO stories (
			id, title, subtitle, author, content,
			image1, image2, image3, image4, tags,
			is_default, is_published, views, created_by, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13, $13, $14, $14)
	`

	_, err := r.db.Exec(
		query,
		s.ID,
		s.Title,
		s.Subtitle,
		s.Author,
		s.Content,
		s.Image1,
		s.Image2,
		s.Image3,
		s.Image4,
		pq.Array([]string(s.Tags)),
		s.IsDefault,
		s.IsPublished,
		s.CreatedBy,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// Update writes the mutable fields of s
func (r *StoryRepository) Update(s *models.Story) error {
	query := `
		UPDATE stories
		SET title = $2,
		    subtitle = $3,
		    author = $4,
		    content = $5,
		    image1 = $6,
		    image2 = $7,
		    image3 = $8,
		    image4 = $9,
		    tags = $10,
		    is_published = $11,
		    updated_by = $12,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(
		query,
		s.ID,
		s.Title,
		s.Subtitle,
		s.Author,
		s.Content,
		s.Image1,
		s.Image2,
		s.Image3,
		s.Image4,
		pq.Array([]string(s.Tags)),
		s.IsPublished,
		s.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// Delete removes a story and its likes
func (r *StoryRepository) Delete(id uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM stories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// ToggleLike adds the user's like when absent and removes it when present
func (r *StoryRepository) ToggleLike(storyID, userID uuid.UUID) (*models.LikeResult, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM story_likes WHERE story_id = $1 AND user_id = $2`, storyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		_, err := tx.Exec(
			`INSERT INTO story_likes (story_id, user_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`,
			storyID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add like: %w", err)
		}
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM story_likes WHERE story_id = $1`, storyID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit like: %w", err)
	}

	return &models.LikeResult{Liked: liked, LikeCount: count}, nil
}

func (r *StoryRepository) selectStories(query string, args ...interface{}) ([]models.Story, error) {
	stories := []models.Story{}
	if err := r.db.Select(&stories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return withExcerpts(stories), nil
}

// Popular returns published stories by views, then likes
func (r *StoryRepository) Popular(limit int) ([]models.Story, error) {
	return r.selectStories(
		`SELECT `+storyColumns+` FROM stories s WHERE s.is_published = TRUE
		 ORDER BY s.views DESC, like_count DESC LIMIT $1`,
		limit,
	)
}

// Recent returns the newest published stories
func (r *StoryRepository) Recent(limit int) ([]models.Story, error) {
	return r.selectStories(
		`SELECT `+storyColumns+` FROM stories s WHERE s.is_published = TRUE
		 ORDER BY s.created_at DESC LIMIT $1`,
		limit,
	)
}

// ByTag returns published stories carrying tag, newest first
func (r *StoryRepository) ByTag(tag string) ([]models.Story, error) {
	return r.selectStories(
		`SELECT `+storyColumns+` FROM stories s WHERE s.is_published = TRUE AND $1 = ANY(s.tags)
		 ORDER BY s.created_at DESC`,
		tag,
	)
}

// Search matches published stories on title, subtitle or content
func (r *StoryRepository) Search(q string, limit int) ([]models.Story, error) {
	return r.selectStories(
		`SELECT `+storyColumns+` FROM stories s WHERE s.is_published = TRUE
		 AND (s.title ILIKE $1 OR s.content ILIKE $1 OR s.subtitle ILIKE $1)
		 ORDER BY s.created_at DESC LIMIT $2`,
		containsPattern(q), limit,
	)
}

// ByCreator returns every story a user created, newest first
func (r *StoryRepository) ByCreator(userID uuid.UUID) ([]models.Story, error) {
	return r.selectStories(
		`SELECT `+storyColumns+` FROM stories s WHERE s.created_by = $1 ORDER BY s.created_at DESC`,
		userID,
	)
}

// CreatorStats summarizes a user's stories
func (r *StoryRepository) CreatorStats(userID uuid.UUID) (*models.UserStoryStats, error) {
	var stats models.UserStoryStats
	err := r.db.Get(&stats, `
		SELECT COUNT(*) AS total_stories,
		       COUNT(*) FILTER (WHERE s.is_published) AS published_stories,
		       COUNT(*) FILTER (WHERE NOT s.is_published) AS draft_stories,
		       COALESCE(SUM(s.views), 0) AS total_views,
		       (SELECT COUNT(*) FROM story_likes l JOIN stories x ON x.id = l.story_id WHERE x.created_by = $1) AS total_likes
		FROM stories s
		WHERE s.created_by = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get story stats: %w", err)
	}
	return &stats, nil
}
