package governance

import (
	"context"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateChapterRequest represents a request to create a chapter
type CreateChapterRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=200"`
	Region string `json:"region" binding:"max=100"`
}

// ChapterResponse represents a chapter in API responses
type ChapterResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Region      string     `json:"region"`
	ChapterHead *uuid.UUID `json:"chapter_head,omitempty"`
	Published   bool       `json:"published"`
	BoardSize   int        `json:"board_size"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToChapterResponse converts a domain chapter to a response
func ToChapterResponse(c *chapter.Chapter) ChapterResponse {
	active := 0
	for i := range c.BoardAssignments {
		if c.BoardAssignments[i].IsActive {
			active++
		}
	}
	return ChapterResponse{
		ID:          c.ID,
		Name:        c.Name,
		Region:      c.Region,
		ChapterHead: c.ChapterHead,
		Published:   c.Published,
		BoardSize:   active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ChapterService manages the chapter directory itself: creation, lookup and
// listing. Board mutation lives in BoardService.
type ChapterService struct {
	chapterRepo chapter.ChapterRepository
	logger      *zap.Logger
}

// NewChapterService creates a new ChapterService
func NewChapterService(chapterRepo chapter.ChapterRepository, logger *zap.Logger) *ChapterService {
	return &ChapterService{
		chapterRepo: chapterRepo,
		logger:      logger,
	}
}

// Create creates a new chapter. The name must be unique.
func (s *ChapterService) Create(ctx context.Context, req CreateChapterRequest) (*ChapterResponse, error) {
	if existing, err := s.chapterRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Chapter with name "+req.Name+" already exists")
	}

	c, err := chapter.NewChapter(req.Name, req.Region)
	if err != nil {
		return nil, err
	}
	if err := s.chapterRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToChapterResponse(c)
	return &resp, nil
}

// GetByID returns a chapter by ID
func (s *ChapterService) GetByID(ctx context.Context, id uuid.UUID) (*ChapterResponse, error) {
	c, err := s.chapterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToChapterResponse(c)
	return &resp, nil
}

// List returns chapters matching the filter, optionally scoped to a region
func (s *ChapterService) List(ctx context.Context, region string, filter shared.Filter) (*shared.Paginated[ChapterResponse], error) {
	var (
		chapters []chapter.Chapter
		err      error
	)
	if region != "" {
		chapters, err = s.chapterRepo.FindByRegion(ctx, region, filter)
	} else {
		chapters, err = s.chapterRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	countFilter := filter
	if region != "" {
		if countFilter.Filters == nil {
			countFilter.Filters = make(map[string]interface{})
		}
		countFilter.Filters["region"] = region
	}
	total, err := s.chapterRepo.Count(ctx, countFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ChapterResponse, 0, len(chapters))
	for i := range chapters {
		items = append(items, ToChapterResponse(&chapters[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Delete deletes a chapter and its board assignments
func (s *ChapterService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.chapterRepo.Delete(ctx, id)
}
