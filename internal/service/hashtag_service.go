package service

import (
	"context"
	"strings"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

const (
	defaultPopularLimit = 20
	maxPopularLimit     = 100
	searchLimit         = 20
	minSearchLength     = 2
)

type HashtagService struct {
	hashtags repository.HashtagRepository
}

func NewHashtagService(hashtags repository.HashtagRepository) *HashtagService {
	return &HashtagService{hashtags: hashtags}
}

type HashtagCatalog struct {
	Hashtags   []domain.Hashtag            `json:"hashtags"`
	Categories map[string][]domain.Hashtag `json:"categories"`
}

type HashtagStats struct {
	Categories []domain.CategoryStats `json:"categories"`
	Overall    *domain.HashtagTotals  `json:"overall"`
}

// List returns every active hashtag, flat and grouped by category.
func (s *HashtagService) List(ctx context.Context) (*HashtagCatalog, error) {
	tags, err := s.hashtags.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &HashtagCatalog{
		Hashtags:   nonNil(tags),
		Categories: make(map[string][]domain.Hashtag),
	}
	for _, t := range tags {
		catalog.Categories[t.Category] = append(catalog.Categories[t.Category], t)
	}
	return catalog, nil
}

func (s *HashtagService) ByCategory(ctx context.Context, category string) ([]domain.Hashtag, error) {
	tags, err := s.hashtags.ListByCategory(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	return nonNil(tags), nil
}

// Popular returns the most used hashtags. limit defaults to 20 and is capped at 100.
func (s *HashtagService) Popular(ctx context.Context, limit int) ([]domain.HashtagUsage, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	usage, err := s.hashtags.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		usage = []domain.HashtagUsage{}
	}
	return usage, nil
}

func (s *HashtagService) Stats(ctx context.Context) (*HashtagStats, error) {
	cats, err := s.hashtags.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.hashtags.Totals(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.CategoryStats{}
	}
	return &HashtagStats{Categories: cats, Overall: totals}, nil
}

func (s *HashtagService) Search(ctx context.Context, q string) ([]domain.Hashtag, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSearchLength {
		return nil, ErrSearchTooShort
	}

	tags, err := s.hashtags.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	return nonNil(tags), nil
}

func nonNil(tags []domain.Hashtag) []domain.Hashtag {
	if tags == nil {
		return []domain.Hashtag{}
	}
	return tags
}
