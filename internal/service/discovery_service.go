package service

import (
	"context"
	"fmt"

	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
	"golang.org/x/sync/errgroup"
)

type DiscoveryService struct {
	repos repository.Repositories
}

func NewDiscoveryService(repos repository.Repositories) *DiscoveryService {
	return &DiscoveryService{repos: repos}
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasMore     bool `json:"hasMore"`
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pages,
		HasMore:     page < pages,
	}
}

type AppliedFilters struct {
	Hashtags   []int64          `json:"hashtags"`
	Categories []string         `json:"categories"`
	Search     string           `json:"search"`
	Location   string           `json:"location"`
	SortBy     discovery.SortBy `json:"sortBy"`
}

type DiscoveryResult struct {
	Profiles   []domain.ProfileCard `json:"profiles"`
	Pagination Pagination           `json:"pagination"`
	Filters    AppliedFilters       `json:"filters"`
}

// ProfileView is a single profile as seen by a viewer.
type ProfileView struct {
	Profile      *domain.Profile `json:"profile"`
	IsOwnProfile bool            `json:"isOwnProfile"`
}

// Discover lists visible profiles matching f. The page and the total count are
// fetched concurrently.
func (s *DiscoveryService) Discover(ctx context.Context, f discovery.Filter) (*DiscoveryResult, error) {
	f = f.Normalize()
	pred := discovery.Build(f)

	var (
		cards []domain.ProfileCard
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.repos.Discovery().ListProfiles(gctx, pred, f.Limit, f.Offset())
		if err != nil {
			return fmt.Errorf("listing profiles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.repos.Discovery().CountProfiles(gctx, pred)
		if err != nil {
			return fmt.Errorf("counting profiles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attachHashtags(ctx, cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.ProfileCard{}
	}

	return &DiscoveryResult{
		Profiles:   cards,
		Pagination: newPagination(f.Page, f.Limit, total),
		Filters: AppliedFilters{
			Hashtags:   f.HashtagIDs,
			Categories: f.Categories,
			Search:     f.Search,
			Location:   f.Location,
			SortBy:     f.SortBy,
		},
	}, nil
}

func (s *DiscoveryService) attachHashtags(ctx context.Context, cards []domain.ProfileCard) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]int64, len(cards))
	for i, c := range cards {
		ids[i] = c.UserID
	}
	rows, err := s.repos.Hashtags().ListForUsers(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading hashtags: %w", err)
	}

	grouped := groupHashtags(rows)
	for i := range cards {
		cards[i].Hashtags = grouped[cards[i].UserID]
		if cards[i].Hashtags == nil {
			cards[i].Hashtags = []domain.Hashtag{}
		}
	}
	return nil
}

// GetProfile returns userID's profile. Invisible profiles are only shown to
// their owner, and the email is only included for the owner.
func (s *DiscoveryService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*ProfileView, error) {
	p, err := loadProfile(ctx, s.repos, userID)
	if err != nil {
		return nil, err
	}

	own := viewerID != nil && *viewerID == userID
	if !p.IsVisible && !own {
		return nil, ErrProfilePrivate
	}
	if !own {
		p.Email = ""
	}
	return &ProfileView{Profile: p, IsOwnProfile: own}, nil
}
