package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type ProfileService struct {
	store repository.Store
}

func NewProfileService(store repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// UpdateProfileInput is a partial update. Nil fields are left alone; a non-nil
// Hashtags slice (even empty) replaces the whole set.
type UpdateProfileInput struct {
	FirstName   *string `json:"firstName" validate:"omitnil,min=2,max=50"`
	LastName    *string `json:"lastName" validate:"omitnil,min=2,max=50"`
	DisplayName *string `json:"displayName" validate:"omitnil,eq=|min=2,max=50"`
	Bio         *string `json:"bio" validate:"omitnil,max=500"`
	Location    *string `json:"location" validate:"omitnil,max=100"`
	Website     *string `json:"website" validate:"omitnil,eq=|url"`
	LinkedinURL *string `json:"linkedinUrl" validate:"omitnil,eq=|url"`
	GithubURL   *string `json:"githubUrl" validate:"omitnil,eq=|url"`
	IsVisible   *bool   `json:"isVisible"`
	Hashtags    []int64 `json:"hashtags" validate:"omitempty,max=50,dive,gt=0"`
}

func (s *ProfileService) Me(ctx context.Context, userID int64) (*domain.Profile, error) {
	return loadProfile(ctx, s.store, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.Profile, error) {
	var tagIDs []int64
	if input.Hashtags != nil {
		tagIDs = dedupeIDs(input.Hashtags)
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		current, err := repos.Profiles().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrProfileNotFound
		}

		if tagIDs != nil {
			if len(tagIDs) > current.Membership.MaxHashtags() {
				return fmt.Errorf("%w: %s members may select at most %d",
					ErrHashtagLimit, current.Membership, current.Membership.MaxHashtags())
			}
			if len(tagIDs) > 0 {
				n, err := repos.Hashtags().CountActive(ctx, tagIDs)
				if err != nil {
					return err
				}
				if n != len(tagIDs) {
					return ErrInvalidHashtags
				}
			}
		}

		upd := buildUpdate(current, input)
		if !upd.Empty() {
			if err := repos.Profiles().Update(ctx, userID, upd); err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
		}

		if tagIDs != nil {
			if err := repos.Hashtags().ReplaceForUser(ctx, userID, tagIDs); err != nil {
				return fmt.Errorf("replacing hashtags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loadProfile(ctx, s.store, userID)
}

func (s *ProfileService) RemovePicture(ctx context.Context, userID int64) error {
	return s.store.Profiles().ClearPicture(ctx, userID)
}

func buildUpdate(current *domain.Profile, in UpdateProfileInput) repository.ProfileUpdate {
	upd := repository.ProfileUpdate{
		FirstName:   trimmed(in.FirstName),
		LastName:    trimmed(in.LastName),
		DisplayName: trimmed(in.DisplayName),
		Bio:         trimmed(in.Bio),
		Location:    trimmed(in.Location),
		Website:     trimmed(in.Website),
		LinkedinURL: trimmed(in.LinkedinURL),
		GithubURL:   trimmed(in.GithubURL),
		IsVisible:   in.IsVisible,
	}

	// An empty display name falls back to the full name.
	if upd.DisplayName != nil && *upd.DisplayName == "" {
		first, last := current.FirstName, current.LastName
		if upd.FirstName != nil {
			first = *upd.FirstName
		}
		if upd.LastName != nil {
			last = *upd.LastName
		}
		full := strings.TrimSpace(first + " " + last)
		upd.DisplayName = &full
	}
	return upd
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadProfile returns the active user's profile with its hashtags attached.
func loadProfile(ctx context.Context, repos repository.Repositories, userID int64) (*domain.Profile, error) {
	p, err := repos.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	tags, err := repos.Hashtags().ListForUsers(ctx, []int64{userID})
	if err != nil {
		return nil, fmt.Errorf("loading hashtags: %w", err)
	}
	p.Hashtags = groupHashtags(tags)[userID]
	if p.Hashtags == nil {
		p.Hashtags = []domain.Hashtag{}
	}
	return p, nil
}

// groupHashtags folds flat (user, hashtag) rows into per-user sets, dropping
// duplicates and ordering each set by display name.
func groupHashtags(rows []domain.UserHashtag) map[int64][]domain.Hashtag {
	grouped := make(map[int64][]domain.Hashtag)
	seen := make(map[[2]int64]struct{}, len(rows))
	for _, row := range rows {
		key := [2]int64{row.UserID, row.Hashtag.ID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		grouped[row.UserID] = append(grouped[row.UserID], row.Hashtag)
	}
	for _, tags := range grouped {
		sort.Slice(tags, func(i, j int) bool {
			if tags[i].DisplayName != tags[j].DisplayName {
				return tags[i].DisplayName < tags[j].DisplayName
			}
			return tags[i].ID < tags[j].ID
		})
	}
	return grouped
}
