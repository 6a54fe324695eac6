package repository

import (
	"context"
	"errors"

	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/domain"
)

// ErrDuplicate is returned by Create when a unique key already exists.
var ErrDuplicate = errors.New("duplicate key")

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Deactivate(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*domain.UserStats, error)
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	LinkedinURL *string
	GithubURL   *string
	IsVisible   *bool
}

func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.DisplayName == nil &&
		u.Bio == nil && u.Location == nil && u.Website == nil &&
		u.LinkedinURL == nil && u.GithubURL == nil && u.IsVisible == nil
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	// GetByUserID returns the profile joined with its user's membership and
	// email, or nil when the user is missing or inactive.
	GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
	Update(ctx context.Context, userID int64, upd ProfileUpdate) error
	ClearPicture(ctx context.Context, userID int64) error
}

type HashtagRepository interface {
	ListActive(ctx context.Context) ([]domain.Hashtag, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Hashtag, error)
	Popular(ctx context.Context, limit int) ([]domain.HashtagUsage, error)
	CategoryStats(ctx context.Context) ([]domain.CategoryStats, error)
	Totals(ctx context.Context) (*domain.HashtagTotals, error)
	Search(ctx context.Context, q string, limit int) ([]domain.Hashtag, error)
	// CountActive returns how many of ids name active hashtags.
	CountActive(ctx context.Context, ids []int64) (int, error)
	ListForUsers(ctx context.Context, userIDs []int64) ([]domain.UserHashtag, error)
	ReplaceForUser(ctx context.Context, userID int64, ids []int64) error
}

type ConnectionRepository interface {
	// LockPair serializes writers on the unordered pair {a, b} until the
	// surrounding transaction ends.
	LockPair(ctx context.Context, a, b int64) error
	GetByPair(ctx context.Context, a, b int64) (*domain.Connection, error)
	Create(ctx context.Context, conn *domain.Connection) error
	// GetForAddressee locks and returns connection id if addresseeID is its addressee.
	GetForAddressee(ctx context.Context, id, addresseeID int64) (*domain.Connection, error)
	UpdateStatus(ctx context.Context, conn *domain.Connection) error
	ListByUser(ctx context.Context, userID int64, status domain.ConnectionStatus) ([]domain.ConnectionView, error)
}

type DiscoveryRepository interface {
	ListProfiles(ctx context.Context, pred discovery.Predicate, limit, offset int) ([]domain.ProfileCard, error)
	CountProfiles(ctx context.Context, pred discovery.Predicate) (int, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Hashtags() HashtagRepository
	Connections() ConnectionRepository
	Discovery() DiscoveryRepository
}

// Store hands out repositories on the pool and runs multi-statement work
// atomically.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
