package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/repository"
)

type repos struct {
	db database.DBTX
}

func (r repos) Users() repository.UserRepository             { return NewUserRepo(r.db) }
func (r repos) Profiles() repository.ProfileRepository       { return NewProfileRepo(r.db) }
func (r repos) Hashtags() repository.HashtagRepository       { return NewHashtagRepo(r.db) }
func (r repos) Connections() repository.ConnectionRepository { return NewConnectionRepo(r.db) }
func (r repos) Discovery() repository.DiscoveryRepository    { return NewDiscoveryRepo(r.db) }

// Store is the pgx-backed repository.Store.
type Store struct {
	repos
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repos: repos{db: pool}, pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(repos{db: tx})
	})
}
