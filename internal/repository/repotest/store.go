// Package repotest provides an in-memory repository.Store for service and
// handler tests. WithTx snapshots state and restores it when fn fails.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type state struct {
	users       map[int64]domain.User
	profiles    map[int64]domain.Profile // by user id
	hashtags    map[int64]hashtagRow
	userTags    map[int64][]int64
	connections map[int64]domain.Connection
	nextID      int64
}

type hashtagRow struct {
	domain.Hashtag
	Active bool
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[int64]domain.User, len(s.users)),
		profiles:    make(map[int64]domain.Profile, len(s.profiles)),
		hashtags:    make(map[int64]hashtagRow, len(s.hashtags)),
		userTags:    make(map[int64][]int64, len(s.userTags)),
		connections: make(map[int64]domain.Connection, len(s.connections)),
		nextID:      s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.hashtags {
		c.hashtags[k] = v
	}
	for k, v := range s.userTags {
		c.userTags[k] = append([]int64(nil), v...)
	}
	for k, v := range s.connections {
		c.connections[k] = v
	}
	return c
}

// Store is safe for concurrent use; transactions are serialized.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time

	// Discovery results are canned: set Cards and Total directly.
	DiscoveryFake *Discovery
	// FailOn makes the named operation return the error, e.g. "connections.create".
	FailOn map[string]error
}

func NewStore() *Store {
	return &Store{
		st: &state{
			users:       map[int64]domain.User{},
			profiles:    map[int64]domain.Profile{},
			hashtags:    map[int64]hashtagRow{},
			userTags:    map[int64][]int64{},
			connections: map[int64]domain.Connection{},
		},
		now:           time.Now,
		DiscoveryFake: &Discovery{},
		FailOn:        map[string]error{},
	}
}

func (s *Store) fail(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FailOn[op]
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository       { return profileRepo{s} }
func (s *Store) Hashtags() repository.HashtagRepository       { return hashtagRepo{s} }
func (s *Store) Connections() repository.ConnectionRepository { return connectionRepo{s} }
func (s *Store) Discovery() repository.DiscoveryRepository    { return s.DiscoveryFake }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// --- seeding helpers ---

// AddUser inserts an active user with a visible profile and returns its id.
func (s *Store) AddUser(email string, membership domain.Membership, first, last string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	now := s.now()
	s.st.users[id] = domain.User{ID: id, Email: email, Membership: membership, IsActive: true, CreatedAt: now, UpdatedAt: now}
	display := first + " " + last
	s.st.profiles[id] = domain.Profile{ID: id, UserID: id, FirstName: first, LastName: last, DisplayName: &display, IsVisible: true, CreatedAt: now, UpdatedAt: now}
	return id
}

func (s *Store) AddHashtag(name, display, category string, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.st.hashtags[id] = hashtagRow{Hashtag: domain.Hashtag{ID: id, Name: name, DisplayName: display, Category: category}, Active: active}
	return id
}

func (s *Store) SetVisible(userID int64, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.profiles[userID]
	p.IsVisible = visible
	s.st.profiles[userID] = p
}

func (s *Store) SetActive(userID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.st.users[userID]
	u.IsActive = active
	s.st.users[userID] = u
}

func (s *Store) SetUserTags(userID int64, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.userTags[userID] = append([]int64(nil), ids...)
}

func (s *Store) UserTags(userID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.st.userTags[userID]...)
}

func (s *Store) Profile(userID int64) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.profiles[userID]
}

func (s *Store) User(userID int64) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[userID]
}

// PairCount counts connection rows for the unordered pair {a, b}.
func (s *Store) PairCount(a, b int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.st.connections {
		if (c.RequesterID == a && c.AddresseeID == b) || (c.RequesterID == b && c.AddresseeID == a) {
			n++
		}
	}
	return n
}

func (s *Store) Connection(id int64) (domain.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.connections[id]
	return c, ok
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.s.fail("users.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.id()
	u.IsActive = true
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.s.st.users[id]
	u.IsActive = false
	r.s.st.users[id] = u
	return nil
}

func (r userRepo) Stats(ctx context.Context, id int64) (*domain.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st domain.UserStats
	for _, c := range r.s.st.connections {
		if c.Status == domain.ConnectionAccepted && (c.RequesterID == id || c.AddresseeID == id) {
			st.TotalConnections++
		}
		if c.Status == domain.ConnectionPending && c.AddresseeID == id {
			st.PendingRequests++
		}
	}
	st.TotalHashtags = len(r.s.st.userTags[id])
	return &st, nil
}

// --- profiles ---

type profileRepo struct{ s *Store }

func (r profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	if err := r.s.fail("profiles.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.st.profiles[p.UserID] = *p
	return nil
}

func (r profileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[userID]
	if !ok || !u.IsActive {
		return nil, nil
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.Membership = u.Membership
	p.Email = u.Email
	return &p, nil
}

func (r profileRepo) Update(ctx context.Context, userID int64, upd repository.ProfileUpdate) error {
	if err := r.s.fail("profiles.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.st.profiles[userID]
	set := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	set(&p.DisplayName, upd.DisplayName)
	set(&p.Bio, upd.Bio)
	set(&p.Location, upd.Location)
	set(&p.Website, upd.Website)
	set(&p.LinkedinURL, upd.LinkedinURL)
	set(&p.GithubURL, upd.GithubURL)
	if upd.IsVisible != nil {
		p.IsVisible = *upd.IsVisible
	}
	p.UpdatedAt = r.s.now()
	r.s.st.profiles[userID] = p
	return nil
}

func (r profileRepo) ClearPicture(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.st.profiles[userID]
	p.ProfilePicture = nil
	r.s.st.profiles[userID] = p
	return nil
}

// --- hashtags ---

type hashtagRepo struct{ s *Store }

func (r hashtagRepo) active() []domain.Hashtag {
	var out []domain.Hashtag
	for _, h := range r.s.st.hashtags {
		if h.Active {
			out = append(out, h.Hashtag)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}

func (r hashtagRepo) usage(id int64) int {
	n := 0
	for _, tags := range r.s.st.userTags {
		for _, t := range tags {
			if t == id {
				n++
			}
		}
	}
	return n
}

func (r hashtagRepo) ListActive(ctx context.Context) ([]domain.Hashtag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.active(), nil
}

func (r hashtagRepo) ListByCategory(ctx context.Context, category string) ([]domain.Hashtag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Hashtag
	for _, h := range r.active() {
		if h.Category == category {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r hashtagRepo) Popular(ctx context.Context, limit int) ([]domain.HashtagUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.HashtagUsage
	for _, h := range r.active() {
		out = append(out, domain.HashtagUsage{Hashtag: h, UserCount: r.usage(h.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserCount > out[j].UserCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r hashtagRepo) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byCat := map[string]*domain.CategoryStats{}
	users := map[string]map[int64]struct{}{}
	var order []string
	for _, h := range r.active() {
		cs, ok := byCat[h.Category]
		if !ok {
			cs = &domain.CategoryStats{Category: h.Category}
			byCat[h.Category] = cs
			users[h.Category] = map[int64]struct{}{}
			order = append(order, h.Category)
		}
		cs.TotalHashtags++
		for uid, tags := range r.s.st.userTags {
			for _, t := range tags {
				if t == h.ID {
					users[h.Category][uid] = struct{}{}
				}
			}
		}
	}
	var out []domain.CategoryStats
	for _, c := range order {
		byCat[c].TotalUsers = len(users[c])
		out = append(out, *byCat[c])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalUsers > out[j].TotalUsers })
	return out, nil
}

func (r hashtagRepo) Totals(ctx context.Context) (*domain.HashtagTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := &domain.HashtagTotals{TotalHashtags: len(r.active())}
	for _, tags := range r.s.st.userTags {
		if len(tags) > 0 {
			t.TotalUsersWithHashtags++
		}
		t.TotalAssignments += len(tags)
	}
	return t, nil
}

func (r hashtagRepo) Search(ctx context.Context, q string, limit int) ([]domain.Hashtag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q = strings.ToLower(q)
	var out []domain.Hashtag
	for _, h := range r.active() {
		if strings.Contains(strings.ToLower(h.Name), q) || strings.Contains(strings.ToLower(h.DisplayName), q) {
			out = append(out, h)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r hashtagRepo) CountActive(ctx context.Context, ids []int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if h, ok := r.s.st.hashtags[id]; ok && h.Active {
			n++
		}
	}
	return n, nil
}

func (r hashtagRepo) ListForUsers(ctx context.Context, userIDs []int64) ([]domain.UserHashtag, error) {
	if err := r.s.fail("hashtags.list_for_users"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.UserHashtag
	for _, uid := range userIDs {
		for _, tid := range r.s.st.userTags[uid] {
			if h, ok := r.s.st.hashtags[tid]; ok && h.Active {
				out = append(out, domain.UserHashtag{UserID: uid, Hashtag: h.Hashtag})
			}
		}
	}
	return out, nil
}

func (r hashtagRepo) ReplaceForUser(ctx context.Context, userID int64, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.userTags[userID] = append([]int64(nil), ids...)
	return nil
}

// --- connections ---

type connectionRepo struct{ s *Store }

// LockPair is a no-op: WithTx already serializes transactions.
func (r connectionRepo) LockPair(ctx context.Context, a, b int64) error { return nil }

func (r connectionRepo) GetByPair(ctx context.Context, a, b int64) (*domain.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.connections {
		if (c.RequesterID == a && c.AddresseeID == b) || (c.RequesterID == b && c.AddresseeID == a) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r connectionRepo) Create(ctx context.Context, c *domain.Connection) error {
	if err := r.s.fail("connections.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.connections {
		if (existing.RequesterID == c.RequesterID && existing.AddresseeID == c.AddresseeID) ||
			(existing.RequesterID == c.AddresseeID && existing.AddresseeID == c.RequesterID) {
			return repository.ErrDuplicate
		}
	}
	c.ID = r.s.id()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.st.connections[c.ID] = *c
	return nil
}

func (r connectionRepo) GetForAddressee(ctx context.Context, id, addresseeID int64) (*domain.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.connections[id]
	if !ok || c.AddresseeID != addresseeID {
		return nil, nil
	}
	return &c, nil
}

func (r connectionRepo) UpdateStatus(ctx context.Context, c *domain.Connection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.st.connections[c.ID]
	if !ok {
		return errors.New("repotest: connection not found")
	}
	existing.Status = c.Status
	existing.UpdatedAt = r.s.now()
	c.UpdatedAt = existing.UpdatedAt
	r.s.st.connections[c.ID] = existing
	return nil
}

func (r connectionRepo) ListByUser(ctx context.Context, userID int64, status domain.ConnectionStatus) ([]domain.ConnectionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ConnectionView
	for _, c := range r.s.st.connections {
		if c.Status != status || (c.RequesterID != userID && c.AddresseeID != userID) {
			continue
		}
		other := c.AddresseeID
		if c.AddresseeID == userID {
			other = c.RequesterID
		}
		p := r.s.st.profiles[other]
		out = append(out, domain.ConnectionView{
			ID:          c.ID,
			Status:      c.Status,
			Message:     c.Message,
			CreatedAt:   c.CreatedAt,
			IsRequester: c.RequesterID == userID,
			ConnectedUser: domain.ConnectedUser{
				ID:             other,
				FirstName:      p.FirstName,
				LastName:       p.LastName,
				DisplayName:    p.DisplayName,
				ProfilePicture: p.ProfilePicture,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- discovery ---

// Discovery returns canned results and records the last predicate it saw.
type Discovery struct {
	mu        sync.Mutex
	Cards     []domain.ProfileCard
	Total     int
	Err       error
	LastPred  discovery.Predicate
	LastLimit int
	LastOffs  int
}

func (d *Discovery) ListProfiles(ctx context.Context, pred discovery.Predicate, limit, offset int) ([]domain.ProfileCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.LastPred, d.LastLimit, d.LastOffs = pred, limit, offset
	if d.Err != nil {
		return nil, d.Err
	}
	if offset >= len(d.Cards) {
		return nil, nil
	}
	end := offset + limit
	if end > len(d.Cards) {
		end = len(d.Cards)
	}
	return append([]domain.ProfileCard(nil), d.Cards[offset:end]...), nil
}

func (d *Discovery) CountProfiles(ctx context.Context, pred discovery.Predicate) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	return d.Total, nil
}
