package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/selective-league/models"
)

// MemoryStore keeps all league data in process memory. It backs the service tests
// and the server when no DATABASE_URL is configured. Values are copied on the way in
// and out, so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	players     map[string]*models.Player
	selectives  map[string]*models.Selective
	matches     map[string]*models.Match
	settings    *models.Settings
	defaultMode models.RankingMode
	seq         int64
	now         func() time.Time
}

func NewMemoryStore(defaultMode models.RankingMode) *MemoryStore {
	return &MemoryStore{
		players:     make(map[string]*models.Player),
		selectives:  make(map[string]*models.Selective),
		matches:     make(map[string]*models.Match),
		defaultMode: defaultMode,
		now:         time.Now,
	}
}

func (s *MemoryStore) Players() PlayerRepository { return memoryPlayers{s} }
func (s *MemoryStore) Selectives() SelectiveRepository { return memorySelectives{s} }
func (s *MemoryStore) Matches() MatchRepository { return memoryMatches{s} }
func (s *MemoryStore) Settings() SettingsRepository { return memorySettings{s} }

// stamp returns a strictly increasing timestamp so insertion order survives sorting.
func (s *MemoryStore) stamp() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	if p.Badges != nil {
		c.Badges = append([]string(nil), p.Badges...)
	}
	if p.PointsHistory != nil {
		c.PointsHistory = append([]models.PointsHistoryEntry(nil), p.PointsHistory...)
	}
	return &c
}

func cloneSelective(sel *models.Selective) *models.Selective {
	c := *sel
	c.PlayerIDs = append([]string(nil), sel.PlayerIDs...)
	c.Matches = nil
	if sel.Config.PointsPerWin != nil {
		c.Config.PointsPerWin = models.IntPtr(*sel.Config.PointsPerWin)
	}
	if sel.Config.PointsPerLoss != nil {
		c.Config.PointsPerLoss = models.IntPtr(*sel.Config.PointsPerLoss)
	}
	return &c
}

type memoryPlayers struct{ s *MemoryStore }

func (r memoryPlayers) List(ctx context.Context) ([]*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	players := make([]*models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		players = append(players, clonePlayer(p))
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

func (r memoryPlayers) GetByID(ctx context.Context, id string) (*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return clonePlayer(p), nil
}

func (r memoryPlayers) Create(ctx context.Context, player *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&player.ID)
	if player.EloRating == 0 {
		player.EloRating = models.DefaultEloRating
	}
	player.Badges = badgesOrEmpty(player.Badges)
	player.CreatedAt = r.s.stamp()
	player.UpdatedAt = player.CreatedAt
	r.s.players[player.ID] = clonePlayer(player)
	return nil
}

func (r memoryPlayers) UpdateProfile(ctx context.Context, player *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.players[player.ID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Name = player.Name
	p.Nickname = player.Nickname
	p.Photo = player.Photo
	p.Badges = append([]string(nil), badgesOrEmpty(player.Badges)...)
	p.UpdatedAt = r.s.stamp()
	player.UpdatedAt = p.UpdatedAt
	return nil
}

func (r memoryPlayers) UpdateStats(ctx context.Context, id string, stats models.PlayerStats) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.SetStats(stats)
	p.UpdatedAt = r.s.stamp()
	return nil
}

func (r memoryPlayers) UpdateStatsPair(ctx context.Context, a, b models.PlayerStatsUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pa, okA := r.s.players[a.PlayerID]
	pb, okB := r.s.players[b.PlayerID]
	if !okA || !okB {
		return ErrPlayerNotFound
	}
	pa.SetStats(a.Stats)
	pb.SetStats(b.Stats)
	pa.UpdatedAt = r.s.stamp()
	pb.UpdatedAt = pa.UpdatedAt
	return nil
}

func (r memoryPlayers) AppendPointsHistory(ctx context.Context, eventName string, date time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.players {
		p.PointsHistory = append(p.PointsHistory, models.PointsHistoryEntry{
			EventName: eventName,
			Points:    p.Points,
			EloRating: p.EloRating,
			Date:      date.UTC(),
		})
	}
	return nil
}

func (r memoryPlayers) ResetStats(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.players {
		p.Points = 0
		p.EloRating = models.DefaultEloRating
		p.Wins = 0
		p.Losses = 0
		p.Streak = 0
	}
	return nil
}

func (r memoryPlayers) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.players[id]; !ok {
		return ErrPlayerNotFound
	}
	delete(r.s.players, id)
	return nil
}

type memorySelectives struct{ s *MemoryStore }

func (r memorySelectives) Create(ctx context.Context, selective *models.Selective) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&selective.ID)
	if selective.Status == "" {
		selective.Status = models.SelectiveActive
	}
	selective.CreatedAt = r.s.stamp()
	selective.UpdatedAt = selective.CreatedAt
	r.s.selectives[selective.ID] = cloneSelective(selective)

	for _, m := range selective.Matches {
		m.SelectiveID = selective.ID
		r.s.insertMatchLocked(m)
	}
	return nil
}

func (r memorySelectives) GetByID(ctx context.Context, id string) (*models.Selective, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sel, ok := r.s.selectives[id]
	if !ok {
		return nil, ErrSelectiveNotFound
	}
	return cloneSelective(sel), nil
}

func (r memorySelectives) List(ctx context.Context) ([]*models.Selective, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	selectives := make([]*models.Selective, 0, len(r.s.selectives))
	for _, sel := range r.s.selectives {
		selectives = append(selectives, cloneSelective(sel))
	}
	sort.Slice(selectives, func(i, j int) bool {
		return selectives[i].CreatedAt.After(selectives[j].CreatedAt)
	})
	return selectives, nil
}

func (r memorySelectives) UpdateStatus(ctx context.Context, id string, status models.SelectiveStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sel, ok := r.s.selectives[id]
	if !ok {
		return ErrSelectiveNotFound
	}
	sel.Status = status
	sel.UpdatedAt = r.s.stamp()
	return nil
}

func (r memorySelectives) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.selectives[id]; !ok {
		return ErrSelectiveNotFound
	}
	for matchID, m := range r.s.matches {
		if m.SelectiveID == id {
			delete(r.s.matches, matchID)
		}
	}
	delete(r.s.selectives, id)
	return nil
}

type memoryMatches struct{ s *MemoryStore }

func (s *MemoryStore) insertMatchLocked(m *models.Match) {
	ensureID(&m.ID)
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	m.CreatedAt = s.stamp()
	m.UpdatedAt = m.CreatedAt
	s.matches[m.ID] = m.Clone()
}

func (s *MemoryStore) sortedMatchesLocked(keep func(*models.Match) bool) []*models.Match {
	matches := make([]*models.Match, 0)
	for _, m := range s.matches {
		if keep(m) {
			matches = append(matches, m.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.BracketPosition != nil && b.BracketPosition != nil && *a.BracketPosition != *b.BracketPosition {
			return *a.BracketPosition < *b.BracketPosition
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return matches
}

func (r memoryMatches) List(ctx context.Context) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := r.s.sortedMatchesLocked(func(*models.Match) bool { return true })
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r memoryMatches) ListBySelective(ctx context.Context, selectiveID string) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sortedMatchesLocked(func(m *models.Match) bool { return m.SelectiveID == selectiveID }), nil
}

func (r memoryMatches) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (r memoryMatches) Create(ctx context.Context, match *models.Match) error {
	return r.CreateBatch(ctx, []*models.Match{match})
}

func (r memoryMatches) CreateBatch(ctx context.Context, matches []*models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range matches {
		if _, ok := r.s.selectives[m.SelectiveID]; !ok {
			return ErrMatchSelectiveInvalid
		}
	}
	for _, m := range matches {
		r.s.insertMatchLocked(m)
	}
	return nil
}

func (r memoryMatches) Update(ctx context.Context, match *models.Match) error {
	return r.UpdateBatch(ctx, []*models.Match{match})
}

func (r memoryMatches) UpdateBatch(ctx context.Context, matches []*models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range matches {
		if _, ok := r.s.matches[m.ID]; !ok {
			return ErrMatchNotFound
		}
	}
	for _, m := range matches {
		stored := r.s.matches[m.ID]
		m.SelectiveID = stored.SelectiveID
		m.Round = stored.Round
		m.CreatedAt = stored.CreatedAt
		m.UpdatedAt = r.s.stamp()
		r.s.matches[m.ID] = m.Clone()
	}
	return nil
}

type memorySettings struct{ s *MemoryStore }

func (r memorySettings) Get(ctx context.Context) (*models.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return &models.Settings{RankingMode: r.s.defaultMode}, nil
	}
	c := *r.s.settings
	return &c, nil
}

func (r memorySettings) Update(ctx context.Context, settings *models.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *settings
	r.s.settings = &c
	return nil
}
