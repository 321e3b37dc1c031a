package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"github.com/Dosada05/knockout-system/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClubRepo struct {
	mu    sync.Mutex
	clubs []*models.Club
}

func (r *fakeClubRepo) Create(_ context.Context, club *models.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clubs {
		if strings.EqualFold(c.Name, club.Name) {
			return repositories.ErrClubNameConflict
		}
	}
	club.CreatedAt = time.Now()
	r.clubs = append(r.clubs, club)
	return nil
}

func (r *fakeClubRepo) GetByID(_ context.Context, id string) (*models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clubs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrClubNotFound
}

func (r *fakeClubRepo) GetByName(_ context.Context, name string) (*models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clubs {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, repositories.ErrClubNotFound
}

func (r *fakeClubRepo) List(_ context.Context) ([]*models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Club{}, r.clubs...), nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if strings.EqualFold(e.Name, event.Name) {
			return repositories.ErrEventNameConflict
		}
	}
	event.CreatedAt = time.Now()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (r *fakeEventRepo) GetByName(_ context.Context, name string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (r *fakeEventRepo) List(_ context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Event{}, r.events...), nil
}

func (r *fakeEventRepo) Latest(_ context.Context) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil, repositories.ErrEventNotFound
	}
	return r.events[len(r.events)-1], nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players []*models.Player
}

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player.CreatedAt = time.Now()
	r.players = append(r.players, player)
	return nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Player{}, r.players...), nil
}

func (r *fakePlayerRepo) ListByEvent(_ context.Context, _ repositories.SQLExecutor, eventID string) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		for _, id := range p.EventIDs {
			if id == eventID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ExistsByNameInEvent(ctx context.Context, name, eventID string) (bool, error) {
	players, _ := r.ListByEvent(ctx, nil, eventID)
	for _, p := range players {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches []*models.Match
}

func (r *fakeMatchRepo) CreateMany(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		for _, existing := range r.matches {
			sameRound := existing.EventID == m.EventID && existing.Round == m.Round
			if sameRound && (existing.Player1ID == m.Player1ID || existing.Position == m.Position) {
				return repositories.ErrMatchConflict
			}
		}
	}
	for _, m := range matches {
		m.CreatedAt = time.Now()
		r.matches = append(r.matches, m.Clone())
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) List(_ context.Context, _ repositories.SQLExecutor, f repositories.MatchFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if f.EventID != nil && m.EventID != *f.EventID {
			continue
		}
		if f.Round != nil && m.Round != *f.Round {
			continue
		}
		if f.Status != nil && m.Status != *f.Status {
			continue
		}
		if f.CourtID != nil && (m.CourtID == nil || *m.CourtID != *f.CourtID) {
			continue
		}
		out = append(out, m.Clone())
	}
	// same ordering as the postgres repository: round, position, id
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, id, courtID string, start, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.CourtID, m.StartTime, m.EndTime = &courtID, &start, &end
			m.Status = models.MatchStatusScheduled
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.Status = status
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) CountByEventRound(_ context.Context, _ repositories.SQLExecutor, eventID string, round int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.matches {
		if m.EventID == eventID && m.Round == round {
			n++
		}
	}
	return n, nil
}

func (r *fakeMatchRepo) round(eventID string, round int) []*models.Match {
	f := repositories.MatchFilter{EventID: &eventID, Round: &round}
	out, _ := r.List(context.Background(), nil, f)
	return out
}

type fakeScoreRepo struct {
	mu     sync.Mutex
	scores map[string]*models.Score
}

func (r *fakeScoreRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, score *models.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scores == nil {
		r.scores = make(map[string]*models.Score)
	}
	score.UpdatedAt = time.Now()
	c := *score
	r.scores[score.MatchID] = &c
	return nil
}

func (r *fakeScoreRepo) GetByMatchID(_ context.Context, _ repositories.SQLExecutor, matchID string) (*models.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scores[matchID]; ok {
		return s, nil
	}
	return nil, repositories.ErrScoreNotFound
}

func (r *fakeScoreRepo) ListByMatchIDs(_ context.Context, _ repositories.SQLExecutor, ids []string) (map[string]*models.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*models.Score, len(ids))
	for _, id := range ids {
		if s, ok := r.scores[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeMatchCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*models.MatchCode
}

func (r *fakeMatchCodeRepo) Create(_ context.Context, code *models.MatchCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes == nil {
		r.codes = make(map[string]*models.MatchCode)
	}
	if _, ok := r.codes[code.MatchID]; ok {
		return repositories.ErrMatchCodeExists
	}
	c := *code
	r.codes[code.MatchID] = &c
	return nil
}

func (r *fakeMatchCodeRepo) GetByMatchID(_ context.Context, matchID string) (*models.MatchCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[matchID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrMatchCodeNotFound
}

func (r *fakeMatchCodeRepo) ReplaceExpired(_ context.Context, code *models.MatchCode, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code.MatchID]
	if !ok || !c.Expired(now) {
		return repositories.ErrMatchCodeExists
	}
	cp := *code
	r.codes[code.MatchID] = &cp
	return nil
}

func (r *fakeMatchCodeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.codes {
		if c.Expired(now) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

// fakeLocker runs fn without a transaction and records which events were locked.
type fakeLocker struct {
	mu     sync.Mutex
	locked []string
}

func (l *fakeLocker) WithEventLock(_ context.Context, eventID string, fn func(exec repositories.SQLExecutor) error) error {
	l.mu.Lock()
	l.locked = append(l.locked, eventID)
	l.mu.Unlock()
	return fn(nil)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (n *fakeNotifier) BroadcastToRoom(_ string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		n.messages = append(n.messages, msg)
	}
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Type)
	}
	return out
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	data map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.data == nil {
		u.data = make(map[string][]byte)
	}
	u.keys = append(u.keys, key)
	u.data[key] = raw
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://files.example.com/" + key
}
