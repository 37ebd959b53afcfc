package remote

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"sergis-author/internal/model"

	"github.com/google/uuid"
)

// memoryGames - GameRepository в памяти для сквозных тестов.
type memoryGames struct {
	mu    sync.Mutex
	games map[uuid.UUID]map[string]*model.GameRecord
}

func newMemoryGames() *memoryGames {
	return &memoryGames{games: make(map[uuid.UUID]map[string]*model.GameRecord)}
}

func (m *memoryGames) byAuthor(authorID uuid.UUID) map[string]*model.GameRecord {
	games, ok := m.games[authorID]
	if !ok {
		games = make(map[string]*model.GameRecord)
		m.games[authorID] = games
	}
	return games
}

func (m *memoryGames) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]model.GameSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.GameSummary, 0)
	for name, g := range m.byAuthor(authorID) {
		out = append(out, model.GameSummary{Name: name, UpdatedAt: g.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryGames) Get(_ context.Context, authorID uuid.UUID, name string) (*model.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.byAuthor(authorID)[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (m *memoryGames) Exists(_ context.Context, authorID uuid.UUID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byAuthor(authorID)[name]
	return ok, nil
}

func (m *memoryGames) Upsert(_ context.Context, authorID uuid.UUID, name string, document json.RawMessage) (*model.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	games := m.byAuthor(authorID)
	now := time.Now().UTC()
	g, ok := games[name]
	if !ok {
		g = &model.GameRecord{ID: uuid.New(), AuthorID: authorID, Name: name, CreatedAt: now}
		games[name] = g
	}
	g.Document = append(json.RawMessage(nil), document...)
	g.UpdatedAt = now
	copied := *g
	return &copied, nil
}

func (m *memoryGames) Rename(_ context.Context, authorID uuid.UUID, oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	games := m.byAuthor(authorID)
	g, ok := games[oldName]
	if !ok {
		return model.ErrNotFound
	}
	if _, taken := games[newName]; taken {
		return model.ErrGameExists
	}
	delete(games, oldName)
	g.Name = newName
	games[newName] = g
	return nil
}

func (m *memoryGames) Delete(_ context.Context, authorID uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	games := m.byAuthor(authorID)
	if _, ok := games[name]; !ok {
		return model.ErrNotFound
	}
	delete(games, name)
	return nil
}

func (m *memoryGames) Publish(_ context.Context, authorID uuid.UUID, name string, access model.Access, at time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.byAuthor(authorID)[name]
	if !ok {
		return uuid.Nil, model.ErrNotFound
	}
	g.Access = &access
	g.PublishedAt = &at
	return g.ID, nil
}

func (m *memoryGames) GetPublished(_ context.Context, id uuid.UUID) (*model.PublishedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, games := range m.games {
		for _, g := range games {
			if g.ID == id && g.Access != nil && g.PublishedAt != nil {
				return &model.PublishedGame{
					ID: g.ID, AuthorID: g.AuthorID, Name: g.Name,
					Access: *g.Access, PublishedAt: *g.PublishedAt, Document: g.Document,
				}, nil
			}
		}
	}
	return nil, model.ErrNotFound
}

type memoryPreviews struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (p *memoryPreviews) Put(_ context.Context, id string, document []byte, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[id] = document
	return nil
}

func (p *memoryPreviews) Get(_ context.Context, id string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, ok := p.docs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return doc, nil
}
