package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/events"
)

type mockAssignmentRepo struct {
	items     map[string]*models.Assignment
	listCalls int
	listErr   error
	deleted   []string
}

func (m *mockAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Assignment
	for _, a := range m.items {
		if courseID == "" || a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	if m.items == nil {
		m.items = make(map[string]*models.Assignment)
	}
	if a.ID == "" {
		a.ID = "generated"
	}
	a.CreatedAt = time.Now()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, a *models.Assignment) error {
	if _, ok := m.items[a.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSubmissionRepo struct {
	items     []models.Submission
	listCalls int
	scopes    []models.SubmissionScope
	graded    []models.Submission
}

func (m *mockSubmissionRepo) List(ctx context.Context, scope models.SubmissionScope) ([]models.Submission, error) {
	m.listCalls++
	m.scopes = append(m.scopes, scope)
	var out []models.Submission
	for _, s := range m.items {
		if scope.CourseID != "" && s.CourseID != scope.CourseID {
			continue
		}
		if scope.AssignmentID != "" && s.AssignmentID != scope.AssignmentID {
			continue
		}
		if scope.StudentID != "" && s.StudentID != scope.StudentID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	for _, s := range m.items {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) UpdateGrade(ctx context.Context, s *models.Submission) error {
	m.graded = append(m.graded, *s)
	return nil
}

// memoryCache is an in-process CacheRepository that round-trips through JSON like Redis does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(ev events.Event) {
	c.events = append(c.events, ev)
}

type fakeSigner struct{}

func (fakeSigner) URL(submissionID, relPath string, ttl time.Duration) (string, time.Time, error) {
	return "https://files.test/" + submissionID + "/" + relPath + "?ttl=" + ttl.String(), time.Now().Add(ttl), nil
}

func ptrFloat(v float64) *float64 { return &v }

func ptrString(v string) *string { return &v }
