package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func seedLetter(t *testing.T, db *gorm.DB, text string) *domain.Letter {
	t.Helper()
	l, err := repo.CreateLetter(context.Background(), db, text, nil)
	require.NoError(t, err)
	return l
}

// failOn makes every create/query/delete touching table fail with errBoom.
func failOn(t *testing.T, db *gorm.DB, op, table string) {
	t.Helper()
	fn := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errBoom)
		}
	}
	var err error
	name := "test:fail_" + op + "_" + table
	switch op {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fn)
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register(name, fn)
	case "delete":
		err = db.Callback().Delete().Before("gorm:delete").Register(name, fn)
	default:
		t.Fatalf("unknown op %q", op)
	}
	require.NoError(t, err)
}

var errBoom = errors.New("boom")

// memCache is an in-memory EngagementCache that records calls.
type memCache struct {
	mu          sync.Mutex
	items       map[string]domain.Engagement
	invalidated []string
	getErr      error
	setErr      error
	delErr      error
	gets, sets  int

	// beforeSet, when set, runs once ahead of the next Set, outside the lock.
	beforeSet func()
}

func newMemCache() *memCache { return &memCache{items: map[string]domain.Engagement{}} }

func (m *memCache) Get(_ context.Context, id string) (*domain.Engagement, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	e, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (m *memCache) Set(_ context.Context, e *domain.Engagement) error {
	if hook := m.takeBeforeSet(); hook != nil {
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.items[e.LetterID] = *e
	return nil
}

func (m *memCache) Invalidate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, id)
	delete(m.items, id)
	return m.delErr
}

func (m *memCache) takeBeforeSet() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	hook := m.beforeSet
	m.beforeSet = nil
	return hook
}

func (m *memCache) invalidations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidated...)
}
