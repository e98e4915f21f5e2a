package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutormatch/internal/config"
	"tutormatch/internal/model"
	"tutormatch/internal/subject"
)

// memStore реализация Store в памяти для тестов реконсилятора,
// с инъекцией сбоев записи
type memStore struct {
	mu           sync.Mutex
	sessions     map[uuid.UUID]*model.Session
	availability []*model.AvailabilityRequest
	enrollments  map[uuid.UUID]map[int64]bool
	windows      []*model.TeacherWindow
	nextAvailID  int64
	clock        int64

	// сколько следующих вызовов UpdateMemberCount должно упасть
	failMemberCountUpdates int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:    make(map[uuid.UUID]*model.Session),
		enrollments: make(map[uuid.UUID]map[int64]bool),
	}
}

func (m *memStore) GetActiveSessions(_ context.Context, date time.Time) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Session
	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.Date.Equal(date) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) CreateSession(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.Subject == session.Subject && s.Date.Equal(session.Date) {
			return fmt.Errorf("duplicate active session for %s", session.Subject)
		}
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memStore) UpdateSessionWindow(_ context.Context, id uuid.UUID, startMin, endMin int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session not found")
	}
	s.StartMin = startMin
	s.EndMin = endMin
	return nil
}

func (m *memStore) UpdateMemberCount(_ context.Context, id uuid.UUID, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failMemberCountUpdates > 0 {
		m.failMemberCountUpdates--
		return fmt.Errorf("injected write failure")
	}

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session not found")
	}
	s.MemberCount = count
	return nil
}

func (m *memStore) SetSessionStatus(_ context.Context, id uuid.UUID, status model.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session not found")
	}
	s.Status = status
	return nil
}

func (m *memStore) GetSessionsByUser(_ context.Context, userID int64) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Session
	for id, s := range m.sessions {
		if s.Status == model.SessionStatusActive && m.enrollments[id][userID] {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) CompletePastSessions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.Date.Before(before) {
			s.Status = model.SessionStatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *memStore) AddAvailability(_ context.Context, av *model.AvailabilityRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAvailID++
	m.clock++
	av.ID = m.nextAvailID
	av.CreatedAt = time.Unix(m.clock, 0)
	copied := *av
	m.availability = append(m.availability, &copied)
	return nil
}

func (m *memStore) BindAvailability(_ context.Context, id int64, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, av := range m.availability {
		if av.ID == id {
			sid := sessionID
			av.SessionID = &sid
			return nil
		}
	}
	return fmt.Errorf("availability request not found")
}

func (m *memStore) GetSessionAvailability(_ context.Context, sessionID uuid.UUID) ([]*model.AvailabilityRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// последняя заявка каждого участника, как DISTINCT ON в pg-реализации
	latest := make(map[int64]*model.AvailabilityRequest)
	for _, av := range m.availability {
		if av.SessionID == nil || *av.SessionID != sessionID {
			continue
		}
		cur, ok := latest[av.UserID]
		if !ok || av.CreatedAt.After(cur.CreatedAt) {
			latest[av.UserID] = av
		}
	}

	var out []*model.AvailabilityRequest
	for _, av := range latest {
		copied := *av
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memStore) AddEnrollment(_ context.Context, sessionID uuid.UUID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enrollments[sessionID] == nil {
		m.enrollments[sessionID] = make(map[int64]bool)
	}
	m.enrollments[sessionID][userID] = true
	return nil
}

func (m *memStore) IsEnrolled(_ context.Context, sessionID uuid.UUID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrollments[sessionID][userID], nil
}

func (m *memStore) CountEnrollments(_ context.Context, sessionID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments[sessionID]), nil
}

func (m *memStore) RemoveEnrollments(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.enrollments, sessionID)
	return nil
}

func (m *memStore) GetTeacherWindows(_ context.Context, date time.Time) ([]*model.TeacherWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.TeacherWindow
	for _, w := range m.windows {
		if w.Date.Equal(date) {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) activeSession(subjectName string, date time.Time) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.Subject == subjectName && s.Date.Equal(date) {
			copied := *s
			return &copied
		}
	}
	return nil
}

func (m *memStore) activeCount(date time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.Date.Equal(date) {
			n++
		}
	}
	return n
}

func testScheduling() config.Scheduling {
	return config.Scheduling{
		MinOverlapMin:    30,
		ClusterRadiusMin: 120,
		GranularityMin:   30,
		MinSessionMin:    60,
		DefaultStartMin:  9 * 60,
		DefaultEndMin:    10 * 60,
		LockWait:         time.Second,
	}
}

func newTestService(store Store, cfg config.Scheduling) *SessionService {
	svc := NewSessionService(store, subject.NewRuleNormalizer(), cfg, zap.NewNop())
	// фиксируем "сегодня", чтобы даты в тестах не устаревали
	svc.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

var testDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func TestSubmitRequestCreatesSession(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())

	out, err := svc.SubmitRequest(context.Background(), 1, "flask", testDate, 840, 900)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeCreated, out.Kind)
	assert.Equal(t, "python", out.Subject) // flask канонизируется
	assert.Equal(t, 840, out.StartMin)
	assert.Equal(t, 900, out.EndMin)
	assert.Equal(t, 1, out.MemberCount)
	assert.NotEmpty(t, out.MeetLink)

	session := store.activeSession("python", testDate)
	require.NotNil(t, session)
	assert.Equal(t, 1, session.MemberCount)
}

func TestSubmitRequestIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()

	first, err := svc.SubmitRequest(ctx, 1, "python", testDate, 840, 900)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, first.Kind)

	second, err := svc.SubmitRequest(ctx, 1, "python", testDate, 840, 900)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAlreadyEnrolled, second.Kind)
	assert.Equal(t, first.SessionID, second.SessionID)

	assert.Equal(t, 1, store.activeCount(testDate))
}

func TestSubmitRequestJoinVsBlock(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()

	_, err := svc.SubmitRequest(ctx, 1, "python", testDate, 840, 900) // 14:00-15:00
	require.NoError(t, err)

	// тот же предмет в 20:00-21:00 - присоединение несмотря на разрыв
	out, err := svc.SubmitRequest(ctx, 2, "python", testDate, 1200, 1260)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeJoined, out.Kind)
	assert.Equal(t, 2, out.MemberCount)

	// другой предмет с пересечением по времени - блокировка
	blocked, err := svc.SubmitRequest(ctx, 3, "java", testDate, 870, 930) // 14:30-15:30
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeBlocked, blocked.Kind)
	require.NotNil(t, blocked.Conflict)
	assert.Equal(t, "python", blocked.Conflict.Subject)

	assert.Equal(t, 1, store.activeCount(testDate))
}

func TestSubmitRequestEndToEndReact(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// A: 11:00-13:00 создаёт сессию со своим окном
	a, err := svc.SubmitRequest(ctx, 1, "react", date, 660, 780)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, a.Kind)
	assert.Equal(t, 660, a.StartMin)
	assert.Equal(t, 780, a.EndMin)

	// B: 12:00-14:00, пересечение 12:00-13:00 >= 30 минут
	b, err := svc.SubmitRequest(ctx, 2, "react", date, 720, 840)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeJoined, b.Kind)
	assert.Equal(t, 720, b.StartMin)
	assert.Equal(t, 780, b.EndMin)
	assert.Equal(t, 2, b.MemberCount)

	// C: 13:00-15:00, общее пересечение пустое - кластеризация даёт 12:00-14:00
	c, err := svc.SubmitRequest(ctx, 3, "react", date, 780, 900)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeJoined, c.Kind)
	assert.Equal(t, 720, c.StartMin)
	assert.Equal(t, 840, c.EndMin)
	assert.Equal(t, 3, c.MemberCount)

	session := store.activeSession("react", date)
	require.NotNil(t, session)
	assert.Equal(t, 720, session.StartMin)
	assert.Equal(t, 840, session.EndMin)
	assert.Equal(t, 3, session.MemberCount)
}

func TestSubmitRequestConcurrentSingleSession(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())

	const users = 20
	var wg sync.WaitGroup
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.SubmitRequest(context.Background(), userID, "go", testDate, 600+int(userID), 720+int(userID))
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	// ровно одна активная сессия, счётчик сходится с фактическими записями
	assert.Equal(t, 1, store.activeCount(testDate))
	session := store.activeSession("go", testDate)
	require.NotNil(t, session)
	assert.Equal(t, users, session.MemberCount)
}

func TestSubmitRequestMemberCountSelfHeals(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()

	_, err := svc.SubmitRequest(ctx, 1, "python", testDate, 600, 720)
	require.NoError(t, err)

	// запись участника прошла, а обновление счётчика упало
	store.failMemberCountUpdates = 1
	_, err = svc.SubmitRequest(ctx, 2, "python", testDate, 600, 720)
	require.Error(t, err)
	var storageErr *model.StorageError
	assert.True(t, errors.As(err, &storageErr))

	session := store.activeSession("python", testDate)
	require.NotNil(t, session)
	assert.Equal(t, 1, session.MemberCount) // счётчик отстал

	// следующая успешная заявка пересчитывает счётчик из записей
	out, err := svc.SubmitRequest(ctx, 3, "python", testDate, 600, 720)
	require.NoError(t, err)
	assert.Equal(t, 3, out.MemberCount)

	session = store.activeSession("python", testDate)
	assert.Equal(t, 3, session.MemberCount)
}

func TestSubmitRequestValidation(t *testing.T) {
	svc := newTestService(newMemStore(), testScheduling())
	ctx := context.Background()

	_, err := svc.SubmitRequest(ctx, 1, "python", testDate, 900, 840)
	assert.True(t, errors.Is(err, model.ErrInvalidTimeFormat))

	_, err = svc.SubmitRequest(ctx, 1, "python", testDate, -10, 60)
	assert.True(t, errors.Is(err, model.ErrInvalidTimeFormat))

	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.SubmitRequest(ctx, 1, "python", past, 600, 720)
	assert.True(t, errors.Is(err, model.ErrInvalidDate))
}

func TestSubmitRequestTeacherWindowEnforcement(t *testing.T) {
	store := newMemStore()
	cfg := testScheduling()
	cfg.EnforceWindows = true
	svc := newTestService(store, cfg)
	ctx := context.Background()

	// окон учителей нет - заявка отклоняется
	_, err := svc.SubmitRequest(ctx, 1, "python", testDate, 600, 720)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTeacherUnavailable))

	// окно 9:00-15:00 покрывает заявку
	store.windows = append(store.windows, &model.TeacherWindow{
		TeacherID: 99, Date: testDate, StartMin: 540, EndMin: 900,
	})
	out, err := svc.SubmitRequest(ctx, 1, "python", testDate, 600, 720)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, out.Kind)

	// заявка вылезает за окно - отказ с реальными окнами
	_, err = svc.SubmitRequest(ctx, 2, "python", testDate, 840, 960)
	require.Error(t, err)
	var unavailable *model.TeacherUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Len(t, unavailable.Windows, 1)
}

func TestSubmitRequestMaxJoinGap(t *testing.T) {
	store := newMemStore()
	cfg := testScheduling()
	cfg.MaxJoinGapMin = 120
	svc := newTestService(store, cfg)
	ctx := context.Background()

	_, err := svc.SubmitRequest(ctx, 1, "python", testDate, 840, 900)
	require.NoError(t, err)

	// разрыв 6 часов при лимите в 2 - отказ
	out, err := svc.SubmitRequest(ctx, 2, "python", testDate, 1200, 1260)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeRejected, out.Kind)
	assert.NotEmpty(t, out.Reason)

	// в пределах лимита - присоединение
	out, err = svc.SubmitRequest(ctx, 3, "python", testDate, 900, 960)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeJoined, out.Kind)
}

func TestCancelSessionFreesCell(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()

	created, err := svc.SubmitRequest(ctx, 1, "python", testDate, 840, 900)
	require.NoError(t, err)

	require.NoError(t, svc.CancelSession(ctx, created.SessionID))
	assert.Equal(t, 0, store.activeCount(testDate))

	// ячейка свободна, новый цикл EMPTY -> ACTIVE
	out, err := svc.SubmitRequest(ctx, 2, "python", testDate, 600, 720)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, out.Kind)
}

func TestCompletePastFreesCells(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, testScheduling())
	ctx := context.Background()

	past := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	store.sessions[uuid.New()] = &model.Session{
		ID: uuid.New(), Subject: "python", Date: past,
		StartMin: 600, EndMin: 720, Status: model.SessionStatusActive,
	}

	n, err := svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, store.activeCount(past))
}
