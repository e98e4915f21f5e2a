package schedule

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tutormatch/internal/model"
)

// KeyLock сериализует последовательность "прочитать участников - посчитать
// окно - записать сессию" по ключу ячейки (subject, date). Разные ячейки
// обрабатываются полностью параллельно. Ожидание ограничено, при таймауте
// возвращается ErrBusy и вызывающая сторона повторяет с backoff.
type KeyLock struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
	wait time.Duration
}

func NewKeyLock(wait time.Duration) *KeyLock {
	return &KeyLock{
		sems: make(map[string]*semaphore.Weighted),
		wait: wait,
	}
}

// Acquire захватывает ячейку, возвращает функцию освобождения
func (l *KeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	sem := l.semFor(key)

	acquireCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	if err := sem.Acquire(acquireCtx, 1); err != nil {
		return nil, model.ErrBusy
	}

	return func() { sem.Release(1) }, nil
}

func (l *KeyLock) semFor(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}
