package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tutormatch/internal/model"
)

func activeSession(subject string, startMin, endMin int) *model.Session {
	return &model.Session{
		ID:       uuid.New(),
		Subject:  subject,
		Date:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartMin: startMin,
		EndMin:   endMin,
		Status:   model.SessionStatusActive,
	}
}

func TestClassifyFree(t *testing.T) {
	d := Classify("python", 840, 900, nil)
	assert.Equal(t, DecisionFree, d.Kind)
	assert.Nil(t, d.Session)
}

func TestClassifySameSubjectJoinsRegardlessOfTime(t *testing.T) {
	python := activeSession("python", 840, 900) // 14:00-15:00

	// заявка на 20:00-21:00, далеко от окна сессии - всё равно Join
	d := Classify("python", 1200, 1260, []*model.Session{python})
	assert.Equal(t, DecisionJoin, d.Kind)
	assert.Equal(t, python.ID, d.Session.ID)
}

func TestClassifyDifferentSubjectOverlapBlocks(t *testing.T) {
	python := activeSession("python", 840, 900)

	d := Classify("java", 870, 930, []*model.Session{python}) // 14:30-15:30
	assert.Equal(t, DecisionBlocked, d.Kind)
	assert.Equal(t, python.ID, d.Session.ID)
}

func TestClassifyDifferentSubjectNoOverlapFree(t *testing.T) {
	python := activeSession("python", 840, 900)

	d := Classify("java", 960, 1020, []*model.Session{python})
	assert.Equal(t, DecisionFree, d.Kind)
}

func TestClassifyHalfOpenBoundariesDoNotOverlap(t *testing.T) {
	python := activeSession("python", 840, 900)

	// встык - не конфликт
	assert.Equal(t, DecisionFree, Classify("java", 900, 960, []*model.Session{python}).Kind)
	assert.Equal(t, DecisionFree, Classify("java", 780, 840, []*model.Session{python}).Kind)
}

func TestClassifyJoinWinsOverBlock(t *testing.T) {
	java := activeSession("java", 840, 900)
	python := activeSession("python", 840, 900)

	// есть и пересечение с java, и сессия python - присоединение важнее
	d := Classify("python", 850, 910, []*model.Session{java, python})
	assert.Equal(t, DecisionJoin, d.Kind)
	assert.Equal(t, python.ID, d.Session.ID)
}
