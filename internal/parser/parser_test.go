package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutormatch/internal/model"
)

// среда 2025-06-04
func fixedNow() time.Time {
	return time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)
}

func TestParseFullRequest(t *testing.T) {
	p := New(fixedNow)

	req, err := p.Parse("I am available on monday at 2pm to 4pm for flask session")
	require.NoError(t, err)

	assert.Equal(t, "flask", req.RawSubject)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), req.Date)
	assert.Equal(t, 14*60, req.StartMin)
	assert.Equal(t, 16*60, req.EndMin)
}

func TestParseSubjectSessionForm(t *testing.T) {
	p := New(fixedNow)

	req, err := p.Parse("python session tomorrow 11:00 to 13:30")
	require.NoError(t, err)

	assert.Equal(t, "python", req.RawSubject)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), req.Date)
	assert.Equal(t, 11*60, req.StartMin)
	assert.Equal(t, 13*60+30, req.EndMin)
}

func TestParseExplicitDate(t *testing.T) {
	p := New(fixedNow)

	req, err := p.Parse("react session 2025-07-01 11:00-13:00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), req.Date)
}

func TestParseWeekdayResolvesToNextOccurrence(t *testing.T) {
	p := New(fixedNow)

	// сегодня среда - "wednesday" означает среду через неделю
	req, err := p.Parse("java lesson wednesday 10-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), req.Date)

	// а пятница - ближайшая
	req, err = p.Parse("java lesson friday 10-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), req.Date)
}

func TestParseMeridiemInheritance(t *testing.T) {
	p := New(fixedNow)

	req, err := p.Parse("math class today 2-4pm")
	require.NoError(t, err)
	assert.Equal(t, 14*60, req.StartMin)
	assert.Equal(t, 16*60, req.EndMin)
}

func TestParseNoonCrossing(t *testing.T) {
	p := New(fixedNow)

	// "11-1pm" читается как 11:00-13:00
	req, err := p.Parse("python session today 11-1pm")
	require.NoError(t, err)
	assert.Equal(t, 11*60, req.StartMin)
	assert.Equal(t, 13*60, req.EndMin)
}

func TestParseErrors(t *testing.T) {
	p := New(fixedNow)

	_, err := p.Parse("monday 10-12")
	assert.Error(t, err) // нет предмета

	_, err = p.Parse("python session 10-12")
	assert.True(t, errors.Is(err, model.ErrInvalidDate)) // нет даты

	_, err = p.Parse("python session monday")
	assert.True(t, errors.Is(err, model.ErrInvalidTimeFormat)) // нет времени

	_, err = p.Parse("python session 2025-05-01 10-12")
	assert.True(t, errors.Is(err, model.ErrInvalidDate)) // дата в прошлом

	_, err = p.Parse("python session today 14:00-14:00")
	assert.True(t, errors.Is(err, model.ErrInvalidTimeFormat)) // пустое окно
}
