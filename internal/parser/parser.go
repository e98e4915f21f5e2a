// Package parser разбор свободного текста заявки в структурированный вид.
// Ядро планирования свободный текст не видит: сюда приходит
// "available monday 2pm to 4pm for flask", дальше идёт только
// (предмет, дата, начало, конец).
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tutormatch/internal/model"
)

// Request структурированная заявка, предмет ещё не канонизирован
type Request struct {
	RawSubject string
	Date       time.Time
	StartMin   int
	EndMin     int
}

var (
	timeRangeRe = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|to)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	subjectRe   = regexp.MustCompile(`(?i)\bfor\s+(?:an?\s+)?([a-zа-я][\w+#.-]*)`)
	sessionRe   = regexp.MustCompile(`(?i)\b([a-zа-я][\w+#.-]*)\s+(?:session|lesson|class)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Parser разбирает текст заявки; now инжектится для детерминизма в тестах
type Parser struct {
	now func() time.Time
}

func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse извлекает предмет, дату и окно времени из свободного текста
func (p *Parser) Parse(text string) (*Request, error) {
	rawSubject, err := extractSubject(text)
	if err != nil {
		return nil, err
	}

	date, err := p.extractDate(text)
	if err != nil {
		return nil, err
	}

	// явная дата убирается из текста, иначе "2025-07-01" ловится
	// регэкспом диапазона времени
	startMin, endMin, err := extractTimeRange(isoDateRe.ReplaceAllString(text, ""))
	if err != nil {
		return nil, err
	}

	return &Request{
		RawSubject: rawSubject,
		Date:       date,
		StartMin:   startMin,
		EndMin:     endMin,
	}, nil
}

// ParseDate разбирает отдельно взятую дату, без остального текста заявки
func (p *Parser) ParseDate(text string) (time.Time, error) {
	return p.extractDate(text)
}

// ParseTimeRange разбирает отдельно взятый диапазон времени
func (p *Parser) ParseTimeRange(text string) (int, int, error) {
	return extractTimeRange(text)
}

func extractSubject(text string) (string, error) {
	if m := subjectRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), nil
	}
	if m := sessionRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), nil
	}
	return "", fmt.Errorf("subject not found in request")
}

// extractDate понимает today/tomorrow, названия дней недели и YYYY-MM-DD.
// День недели резолвится в следующее вхождение: "monday" в понедельник
// означает понедельник через неделю.
func (p *Parser) extractDate(text string) (time.Time, error) {
	lower := strings.ToLower(text)
	today := truncateToDay(p.now())

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if date.Month() != time.Month(month) || date.Day() != day {
			return time.Time{}, fmt.Errorf("%w: %s", model.ErrInvalidDate, m[0])
		}
		if date.Before(today) {
			return time.Time{}, fmt.Errorf("%w: %s is in the past", model.ErrInvalidDate, m[0])
		}
		return date, nil
	}

	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1), nil
	}
	if strings.Contains(lower, "today") {
		return today, nil
	}

	for name, wd := range weekdays {
		if !containsWord(lower, name) {
			continue
		}
		daysAhead := int(wd) - int(today.Weekday())
		if daysAhead <= 0 {
			daysAhead += 7
		}
		return today.AddDate(0, 0, daysAhead), nil
	}

	return time.Time{}, fmt.Errorf("%w: no date in request", model.ErrInvalidDate)
}

func extractTimeRange(text string) (int, int, error) {
	m := timeRangeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: no time range in request", model.ErrInvalidTimeFormat)
	}

	startMeridiem := strings.ToLower(m[3])
	endMeridiem := strings.ToLower(m[6])
	// "2-4pm": am/pm одной границы наследуется другой
	if startMeridiem == "" {
		startMeridiem = endMeridiem
	}
	if endMeridiem == "" {
		endMeridiem = startMeridiem
	}

	startMin, err := toMinutes(m[1], m[2], startMeridiem)
	if err != nil {
		return 0, 0, err
	}
	endMin, err := toMinutes(m[4], m[5], endMeridiem)
	if err != nil {
		return 0, 0, err
	}

	// "11-1pm" означает 11:00-13:00: начало до полудня, конец после
	if endMin <= startMin && startMeridiem == endMeridiem && startMeridiem == "pm" && startMin >= 12*60 {
		startMin -= 12 * 60
	}

	if endMin <= startMin {
		return 0, 0, fmt.Errorf("%w: window must end after it starts", model.ErrInvalidTimeFormat)
	}
	return startMin, endMin, nil
}

func toMinutes(hourStr, minuteStr, meridiem string) (int, error) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, hourStr)
	}

	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute > 59 {
			return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, minuteStr)
		}
	}

	switch meridiem {
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: hour %d with pm", model.ErrInvalidTimeFormat, hour)
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: hour %d with am", model.ErrInvalidTimeFormat, hour)
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return 0, fmt.Errorf("%w: hour %d", model.ErrInvalidTimeFormat, hour)
		}
	}

	return hour*60 + minute, nil
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	if idx < 0 {
		return false
	}
	if idx > 0 && isLetter(s[idx-1]) {
		return false
	}
	end := idx + len(word)
	return end >= len(s) || !isLetter(s[end])
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
