// Package timeutil конвертация времени суток в минуты от полуночи.
// Вся арифметика оптимизатора идёт в целых минутах, строки только на границе.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"

	"tutormatch/internal/model"
)

const MinutesPerDay = 24 * 60

// ToMinutes разбирает "14:05" или "14:05:00" в минуты от полуночи
func ToMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, s)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, s)
	}

	return hour*60 + minute, nil
}

// ToTimeString обратная конвертация в "15:04".
// Значения вне [0, 1440) заворачиваются по модулю суток, это осознанная
// политика для окон, вычисленных арифметикой, а не повод для паники.
func ToTimeString(minutes int) string {
	m := minutes % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatWindow форматирует окно "15:00-16:30" для сообщений и логов
func FormatWindow(startMin, endMin int) string {
	return ToTimeString(startMin) + "-" + ToTimeString(endMin)
}
