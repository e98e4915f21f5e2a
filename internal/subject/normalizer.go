// Package subject приведение произвольных названий предметов к каноническим.
// Сессии создаются по широкому предмету: заявка "flask" попадает в сессию
// "python", поэтому нормализация стоит до ядра планирования.
package subject

import (
	"context"
	"fmt"
	"strings"
)

// Normalizer стратегия канонизации предмета
type Normalizer interface {
	Normalize(ctx context.Context, raw string) (string, error)
}

// Canonical список широких предметов, по которым создаются сессии
var Canonical = []string{
	"python", "javascript", "java", "react", "go",
	"web", "mobile", "devops", "databases", "math", "english",
}

// aliases узкие темы -> широкий предмет
var aliases = map[string]string{
	"flask":      "python",
	"django":     "python",
	"fastapi":    "python",
	"langchain":  "python",
	"pandas":     "python",
	"js":         "javascript",
	"node":       "javascript",
	"nodejs":     "javascript",
	"typescript": "javascript",
	"vue":        "javascript",
	"angular":    "javascript",
	"nextjs":     "react",
	"next":       "react",
	"redux":      "react",
	"spring":     "java",
	"kotlin":     "java",
	"golang":     "go",
	"html":       "web",
	"css":        "web",
	"frontend":   "web",
	"android":    "mobile",
	"ios":        "mobile",
	"flutter":    "mobile",
	"docker":     "devops",
	"kubernetes": "devops",
	"ci":         "devops",
	"sql":        "databases",
	"postgres":   "databases",
	"postgresql": "databases",
	"mongodb":    "databases",
	"algebra":    "math",
	"calculus":   "math",
	"geometry":   "math",
	"grammar":    "english",
}

// RuleNormalizer детерминированная нормализация по словарю, стратегия
// по умолчанию
type RuleNormalizer struct{}

func NewRuleNormalizer() *RuleNormalizer {
	return &RuleNormalizer{}
}

// Normalize возвращает канонический предмет для raw.
// Неизвестное слово становится собственной канонической формой в нижнем
// регистре - новый предмет, а не ошибка.
func (n *RuleNormalizer) Normalize(_ context.Context, raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty subject")
	}
	// берём первое слово: "python session" -> "python"
	if i := strings.IndexAny(s, " \t"); i > 0 {
		s = s[:i]
	}

	if canonical, ok := aliases[s]; ok {
		return canonical, nil
	}
	for _, c := range Canonical {
		if s == c {
			return c, nil
		}
	}
	return s, nil
}

// IsKnown проверяет что предмет из канонического списка
func IsKnown(subject string) bool {
	for _, c := range Canonical {
		if subject == c {
			return true
		}
	}
	return false
}
