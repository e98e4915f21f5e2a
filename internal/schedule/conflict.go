package schedule

import "tutormatch/internal/model"

type DecisionKind int

const (
	// DecisionFree сессий по предмету нет, конфликтов нет - создаём новую
	DecisionFree DecisionKind = iota
	// DecisionJoin есть активная сессия того же предмета - присоединяемся
	DecisionJoin
	// DecisionBlocked пересечение по времени с сессией другого предмета
	DecisionBlocked
)

// Decision итог классификации заявки против активных сессий даты
type Decision struct {
	Kind    DecisionKind
	Session *model.Session // цель для Join, конфликт для Blocked
}

// Classify относит заявку к одной из трёх категорий. Сессия того же
// предмета никогда не блокирует - это цель слияния, время при
// присоединении может сдвинуться. Отсюда же следует инвариант
// "одна активная сессия на (subject, date)".
func Classify(subject string, startMin, endMin int, active []*model.Session) Decision {
	for _, s := range active {
		if s.Subject == subject {
			return Decision{Kind: DecisionJoin, Session: s}
		}
	}

	for _, s := range active {
		if s.Overlaps(startMin, endMin) {
			return Decision{Kind: DecisionBlocked, Session: s}
		}
	}

	return Decision{Kind: DecisionFree}
}
