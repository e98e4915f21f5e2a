// Package schedule ядро планирования: вычисление оптимального окна сессии,
// классификация заявок против активных сессий и сериализация по ячейке
// (subject, date). Пакет чистый, хранилище сюда не протекает.
package schedule

import "sort"

// Interval окно доступности одного участника в минутах от полуночи
type Interval struct {
	UserID   int64
	StartMin int
	EndMin   int
}

// Window итоговое окно сессии и участники, которых оно устраивает
type Window struct {
	StartMin int
	EndMin   int
	Count    int
	UserIDs  []int64
}

// OptimizerConfig пороги алгоритма, значения в минутах
type OptimizerConfig struct {
	MinOverlapMin   int // минимальное полное пересечение, иначе кластеризация
	ClusterRadiusMin int // радиус кластера от скользящего среднего начала
	GranularityMin  int // округление окна кластера
	MinSessionMin   int // минимальная длительность сессии
	DefaultStartMin int // окно по умолчанию для пустого входа
	DefaultEndMin   int
}

// DefaultOptimizerConfig пороги из продуктовой политики
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MinOverlapMin:    30,
		ClusterRadiusMin: 120,
		GranularityMin:   30,
		MinSessionMin:    60,
		DefaultStartMin:  9 * 60,
		DefaultEndMin:    10 * 60,
	}
}

type Optimizer struct {
	cfg OptimizerConfig
}

func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// OptimalWindow выбирает окно, устраивающее максимум участников.
// Сначала полное пересечение всех интервалов; если его нет или оно короче
// MinOverlapMin, побеждает крупнейший кластер близких начал, окно кластера -
// усреднённые границы, округлённые до GranularityMin. Вход сортируется,
// поэтому ответ канонический для любого мультимножества интервалов и не
// меняется между пересчётами.
func (o *Optimizer) OptimalWindow(intervals []Interval) Window {
	if len(intervals) == 0 {
		return Window{
			StartMin: o.cfg.DefaultStartMin,
			EndMin:   o.cfg.DefaultEndMin,
		}
	}

	if len(intervals) == 1 {
		iv := intervals[0]
		return Window{
			StartMin: iv.StartMin,
			EndMin:   iv.EndMin,
			Count:    1,
			UserIDs:  []int64{iv.UserID},
		}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.StartMin != b.StartMin {
			return a.StartMin < b.StartMin
		}
		if a.EndMin != b.EndMin {
			return a.EndMin < b.EndMin
		}
		return a.UserID < b.UserID
	})

	if w, ok := o.intersection(sorted); ok {
		return w
	}
	return o.majorityCluster(sorted)
}

// intersection фаза 1: общее пересечение всех интервалов
func (o *Optimizer) intersection(sorted []Interval) (Window, bool) {
	maxStart := sorted[0].StartMin
	minEnd := sorted[0].EndMin
	for _, iv := range sorted[1:] {
		if iv.StartMin > maxStart {
			maxStart = iv.StartMin
		}
		if iv.EndMin < minEnd {
			minEnd = iv.EndMin
		}
	}

	if minEnd-maxStart < o.cfg.MinOverlapMin {
		return Window{}, false
	}

	w := Window{
		StartMin: maxStart,
		EndMin:   minEnd,
		Count:    len(sorted),
		UserIDs:  userIDs(sorted),
	}
	o.enforceMinDuration(&w)
	return w, true
}

type cluster struct {
	members  []Interval
	sumStart int
	sumEnd   int
}

func (c *cluster) avgStart() int {
	return c.sumStart / len(c.members)
}

func (c *cluster) add(iv Interval) {
	c.members = append(c.members, iv)
	c.sumStart += iv.StartMin
	c.sumEnd += iv.EndMin
}

// majorityCluster фаза 2: группировка по близости начала к скользящему
// среднему кластера, побеждает крупнейший кластер, при равенстве - с более
// ранним средним началом
func (o *Optimizer) majorityCluster(sorted []Interval) Window {
	var clusters []*cluster
	for _, iv := range sorted {
		placed := false
		for _, c := range clusters {
			if abs(iv.StartMin-c.avgStart()) <= o.cfg.ClusterRadiusMin {
				c.add(iv)
				placed = true
				break
			}
		}
		if !placed {
			c := &cluster{}
			c.add(iv)
			clusters = append(clusters, c)
		}
	}

	best := clusters[0]
	for _, c := range clusters[1:] {
		if len(c.members) > len(best.members) {
			best = c
			continue
		}
		if len(c.members) == len(best.members) && c.avgStart() < best.avgStart() {
			best = c
		}
	}

	n := len(best.members)
	w := Window{
		StartMin: o.roundToGranularity(best.sumStart / n),
		EndMin:   o.roundToGranularity(best.sumEnd / n),
		Count:    n,
		UserIDs:  userIDs(best.members),
	}
	o.enforceMinDuration(&w)
	return w
}

func (o *Optimizer) enforceMinDuration(w *Window) {
	if w.EndMin-w.StartMin < o.cfg.MinSessionMin {
		w.EndMin = w.StartMin + o.cfg.MinSessionMin
	}
}

func (o *Optimizer) roundToGranularity(m int) int {
	g := o.cfg.GranularityMin
	if g <= 0 {
		return m
	}
	return (m + g/2) / g * g
}

func userIDs(intervals []Interval) []int64 {
	ids := make([]int64, 0, len(intervals))
	for _, iv := range intervals {
		ids = append(ids, iv.UserID)
	}
	return ids
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
