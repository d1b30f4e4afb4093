package metrics

import (
	"mancala/game"
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Duration     time.Duration
	Iterations   int
	RolloutPlies int
	Nodes        int
	IsTreeReused bool
}

type MoveMetric struct {
	Step   int
	Player game.Player
	Move   game.Move
	Visits int     // Root visits behind the chosen move
	Score  float64 // Estimated margin of the chosen move for the mover
	State  game.State
	Policy [game.HolesPerSide]float64 // Share of root visits per hole
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Player
	Winner         string // Player name, "" on a draw
	Scores         [2]int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector counts search work. The search goroutine adds to it while the
// consumer starts and completes measurement windows, so counters are atomic.
type Collector interface {
	Start()
	SetTreeReused(value bool)
	AddIteration()
	AddRolloutPlies(plies int)
	Complete() SearchMetric
}

type collector struct {
	startTime    time.Time
	iterations   atomic.Int64
	rolloutPlies atomic.Int64
	isTreeReused atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.rolloutPlies.Store(0)
}

func (m *collector) SetTreeReused(value bool) {
	m.isTreeReused.Store(value)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddRolloutPlies(plies int) {
	m.rolloutPlies.Add(int64(plies))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Duration:     time.Since(m.startTime),
		Iterations:   int(m.iterations.Load()),
		RolloutPlies: int(m.rolloutPlies.Load()),
		IsTreeReused: m.isTreeReused.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                 {}
func (m *dummyCollector) SetTreeReused(bool)     {}
func (m *dummyCollector) AddIteration()          {}
func (m *dummyCollector) AddRolloutPlies(int)    {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
