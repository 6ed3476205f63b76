package run

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"grocery-pricer/internal/pkg/common"
)

// DefaultMaxDuration 超過此時間的執行視為卡住
const DefaultMaxDuration = 10 * time.Minute

// State 執行鎖狀態
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// LockStatus 執行鎖狀態快照
type LockStatus struct {
	State       State      `json:"state"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	Elapsed     string     `json:"elapsed,omitempty"`
	LastOutcome State      `json:"last_outcome,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
}

// Ticket 一次取得執行鎖的憑證，Finish 時用來確認仍是目前持有者
type Ticket struct {
	Generation uint64
	StartedAt  time.Time
}

// Lock 單一執行鎖（僅限本程序）
type Lock struct {
	maxDuration time.Duration
	now         func() time.Time

	mu          sync.Mutex
	state       State
	generation  uint64
	startedAt   time.Time
	lastOutcome State
	lastRunAt   time.Time
}

// NewLock 創建執行鎖
func NewLock(maxDuration time.Duration, now func() time.Time) *Lock {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	if now == nil {
		now = time.Now
	}
	return &Lock{
		maxDuration: maxDuration,
		now:         now,
		state:       StateIdle,
	}
}

// TryStart 嘗試進入 Running，已在執行中時回傳 ErrRunInProgress
//
// 逾時接管或 ForceReset 後，舊憑證即失效。
func (l *Lock) TryStart() (Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.state == StateRunning {
		if now.Sub(l.startedAt) <= l.maxDuration {
			return Ticket{}, common.ErrRunInProgress
		}
		common.LogWarn("執行鎖逾時，自動重置",
			zap.Time("started_at", l.startedAt),
			zap.Duration("max_duration", l.maxDuration),
		)
	}

	l.generation++
	l.state = StateRunning
	l.startedAt = now
	return Ticket{Generation: l.generation, StartedAt: now}, nil
}

// Finish 記錄結果並回到 Idle，憑證已失效時不做任何事並回傳 false
func (l *Lock) Finish(t Ticket, success bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRunning || t.Generation != l.generation {
		common.LogWarn("過期的執行結束，不釋放執行鎖",
			zap.Uint64("generation", t.Generation),
			zap.Uint64("current_generation", l.generation),
			zap.Time("started_at", t.StartedAt),
		)
		return false
	}

	if success {
		l.lastOutcome = StateSucceeded
	} else {
		l.lastOutcome = StateFailed
	}
	l.lastRunAt = l.now()
	l.state = StateIdle
	l.startedAt = time.Time{}
	return true
}

// ForceReset 手動釋放執行鎖
func (l *Lock) ForceReset() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	wasRunning := l.state == StateRunning
	if wasRunning {
		common.LogWarn("執行鎖已被手動重置", zap.Time("started_at", l.startedAt))
	}
	l.state = StateIdle
	l.startedAt = time.Time{}
	return wasRunning
}

// Status 回傳目前狀態
func (l *Lock) Status() LockStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := LockStatus{State: l.state, LastOutcome: l.lastOutcome}
	if l.state == StateRunning {
		started := l.startedAt
		s.StartedAt = &started
		s.Elapsed = l.now().Sub(started).Round(time.Second).String()
	}
	if !l.lastRunAt.IsZero() {
		last := l.lastRunAt
		s.LastRunAt = &last
	}
	return s
}

// IsRunning 是否執行中
func (l *Lock) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateRunning
}
