package services

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lojazap/vendas-backend/internal/models"
)

const (
	// maxHistoryTurns caps how many turns are kept per phone (write-time trim)
	maxHistoryTurns = 20
	// historyWindow is how many recent turns are sent to the completion API
	historyWindow = 12
	// maxTrackedPhones bounds memory growth in long-running deployments
	maxTrackedPhones = 1000
	// pendingOpTTL expires abandoned admin wizards
	pendingOpTTL = 15 * time.Minute
)

// Chat roles as the completion API expects them
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one entry of a phone's conversation history
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Pending operation types
const (
	PendingOpAdicionarProduto = "adicionar_produto"
)

// PendingOp tracks an in-progress multi-step admin operation
type PendingOp struct {
	Tipo     string
	Etapa    int
	Draft    models.Produto
	CriadoEm time.Time
}

// SessionMemory holds per-phone conversation history and pending admin
// operations. Both caches are bounded LRUs so idle phones eventually fall
// out instead of growing without limit. All read-modify-write cycles run
// under one mutex, so interleaved messages from the same phone cannot
// drop a turn.
type SessionMemory struct {
	mu         sync.Mutex
	history    *lru.Cache[string, []Turn]
	pending    *lru.Cache[string, *PendingOp]
	pendingTTL time.Duration
}

// NewSessionMemory creates the in-process session state
func NewSessionMemory() *SessionMemory {
	history, _ := lru.New[string, []Turn](maxTrackedPhones)
	pending, _ := lru.New[string, *PendingOp](maxTrackedPhones)

	return &SessionMemory{
		history:    history,
		pending:    pending,
		pendingTTL: pendingOpTTL,
	}
}

// AppendTurn records one turn for the phone, trimming to the most recent
// maxHistoryTurns entries.
func (sm *SessionMemory) AppendTurn(phone, role, content string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	turns, _ := sm.history.Get(phone)
	turns = append(turns, Turn{Role: role, Content: content})
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	sm.history.Add(phone, turns)
}

// Window returns the most recent turns to send to the completion API,
// oldest first, at most historyWindow entries.
func (sm *SessionMemory) Window(phone string) []Turn {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	turns, _ := sm.history.Get(phone)
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// History returns the full stored history for a phone
func (sm *SessionMemory) History(phone string) []Turn {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	turns, _ := sm.history.Get(phone)
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Pending returns the phone's in-progress admin operation, expiring
// operations older than the TTL.
func (sm *SessionMemory) Pending(phone string) (*PendingOp, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	op, ok := sm.pending.Get(phone)
	if !ok {
		return nil, false
	}
	if time.Since(op.CriadoEm) > sm.pendingTTL {
		sm.pending.Remove(phone)
		return nil, false
	}
	return op, true
}

// SetPending starts or advances a multi-step admin operation
func (sm *SessionMemory) SetPending(phone string, op *PendingOp) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if op.CriadoEm.IsZero() {
		op.CriadoEm = time.Now()
	}
	sm.pending.Add(phone, op)
}

// ClearPending aborts the phone's pending operation
func (sm *SessionMemory) ClearPending(phone string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.pending.Remove(phone)
}
