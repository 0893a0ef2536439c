package conninit

import (
	"net/http"
	"sync"

	"github.com/gqlws/server-go/sessions"
)

// InitState is the closed per-connection initialization variant. Every
// read site must handle both members explicitly.
type InitState interface {
	isInitState()
}

// NotInitialized is the state of a freshly opened connection.
type NotInitialized struct{}

func (NotInitialized) isInitState() {}

// Initialized is the terminal state: the connection is bound to an
// authorized session and its effective headers. Both are immutable from
// here on.
type Initialized struct {
	Session *sessions.Session
	Headers http.Header
}

func (Initialized) isInitState() {}

// StateCell holds a connection's InitState behind exclusive access. The
// init handler holds the guard for the whole initialization attempt,
// including the network-bound authenticate/authorize calls; that hold is
// the sole mechanism keeping two concurrent attempts from both observing
// NotInitialized and both succeeding.
type StateCell struct {
	mu    sync.Mutex
	state InitState
}

// NewStateCell returns a cell in the NotInitialized state.
func NewStateCell() *StateCell {
	return &StateCell{state: NotInitialized{}}
}

// Acquire blocks until exclusive access to the state is available and
// returns a guard over it. The caller must Release the guard.
func (c *StateCell) Acquire() *StateGuard {
	c.mu.Lock()
	return &StateGuard{cell: c}
}

// Snapshot returns the current state for read-only use by request
// handling after initialization. It blocks while an initialization
// attempt holds the guard, so it can never observe a partial transition.
func (c *StateCell) Snapshot() InitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StateGuard is exclusive access to a cell's state between Acquire and
// Release.
type StateGuard struct {
	cell     *StateCell
	released bool
}

// State returns the guarded state.
func (g *StateGuard) State() InitState {
	return g.cell.state
}

// SetInitialized transitions the cell to Initialized. The caller must
// have observed NotInitialized under this same guard; the transition is
// never reversed.
func (g *StateGuard) SetInitialized(session *sessions.Session, headers http.Header) {
	g.cell.state = Initialized{Session: session, Headers: headers}
}

// Release gives up exclusive access. Further use of the guard is invalid.
func (g *StateGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.cell.mu.Unlock()
}
