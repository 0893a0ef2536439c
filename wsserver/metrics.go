package wsserver

// Metrics receives connection and initialization lifecycle events. All
// methods must be safe for concurrent use and must not block; metrics
// never influence control flow.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	InitSucceeded()
	// InitFailed receives the internal error kind, which is safe to
	// expose in metrics (unlike on the wire).
	InitFailed(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ConnectionOpened()      {}
func (noopMetrics) ConnectionClosed()      {}
func (noopMetrics) InitSucceeded()         {}
func (noopMetrics) InitFailed(kind string) {}
