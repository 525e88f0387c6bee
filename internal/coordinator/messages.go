package coordinator

// BiasChangedMsg reports a new effective bias. It restarts the quiescence
// timer; only the last change inside the window triggers a run.
type BiasChangedMsg struct {
	Bias int
}

// ManualRunMsg requests an immediate run, superseding any pending timer and
// any in-flight call.
type ManualRunMsg struct {
	IncludeWalletHint bool
}

// AbortMsg cancels the pending timer and any in-flight call without
// starting a new one.
type AbortMsg struct{}

// NetworkResolvedMsg carries a successful response for a generation.
type NetworkResolvedMsg struct {
	Payload    []byte
	Generation uint64
}

// NetworkFailedMsg carries a failed or cancelled call for a generation.
type NetworkFailedMsg struct {
	Err        error
	Generation uint64
}

// debounceFiredMsg is delivered when a quiescence timer elapses.
type debounceFiredMsg struct {
	seq uint64
}
