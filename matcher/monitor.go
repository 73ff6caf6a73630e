package matcher

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps during a match.
type MatchMonitor interface {
	Start(query string)
	Normalized(cleaned string)
	RouteHit(branch string)
	SimilarityComputed(position int, score float32)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) Normalized(_ string)                 {}
func (n *noopMonitor) RouteHit(_ string)                   {}
func (n *noopMonitor) SimilarityComputed(_ int, _ float32) {}
func (n *noopMonitor) Finish(_ *Response)                  {}
