package monitor

import "sync/atomic"

// Sink adapts a Hub into a progress.Sink, accumulating the byte counts the
// hasher reports into a running total before broadcasting each frame.
type Sink struct {
	hub        *Hub
	total      uint64
	bytesDone  uint64
}

// NewSink returns a progress.Sink broadcasting through hub. totalBytes is
// the expected sum of every hash job's byte range.
func NewSink(hub *Hub, totalBytes uint64) *Sink {
	return &Sink{hub: hub, total: totalBytes}
}

// Report implements progress.Sink.
func (s *Sink) Report(n uint64) {
	done := atomic.AddUint64(&s.bytesDone, n)
	s.hub.broadcastProgress(done, s.total)
}
