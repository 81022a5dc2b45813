package progress

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Terminal drives a schollz/progressbar/v3 bar from the byte counts the
// hasher reports, following the same bar options mkbrr configures for its
// own hashing progress (description, throttle, byte counter). Report is
// called from the hasher's single reporter goroutine, so Terminal needs
// no locking of its own — progressbar.ProgressBar is safe for that single
// writer.
type Terminal struct {
	bar *progressbar.ProgressBar
}

// NewTerminal builds a Terminal sink for a hash run over totalBytes.
func NewTerminal(totalBytes int64) *Terminal {
	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(25),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
	return &Terminal{bar: bar}
}

// Report implements Sink.
func (t *Terminal) Report(n uint64) {
	_ = t.bar.Add64(int64(n))
}
