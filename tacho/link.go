package tacho

import (
	"errors"
	"io"
)

// Link backoff
const (
	// MaxWriteFailures is the number of consecutive failed writes after
	// which the link is considered down
	MaxWriteFailures = 10

	// ReprobeEvery is how often a frame is still attempted while the
	// link is down
	ReprobeEvery = 10
)

var ErrLinkDown = errors.New("telemetry link down")

// LinkWriter sends whole frames to a writer that may lose its host, such
// as USB CDC. While the link is down, frames are dropped without touching
// the writer except for one attempt every ReprobeEvery frames.
type LinkWriter struct {
	w io.Writer

	consecutiveFailures uint32
	down                bool
	skipped             uint32

	// Dropped counts frames not delivered
	Dropped uint32
}

// NewLinkWriter wraps w
func NewLinkWriter(w io.Writer) *LinkWriter {
	return &LinkWriter{w: w}
}

// Write sends one frame, handling partial writes
func (l *LinkWriter) Write(frame []byte) (int, error) {
	if l.down {
		l.skipped++
		if l.skipped < ReprobeEvery {
			l.Dropped++
			return 0, ErrLinkDown
		}
		l.skipped = 0
	}

	written := 0
	for written < len(frame) {
		n, err := l.w.Write(frame[written:])
		if n > 0 {
			written += n
		}
		if err != nil || n == 0 {
			l.failed()
			if err == nil {
				err = io.ErrShortWrite
			}
			return written, err
		}
	}

	l.consecutiveFailures = 0
	l.down = false
	return written, nil
}

// Down reports whether frames are currently being dropped
func (l *LinkWriter) Down() bool {
	return l.down
}

func (l *LinkWriter) failed() {
	l.Dropped++
	l.consecutiveFailures++
	if l.consecutiveFailures >= MaxWriteFailures {
		l.down = true
		l.skipped = 0
	}
}
