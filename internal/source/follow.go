package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is used when a Follower is created with a zero interval
const DefaultPollInterval = 250 * time.Millisecond

// Refresher is a source whose backing store can be re-read for new lines
type Refresher interface {
	Refresh() (int, error)
	Path() string
}

// Update reports lines that became present in a followed source
type Update struct {
	Path      string
	FirstLine int // first new line number
	NewLines  int
}

// watcher tracks a single source for the follower
type watcher struct {
	source  Refresher
	lines   int  // lines seen so far
	enabled bool // polled while true
}

// Follower polls sources for appended lines so that waiting readers wake up
type Follower struct {
	watchers []*watcher
	poll     time.Duration
	log      zerolog.Logger
	updates  chan Update

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFollower creates a follower for the given sources. lineCounts holds the
// number of lines already present in each source.
func NewFollower(poll time.Duration, log zerolog.Logger, sources []Refresher, lineCounts []int) *Follower {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	watchers := make([]*watcher, len(sources))
	for i, src := range sources {
		w := &watcher{source: src, enabled: true}
		if i < len(lineCounts) {
			w.lines = lineCounts[i]
		}
		watchers[i] = w
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Follower{
		watchers: watchers,
		poll:     poll,
		log:      log,
		updates:  make(chan Update, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Updates delivers growth notifications. Notifications are dropped when the
// channel is full; readers only use them as hints.
func (f *Follower) Updates() <-chan Update {
	return f.updates
}

// Start launches the polling loop
func (f *Follower) Start() {
	f.wg.Add(1)
	go f.run()
}

func (f *Follower) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.Poll()
		}
	}
}

// Poll checks every enabled source once
func (f *Follower) Poll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range f.watchers {
		if !w.enabled {
			continue
		}

		newLines, err := w.source.Refresh()
		if err != nil {
			if errors.Is(err, ErrTruncated) || errors.Is(err, ErrClosed) {
				f.log.Warn().Err(err).Str("path", w.source.Path()).Msg("stopped following")
				w.enabled = false
				continue
			}
			f.log.Debug().Err(err).Str("path", w.source.Path()).Msg("refresh failed")
			continue
		}
		if newLines == 0 {
			continue
		}

		u := Update{Path: w.source.Path(), FirstLine: w.lines, NewLines: newLines}
		w.lines += newLines
		select {
		case f.updates <- u:
		default:
			f.log.Debug().Str("path", u.Path).Int("lines", newLines).Msg("update dropped")
		}
	}
}

// Close stops the polling loop. Sources are owned by the caller.
func (f *Follower) Close() error {
	f.cancel()
	f.wg.Wait()
	return nil
}
