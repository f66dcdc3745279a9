// Package batch groups a chat's rapid-fire uploads into a single summary.
// Sharing several files in one action arrives as independent upload events;
// the coordinator debounces them so the chat gets one notification, not one
// per file.
package batch

import (
	"sync"
	"time"

	"github.com/pders01/torrentdrop/internal/debuglog"
)

// File is one processed upload, successful or not. Files are consumed
// exactly once, when the owning chat's queue drains.
type File struct {
	Name   string
	SizeKB float64
	Err    error
}

// OK reports whether the file reached the watch folder.
func (f File) OK() bool {
	return f.Err == nil
}

// Notifier delivers a drained batch to the chat. Files arrive in the order
// they were recorded.
type Notifier interface {
	NotifyBatch(chatID int64, files []File) error
}

// Coordinator debounces per-chat upload events. Every Record re-arms the
// chat's timer; the queue drains only after a full quiet period. A
// generation counter per chat resolves the cancel-versus-fire race: a timer
// that fires after it was superseded sees a newer generation and no-ops, so
// each queue is delivered at most once and never lost.
type Coordinator struct {
	mu       sync.Mutex
	timeout  time.Duration
	notifier Notifier

	queues map[int64][]File
	timers map[int64]*time.Timer
	gens   map[int64]uint64
}

func NewCoordinator(timeout time.Duration, notifier Notifier) *Coordinator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Coordinator{
		timeout:  timeout,
		notifier: notifier,
		queues:   make(map[int64][]File),
		timers:   make(map[int64]*time.Timer),
		gens:     make(map[int64]uint64),
	}
}

// Record appends a file to the chat's queue and restarts its debounce
// timer. Safe to call from concurrent handler goroutines.
func (c *Coordinator) Record(chatID int64, file File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queues[chatID] = append(c.queues[chatID], file)

	gen := c.gens[chatID] + 1
	c.gens[chatID] = gen

	if timer, ok := c.timers[chatID]; ok {
		timer.Stop()
	}
	c.timers[chatID] = time.AfterFunc(c.timeout, func() {
		c.drain(chatID, gen)
	})
}

// drain delivers the chat's queue if this timer is still the current one.
func (c *Coordinator) drain(chatID int64, gen uint64) {
	c.mu.Lock()
	if c.gens[chatID] != gen {
		// Superseded by a newer arrival; that arrival's timer owns the queue.
		c.mu.Unlock()
		return
	}
	files := c.queues[chatID]
	delete(c.queues, chatID)
	delete(c.timers, chatID)
	// gens stays: the counter must be monotone per chat so a stale timer can
	// never observe a reused generation.
	c.mu.Unlock()

	if len(files) == 0 {
		return
	}

	c.notify(chatID, files)
}

// Flush immediately drains every pending queue, summaries included. Used at
// shutdown so accepted files are still acknowledged.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	pending := make(map[int64][]File, len(c.queues))
	for chatID, files := range c.queues {
		if timer, ok := c.timers[chatID]; ok {
			timer.Stop()
		}
		c.gens[chatID]++ // Invalidate any timer that already fired
		if len(files) > 0 {
			pending[chatID] = files
		}
	}
	c.queues = make(map[int64][]File)
	c.timers = make(map[int64]*time.Timer)
	c.mu.Unlock()

	for chatID, files := range pending {
		c.notify(chatID, files)
	}
}

// Pending returns how many files are queued for a chat. Test hook.
func (c *Coordinator) Pending(chatID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues[chatID])
}

func (c *Coordinator) notify(chatID int64, files []File) {
	// Notification only: the files are already on disk, so a failed send is
	// logged and dropped rather than retried.
	if err := c.notifier.NotifyBatch(chatID, files); err != nil {
		debuglog.Errorf("batch summary delivery failed for chat %d: %v", chatID, err)
	}
}
