package gc

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// tickThreshold and wallclockFloor are the scheduler's heuristic constants:
// a collection is due once the tick counter has advanced by more than
// tickThreshold rendezvous calls AND at least wallclockFloor has elapsed
// since the last cycle.
const (
	tickThreshold  = 10
	wallclockFloor = 10 * time.Millisecond
)

// Collector is the process-wide cyclic garbage collector singleton. All of
// its mutable state — RootRegistry, WorkerRegistry, InnerCount,
// ContributedWorkers, ReleaseQueue and the scheduler flags — is guarded by
// mu, "the graph's write-lock" per spec: every mutation of an atomic cell's
// slot is required to happen under this same lock.
type Collector struct {
	mu   sync.Mutex
	cond *sync.Cond

	host StackWalker

	// RootRegistry
	roots map[Cell]struct{}

	// WorkerRegistry
	workers      map[WorkerID]struct{}
	primary      WorkerID
	hasPrimary   bool

	// Scheduler
	tick              uint32 // accessed atomically outside the lock (fast path)
	lastTick          uint32
	lastCollection    time.Time
	collectRequested  bool

	// RendezvousGate / Marker state for the in-progress cycle
	innerCount  map[Cell]int32
	contributed map[WorkerID]struct{}

	// ReleaseQueue
	releaseQueue []Slot

	running atomic.Bool // advisory fast-path flag, read without mu (spec §9 open question 1)

	// CollectorThread lifecycle
	wantCollect  bool
	terminating  bool
	terminated   chan struct{}

	lastCycleCollected int

	logger *log.Logger
}

var (
	instanceMu sync.Mutex
	instance   *Collector
)

// Option configures the collector at Init time. The zero-value set of
// options reproduces the default behavior (diagnostics on os.Stderr).
type Option func(*Collector)

// WithLogWriter redirects the collector's diagnostic log to w. Passing
// io.Discard silences it entirely, per spec's "diagnostic output is
// informational only, and a caller can turn it off."
func WithLogWriter(w io.Writer) Option {
	return func(c *Collector) {
		c.logger = log.New(w, "gc: ", log.Lmicroseconds)
	}
}

// Init constructs the collector singleton and spawns its background
// CollectorThread. It is a programmer error to call Init twice without an
// intervening Shutdown.
func Init(host StackWalker, opts ...Option) *Collector {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		panic("gc: Init called while already initialized")
	}
	if host == nil {
		panic("gc: Init requires a non-nil StackWalker")
	}
	c := &Collector{
		host:        host,
		roots:       make(map[Cell]struct{}),
		workers:     make(map[WorkerID]struct{}),
		innerCount:  make(map[Cell]int32),
		contributed: make(map[WorkerID]struct{}),
		terminated:  make(chan struct{}),
		logger:      log.New(os.Stderr, "gc: ", log.Lmicroseconds),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cond = sync.NewCond(&c.mu)
	instance = c
	go c.loop()
	return c
}

// current returns the live singleton, panicking if the collector has not
// been initialized — spec §7 asserts "shutdown-before-init" class errors
// fatal, and this is the shared guard for every public entry point.
func current() *Collector {
	instanceMu.Lock()
	c := instance
	instanceMu.Unlock()
	if c == nil {
		panic("gc: called before Init or after Shutdown")
	}
	return c
}

// Shutdown signals the CollectorThread to terminate, waits for it to exit,
// and clears the singleton. Calling Shutdown before Init is a programmer
// error.
func Shutdown() {
	c := current()

	c.mu.Lock()
	c.terminating = true
	c.cond.Broadcast()
	c.mu.Unlock()

	<-c.terminated

	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}

// Lock acquires the collector's global write-lock. The host runtime routes
// every mutation of an atomic cell's slot through this same lock (spec §5:
// "the lock is the graph's write-lock") so that a mark pass never observes
// a torn graph.
func Lock() { current().mu.Lock() }

// Unlock releases the lock acquired by Lock.
func Unlock() { current().mu.Unlock() }

// Stats is a read-only diagnostic snapshot. Diagnostic output is
// informational only (spec §7) — nothing reads this to make decisions.
type Stats struct {
	Roots              int
	Workers            int
	ContributedWorkers int
	LastCycleCollected int
}

// Snapshot returns a diagnostic snapshot of the collector's current
// bookkeeping. It takes the global lock only long enough to copy four
// integers.
func Snapshot() Stats { return current().stats() }

func (c *Collector) stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Roots:              len(c.roots),
		Workers:            len(c.workers),
		ContributedWorkers: len(c.contributed),
		LastCycleCollected: c.lastCycleCollected,
	}
}

func (c *Collector) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Output(2, fmt.Sprintf(format, args...))
	}
}
