// Package snowflake generates monotonic 64-bit time-ordered identifiers in
// the layout spec.md §3 describes: 1 reserved high bit, 41 bits of
// milliseconds since a configurable epoch, 10 bits of worker identity, 12
// bits of intra-millisecond sequence.
package snowflake

import (
	"sync"
	"time"
)

// TwitterEpoch is the default epoch (2010-11-04T01:42:54.657Z), used when
// Config.Epoch is the zero value.
var TwitterEpoch = time.Date(2010, time.November, 4, 1, 42, 54, 657*int(time.Millisecond), time.UTC)

const (
	timestampBits = 41
	workerBits    = 10
	sequenceBits  = 12

	maxSequence = 1<<sequenceBits - 1
	workerShift = sequenceBits
	timeShift   = sequenceBits + workerBits
)

// Config configures a Generator.
type Config struct {
	// Epoch is the zero point milliseconds are measured from. Zero value
	// means TwitterEpoch.
	Epoch time.Time
	// WorkerID occupies the 10 worker bits (0-1023). Zero when unused.
	WorkerID int64
}

// Generator is a single-owner, mutex-serialized Snowflake ID source.
// Exactly one generate() call is ever in flight at a time (spec.md §4.2,
// §5): a single mutex guards lastMs and sequence.
type Generator struct {
	mu       sync.Mutex
	epochMs  int64
	workerID int64
	lastMs   int64
	sequence int64
	now      func() time.Time
}

// New constructs a Generator from cfg.
func New(cfg Config) *Generator {
	epoch := cfg.Epoch
	if epoch.IsZero() {
		epoch = TwitterEpoch
	}
	return &Generator{
		epochMs:  epoch.UnixMilli(),
		workerID: cfg.WorkerID & (1<<workerBits - 1),
		lastMs:   -1,
		now:      time.Now,
	}
}

// Generate returns a strictly increasing ID. Concurrent callers are
// serialized by the mutex; if the current millisecond equals the last
// emitted one, the sequence increments, and on overflow the generator
// stalls until the next millisecond (spec.md §4.2). A wall-clock
// regression (NTP step backwards) stalls the same way until the clock
// catches back up, rather than emitting a duplicate or decreasing ID.
func (g *Generator) Generate() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.nowMs()
	for ms < g.lastMs {
		// Clock stepped backwards; wait it out rather than risk a
		// non-monotonic ID.
		time.Sleep(time.Millisecond)
		ms = g.nowMs()
	}

	if ms == g.lastMs {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// Sequence exhausted for this millisecond; stall for the next
			// tick.
			for ms <= g.lastMs {
				time.Sleep(100 * time.Microsecond)
				ms = g.nowMs()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastMs = ms

	elapsed := ms - g.epochMs
	return (elapsed << timeShift) | (g.workerID << workerShift) | g.sequence
}

func (g *Generator) nowMs() int64 {
	return g.now().UnixMilli()
}

// Timestamp recovers the originating wall-clock time of id by reversing
// the shift, relative to epoch (spec.md §3: "the timestamp is recoverable
// by reversing the shift").
func Timestamp(id int64, epoch time.Time) time.Time {
	if epoch.IsZero() {
		epoch = TwitterEpoch
	}
	elapsed := id >> timeShift
	return epoch.Add(time.Duration(elapsed) * time.Millisecond)
}

// WorkerID extracts the worker-identity bits from id.
func WorkerID(id int64) int64 {
	return (id >> workerShift) & (1<<workerBits - 1)
}

// Sequence extracts the intra-millisecond sequence bits from id.
func Sequence(id int64) int64 {
	return id & maxSequence
}
