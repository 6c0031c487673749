package negamax

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/move"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 16

const depthMask = (1 << 6) - 1

const (
	DefaultTTSizePowerOf2 = 20
	minTTSizePowerOf2     = 10
)

// 16 bytes (entrySize)
type TableEntry struct {
	fullHash     uint64
	score        int32
	flagAndDepth uint8
	play         move.TinyMove
}

func (t TableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

func (t TableEntry) depth() uint8 {
	return t.flagAndDepth & depthMask
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

func (t TableEntry) move() move.TinyMove {
	return t.play
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

// TranspositionTable caches search results by position key. Entries are
// simply overwritten on a slot clash; clearing it only costs speed.
type TranspositionTable struct {
	TableLock
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	// "type 2" collisions: two positions that land in the same slot.
	t2collisions atomic.Uint64
}

func (t *TranspositionTable) SetSingleThreadedMode() {
	t.TableLock = &FakeLock{}
}

func (t *TranspositionTable) SetMultiThreadedMode() {
	t.TableLock = new(sync.RWMutex)
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.RLock()
	defer t.RUnlock()
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	if t.table[idx].fullHash != zval {
		if t.table[idx].valid() {
			// There is another unrelated node at this position.
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return t.table[idx]
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	tentry.fullHash = zval
	t.Lock()
	defer t.Unlock()
	// just overwrite whatever is there for now.
	t.table[idx] = tentry
	t.created.Add(1)
}

// Reset empties the table, sizing it to 2^sizePowerOf2 entries but never
// more than fractionOfMemory of the machine's memory. A fraction of 0
// means no cap.
func (t *TranspositionTable) Reset(sizePowerOf2 int, fractionOfMemory float64) {
	if t.TableLock == nil {
		t.SetSingleThreadedMode()
	}
	t.Lock()
	defer t.Unlock()
	if sizePowerOf2 <= 0 {
		sizePowerOf2 = DefaultTTSizePowerOf2
	}
	totalMem := memory.TotalMemory()
	if fractionOfMemory > 0 && totalMem > 0 {
		desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
		// biggest power of 2 lower than desired.
		if capPow := int(math.Log2(desiredNElems)); capPow < sizePowerOf2 {
			sizePowerOf2 = capPow
		}
	}
	if sizePowerOf2 < minTTSizePowerOf2 {
		sizePowerOf2 = minTTSizePowerOf2
	}
	t.sizePowerOf2 = sizePowerOf2

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}

	log.Debug().Int("num-elems", numElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// Stats returns the counters since the last reset.
func (t *TranspositionTable) Stats() (created, lookups, hits, t2collisions uint64) {
	return t.created.Load(), t.lookups.Load(), t.hits.Load(), t.t2collisions.Load()
}
