// Package gwring implements a submission/completion ring (SQ/CQ) backed
// by a bounded worker pool, in the spirit of a kernel io_uring
// interface: callers stage descriptors into a submission queue, submit
// them as a batch, and later harvest completion records identifying
// which submission finished and with what result.
//
// Unlike a real io_uring, nothing here talks to the kernel — every
// non-trivial opcode is dispatched to a goroutine from an internal
// worker pool, and completions are posted back onto the ring from
// whichever goroutine finishes the work. This makes the ring portable
// (no //go:build linux, no mmap, no syscalls) at the cost of being a
// pure userspace simulation rather than a wrapper around the kernel's
// own ring.
package gwring

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gnuweeb/gwring/internal/workerpool"
)

// Worker pool sizing, matching the {max_threads=64, min_threads=1,
// max_pending_works=4096, lazy thread creation} configuration the
// original ring allocates its I/O workqueue with.
const (
	DefaultMaxThreads      = 64
	DefaultMinThreads      = 1
	DefaultMaxPendingWorks = 4096
)

// Common errors.
var (
	// ErrOwnerDead is returned by Submit and the Wait* family once
	// Destroy has been called (or is in progress).
	ErrOwnerDead = errors.New("gwring: owner dead (ring is shutting down)")
)

// ResDispatchFailed is the res value posted for an SQE whose dispatch
// failed — an unknown opcode, or the worker pool refusing the task.
// See the resolved open question in SPEC_FULL.md §7/§9: the ring posts
// a failure completion rather than silently dropping the submission.
const ResDispatchFailed int64 = -1

// Ring is the paired submission/completion queue plus its
// synchronization state and attached worker pool.
type Ring struct {
	sqLock sync.Mutex
	cqLock sync.Mutex

	sqes []SQE
	cqes []CQE

	sqHead atomic.Uint32
	sqTail atomic.Uint32
	sqMask uint32

	cqHead atomic.Uint32
	cqTail atomic.Uint32
	cqMask uint32

	postCQECond  *sync.Cond
	postCQECondN uint32

	waitCQECond  *sync.Cond
	waitCQECondN uint32

	shouldStop atomic.Bool

	pool *workerpool.Pool
}

// nextPow2 rounds n up to the next power of two, with a floor of 2.
func nextPow2(n uint32) uint32 {
	i := uint32(2)
	for i < n {
		i *= 2
	}
	return i
}

// Init allocates a ring sized for at least entries submissions.
// entries is rounded up to the next power of two (minimum 2); the
// completion queue is sized at twice that to absorb re-issues and
// overflow-path completions.
func Init(entries uint32) (*Ring, error) {
	sqCap := nextPow2(max(entries, 2))
	cqCap := sqCap * 2

	pool, err := workerpool.New(workerpool.Config{
		Name:               "gwring-io-wq",
		MaxThreads:         DefaultMaxThreads,
		MinThreads:         DefaultMinThreads,
		MaxPendingWorks:    DefaultMaxPendingWorks,
		LazyThreadCreation: true,
	})
	if err != nil {
		return nil, err
	}

	r := &Ring{
		sqes:   make([]SQE, sqCap),
		cqes:   make([]CQE, cqCap),
		sqMask: sqCap - 1,
		cqMask: cqCap - 1,
		pool:   pool,
	}
	r.postCQECond = sync.NewCond(&r.cqLock)
	r.waitCQECond = sync.NewCond(&r.cqLock)

	return r, nil
}

// Destroy stops the worker pool, wakes every parked waiter so none
// blocks forever, and frees the ring's buffers. It always completes:
// any in-flight handler observes shouldStop and either finishes
// quickly or is allowed to run to completion by WaitAllWorkDone before
// the pool is torn down.
func (r *Ring) Destroy() {
	r.shouldStop.Store(true)

	r.cqLock.Lock()
	if r.postCQECondN > 0 {
		broadcastN(r.postCQECond, r.postCQECondN)
	}
	if r.waitCQECondN > 0 {
		broadcastN(r.waitCQECond, r.waitCQECondN)
	}
	r.cqLock.Unlock()

	r.pool.WaitAllWorkDone()
	r.pool.Destroy()

	r.sqLock.Lock()
	r.cqLock.Lock()
	r.sqes = nil
	r.cqes = nil
	r.cqLock.Unlock()
	r.sqLock.Unlock()
}

// broadcastN wakes exactly n parked waiters on cond. The caller must
// hold cond's locker. This is the Go stand-in for cond_broadcast_n:
// the original source tracks an exact waiter count and wakes precisely
// that many threads so a signal can never be lost between a waiter
// incrementing its counter and parking. sync.Cond has no native
// broadcast-to-n, but since n is always the exact number of goroutines
// currently parked in Wait(), n calls to Signal wake exactly that many
// — the documented fallback (unconditional Broadcast) would be
// equivalent here but wakes indiscriminately if that invariant were
// ever violated, which Signal-times-n does not risk.
func broadcastN(cond *sync.Cond, n uint32) {
	for i := uint32(0); i < n; i++ {
		cond.Signal()
	}
}

func (r *Ring) sqReadyLocked() uint32 {
	return r.sqTail.Load() - r.sqHead.Load()
}

func (r *Ring) sqLeftLocked() uint32 {
	return (r.sqMask + 1) - r.sqReadyLocked()
}

func (r *Ring) cqReadyLocked() uint32 {
	return r.cqTail.Load() - r.cqHead.Load()
}

func (r *Ring) cqLeftLocked() uint32 {
	return (r.cqMask + 1) - r.cqReadyLocked()
}

// SQReady returns the number of SQEs staged but not yet submitted.
func (r *Ring) SQReady() uint32 {
	r.sqLock.Lock()
	defer r.sqLock.Unlock()
	return r.sqReadyLocked()
}

// CQReady returns the number of CQEs available for consumption.
func (r *Ring) CQReady() uint32 {
	return r.cqTail.Load() - r.cqHead.Load()
}
