package gwring

// CQE is a completion queue entry: the result of one submission,
// correlated back to its SQE by UserData.
type CQE struct {
	Res      int64
	UserData uint64
}

// postCQE appends a completion to the CQ. If the CQ is full, the
// completion is handed to the worker pool as a retry task that parks
// on postCQECond until space frees up or the ring is shutting down —
// the same overflow path the original ring uses instead of dropping a
// completion or blocking the poster's own goroutine indefinitely.
func (r *Ring) postCQE(res int64, userData uint64) {
	r.cqLock.Lock()
	if r.cqLeftLocked() == 0 {
		r.cqLock.Unlock()
		r.iowqPostCQE(res, userData)
		return
	}
	r.postCQELocked(res, userData)
	r.cqLock.Unlock()
}

// postCQELocked writes the completion into the next CQ slot and wakes
// every parked WaitCQE waiter, if any, so each can re-check its own
// count. Caller must hold cqLock and must have already verified room
// exists.
func (r *Ring) postCQELocked(res int64, userData uint64) {
	tail := r.cqTail.Load()
	r.cqes[tail&r.cqMask] = CQE{Res: res, UserData: userData}
	r.cqTail.Store(tail + 1)

	if r.waitCQECondN > 0 {
		broadcastN(r.waitCQECond, r.waitCQECondN)
	}
}

// cqeRetryTask is the record carried to the worker pool for a
// completion that could not be posted immediately because the CQ was
// full. It mirrors struct post_cqe_data from the original ring.
type cqeRetryTask struct {
	ring     *Ring
	res      int64
	userData uint64
}

func (t *cqeRetryTask) run() {
	r := t.ring
	r.cqLock.Lock()
	defer r.cqLock.Unlock()

	r.postCQECondN++
	for r.cqLeftLocked() == 0 && !r.shouldStop.Load() {
		r.postCQECond.Wait()
	}
	r.postCQECondN--

	if r.cqLeftLocked() == 0 {
		// Ring is shutting down and no room ever opened up; the
		// completion is simply lost, same as any other in-flight
		// work abandoned by Destroy.
		return
	}
	r.postCQELocked(t.res, t.userData)
}

// iowqPostCQE hands an overflowed completion to the worker pool. If
// the pool refuses the task — its pending queue is full, or it is
// being destroyed — the completion is dropped, mirroring the original
// ring's own fallback of logging and discarding.
func (r *Ring) iowqPostCQE(res int64, userData uint64) {
	t := &cqeRetryTask{ring: r, res: res, userData: userData}
	r.pool.TryQueueWork(t.run, nil, func(any) {})
}

// PeekCQE returns the oldest unconsumed completion without advancing
// the CQ head, or ok=false if none is available yet.
func (r *Ring) PeekCQE() (cqe CQE, ok bool) {
	head := r.cqHead.Load()
	if head == r.cqTail.Load() {
		return CQE{}, false
	}
	return r.cqes[head&r.cqMask], true
}

// CQAdvance marks n completions, starting from the current head, as
// consumed, and wakes any overflow workers parked on postCQECond —
// consuming completions is exactly what frees the room they are
// waiting for.
func (r *Ring) CQAdvance(n uint32) {
	r.cqLock.Lock()
	r.cqHead.Add(n)
	if r.postCQECondN > 0 {
		broadcastN(r.postCQECond, r.postCQECondN)
	}
	r.cqLock.Unlock()
}

// WaitCQE blocks until at least one completion is available (or the
// ring shuts down) and returns it without advancing the head; pair
// with CQAdvance(1) once the caller is done reading it.
func (r *Ring) WaitCQE() (CQE, error) {
	return r.WaitCQENr(1)
}

// WaitCQENr blocks until at least nr completions are available, then
// returns the oldest without advancing the head.
func (r *Ring) WaitCQENr(nr uint32) (CQE, error) {
	r.cqLock.Lock()
	defer r.cqLock.Unlock()

	r.waitCQECondN++
	for r.cqReadyLocked() < nr && !r.shouldStop.Load() {
		r.waitCQECond.Wait()
	}
	r.waitCQECondN--

	if r.cqReadyLocked() < nr {
		return CQE{}, ErrOwnerDead
	}

	head := r.cqHead.Load()
	return r.cqes[head&r.cqMask], nil
}

// SubmitAndWait submits every staged SQE and then blocks until at
// least waitNr completions are available, returning the first one.
// This is the two-phase operation the ring's lock ordering is named
// for: the submission phase takes only sqLock, the wait phase only
// cqLock — the two are never held at once by this call, even though
// issue (called while sqLock is held) may itself briefly take cqLock
// to post an inline completion.
func (r *Ring) SubmitAndWait(waitNr uint32) (CQE, error) {
	if _, err := r.Submit(); err != nil {
		return CQE{}, err
	}
	return r.WaitCQENr(waitNr)
}

// ForEachCQE invokes fn for every completion currently available,
// without advancing the CQ head; the caller is expected to call
// CQAdvance with the count it actually consumed (fn may return false
// to stop early, leaving the rest for a later call).
func (r *Ring) ForEachCQE(fn func(CQE) bool) uint32 {
	var n uint32
	head := r.cqHead.Load()
	tail := r.cqTail.Load()
	for head != tail {
		if !fn(r.cqes[head&r.cqMask]) {
			break
		}
		head++
		n++
	}
	return n
}
