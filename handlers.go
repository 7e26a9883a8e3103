package gwring

import "github.com/gnuweeb/gwring/internal/opargs"

// Op is a submission opcode. The enumeration is closed: every value a
// caller can legally set comes from this block, and opLast bounds it.
type Op uint8

const (
	// OpNop completes immediately with res=0. Useful for testing and
	// for forcing a wakeup of anything waiting on the ring.
	OpNop Op = iota
	// OpSleep sleeps Args[0] milliseconds on a worker goroutine, then
	// completes with res=Args[1] (as a signed value).
	OpSleep
	// OpHTTPGet issues an HTTP GET against the URL pointed to by
	// Args[0] and completes with the response status code, or a
	// negative res on error.
	OpHTTPGet

	// opLast is the registry bound; nothing may be declared after it.
	opLast
)

// Handler executes the blocking body of a non-trivial opcode and
// returns the value to post as the completion's res. Handlers never
// touch the ring directly — the dispatch wrapper posts the completion
// on their behalf, keeping handler bodies pure request/response
// adapters per the ring's contract with its operation handlers.
type Handler func(args opargs.Args) int64

// handlerRegistry is the closed, opcode-keyed set of non-trivial
// operation handlers. OpNop is handled inline in issue and is
// deliberately absent here.
var handlerRegistry = map[Op]Handler{}

// RegisterHandler installs (or replaces) the handler for op. It exists
// so embedding applications can supply their own operation handlers —
// the demo handlers in package handlers register themselves through
// this function from their own init, so the core ring never has a
// dependency on a concrete handler implementation.
func RegisterHandler(op Op, h Handler) {
	if op == OpNop || op >= opLast {
		panic("gwring: cannot register a handler for a reserved opcode")
	}
	handlerRegistry[op] = h
}

// opTask is the heap record carried from dispatch to the worker pool
// for a non-trivial opcode. It plays the role of the original
// struct work_tg_get_updates / post_cqe_data: a small bundle of the
// arguments copied out of the SQE plus enough context to post the
// completion once the handler returns.
//
// argAnchor carries forward whatever GC-visible reference the SQE held
// for a pointer argument (see SQE.argAnchor). Keeping it as a field
// here, rather than letting it stay behind on the recycled SQE slot,
// is what keeps the pointee reachable for the full lifetime of the
// dispatched handler call.
type opTask struct {
	ring      *Ring
	handler   Handler
	args      opargs.Args
	argAnchor any
	userData  uint64
}

func (t *opTask) run() {
	if t.ring.shouldStop.Load() {
		return
	}
	res := t.handler(t.args)
	t.ring.postCQE(res, t.userData)
}
