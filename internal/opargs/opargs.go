// Package opargs defines the argument representation shared between the
// ring's submission entries and the opcode handlers that consume them.
//
// Args mirrors the SQE arg1..arg6 union from the original C ring: each
// slot is a raw 64-bit word that the producer and the handler agree on
// how to interpret (unsigned, signed, or pointer). Keeping this in its
// own leaf package lets both the ring package and the handlers package
// depend on it without depending on each other.
package opargs

import "unsafe"

// Args holds the six opaque argument words of a submission entry.
type Args [6]uint64

// SetU64 stores an unsigned value in slot i.
func (a *Args) SetU64(i int, v uint64) { a[i] = v }

// SetS64 stores a signed value in slot i.
func (a *Args) SetS64(i int, v int64) { a[i] = uint64(v) }

// SetPtr stores a pointer in slot i as a raw, non-pointer word — Args
// is a [6]uint64, so the garbage collector does not see this as a
// reference to p's pointee. The caller is responsible for keeping the
// pointee reachable through an ordinary Go reference of its own for as
// long as the matching completion is outstanding; SetPtr only
// round-trips the bits, the same way io_uring treats a registered
// buffer pointer as an opaque word once submitted. Storing a pointer
// here without retaining a separate live reference to its pointee is a
// use-after-free waiting to happen.
func (a *Args) SetPtr(i int, p unsafe.Pointer) { a[i] = uint64(uintptr(p)) }

// U64 reads slot i as an unsigned value.
func (a Args) U64(i int) uint64 { return a[i] }

// S64 reads slot i as a signed value.
func (a Args) S64(i int) int64 { return int64(a[i]) }

// Ptr reads slot i as a pointer.
func (a Args) Ptr(i int) unsafe.Pointer { return unsafe.Pointer(uintptr(a[i])) }
