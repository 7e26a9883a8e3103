// Package handlers provides the demo operation handlers wired into a
// gwring.Ring's opcode registry. They live outside the core module so
// the ring itself never depends on a concrete handler implementation —
// only cmd/gwringctl and the ring's black-box tests import this
// package, and they do so purely to trigger its init-time registration.
package handlers

import (
	"time"

	"github.com/gnuweeb/gwring"
	"github.com/gnuweeb/gwring/internal/opargs"
)

func init() {
	gwring.RegisterHandler(gwring.OpSleep, Sleep)
}

// Sleep implements OpSleep: sleeps for the millisecond count in
// Args[0], then returns the signed result the caller staged in
// Args[1] as the completion's res.
func Sleep(args opargs.Args) int64 {
	ms := args.U64(0)
	result := args.S64(1)
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return result
}
