package gwring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnuweeb/gwring/internal/opargs"
)

func TestInitRoundsEntriesToPowerOfTwo(t *testing.T) {
	r, err := Init(1)
	require.NoError(t, err)
	defer r.Destroy()
	assert.EqualValues(t, 1, r.sqMask) // cap 2, mask = cap-1
	assert.EqualValues(t, 3, r.cqMask) // cap 4

	r2, err := Init(5)
	require.NoError(t, err)
	defer r2.Destroy()
	assert.EqualValues(t, 7, r2.sqMask)  // cap 8
	assert.EqualValues(t, 15, r2.cqMask) // cap 16
}

// Scenario 1: single NOP.
func TestSingleNop(t *testing.T) {
	r, err := Init(2)
	require.NoError(t, err)
	defer r.Destroy()

	sqe := r.GetSQE()
	require.NotNil(t, sqe)
	sqe.PrepNop(0xdeadbeef)

	n, err := r.Submit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	cqe, err := r.WaitCQE()
	require.NoError(t, err)
	assert.EqualValues(t, 0, cqe.Res)
	assert.EqualValues(t, 0xdeadbeef, cqe.UserData)
	r.CQAdvance(1)
}

// Scenario 2: two full batches of NOPs.
func TestTwoFullBatchesOfNops(t *testing.T) {
	r, err := Init(16)
	require.NoError(t, err)
	defer r.Destroy()

	var seen int
	for round := 0; round < 2; round++ {
		for i := 0; i < 16; i++ {
			sqe := r.GetSQE()
			require.NotNil(t, sqe)
			sqe.PrepNop(uint64(round*16 + i))
		}
		assert.Nil(t, r.GetSQE(), "17th get_sqe must report no slot")

		n, err := r.Submit()
		require.NoError(t, err)
		assert.EqualValues(t, 16, n)
	}

	n := r.ForEachCQE(func(cqe CQE) bool {
		assert.EqualValues(t, 0, cqe.Res)
		assert.Less(t, cqe.UserData, uint64(32))
		seen++
		return true
	})
	assert.EqualValues(t, 32, n)
	assert.Equal(t, 32, seen)
	r.CQAdvance(32)
}

// Scenario 3: CQ overflow.
func TestCQOverflow(t *testing.T) {
	r, err := Init(16) // CQ cap 32
	require.NoError(t, err)
	defer r.Destroy()

	for batch := 0; batch < 3; batch++ {
		for i := 0; i < 16; i++ {
			sqe := r.GetSQE()
			require.NotNil(t, sqe)
			sqe.PrepNop(uint64(batch*16 + i))
		}
		_, err := r.Submit()
		require.NoError(t, err)
	}

	_, err = r.WaitCQENr(32)
	require.NoError(t, err)
	assert.EqualValues(t, 32, r.CQReady())

	r.CQAdvance(32)

	_, err = r.WaitCQENr(16)
	require.NoError(t, err)
	assert.EqualValues(t, 16, r.CQReady())
	r.CQAdvance(16)
}

// Scenario 4: shutdown races a waiter.
func TestShutdownRacesWaiter(t *testing.T) {
	r, err := Init(4)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.WaitCQENr(1)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	r.Destroy()
	wg.Wait()

	assert.ErrorIs(t, <-errCh, ErrOwnerDead)
}

// Scenario 5: never-fail reservation.
func TestNeverFailReservation(t *testing.T) {
	r, err := Init(2)
	require.NoError(t, err)
	defer r.Destroy()

	sqe1 := r.GetSQE()
	require.NotNil(t, sqe1)
	sqe1.PrepNop(1)

	sqe2 := r.GetSQE()
	require.NotNil(t, sqe2)
	sqe2.PrepNop(2)

	assert.Nil(t, r.GetSQE(), "queue is full")

	sqe3, err := r.GetSQENoFail()
	require.NoError(t, err)
	require.NotNil(t, sqe3)
	sqe3.PrepNop(3)

	_, err = r.Submit()
	require.NoError(t, err)

	seen := map[uint64]bool{}
	for i := 0; i < 3; i++ {
		cqe, err := r.WaitCQE()
		require.NoError(t, err)
		assert.EqualValues(t, 0, cqe.Res)
		seen[cqe.UserData] = true
		r.CQAdvance(1)
	}
	assert.True(t, seen[1] && seen[2] && seen[3])
}

func TestDispatchFailurePostsFailureCQE(t *testing.T) {
	r, err := Init(2)
	require.NoError(t, err)
	defer r.Destroy()

	sqe := r.GetSQE()
	require.NotNil(t, sqe)
	sqe.Op = Op(200) // never registered
	sqe.UserData = 7

	_, err = r.Submit()
	require.NoError(t, err)

	cqe, err := r.WaitCQE()
	require.NoError(t, err)
	assert.Equal(t, ResDispatchFailed, cqe.Res)
	assert.EqualValues(t, 7, cqe.UserData)
	r.CQAdvance(1)
}

func TestRegisterHandlerRejectsReservedOpcodes(t *testing.T) {
	noop := func(opargs.Args) int64 { return 0 }
	assert.Panics(t, func() { RegisterHandler(OpNop, noop) })
	assert.Panics(t, func() { RegisterHandler(opLast, noop) })
}
