package fixedtask

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type FixedTaskTestSuite struct {
	suite.Suite
}

func TestFixedTaskTestSuite(t *testing.T) {
	suite.Run(t, new(FixedTaskTestSuite))
}

type counter struct {
	n *int
}

func (c counter) Run() { *c.n++ }

type closingRunnable struct {
	ran    *bool
	closed *bool
}

func (c closingRunnable) Run()         { *c.ran = true }
func (c closingRunnable) Close() error { *c.closed = true; return nil }

// oversizedRunnable is larger than DefaultStorageBudget so New must reject it.
type oversizedRunnable struct {
	buf [DefaultStorageBudget + 8]byte
}

func (oversizedRunnable) Run() {}

func (ts *FixedTaskTestSuite) TestZeroValueIsEmpty() {
	var task Task
	ts.False(task.Present())
	ts.ErrorIs(task.Invoke(), ErrEmptyCallable)
}

func (ts *FixedTaskTestSuite) TestInvokeEquivalentToCallable() {
	n := 0
	task, err := New(counter{n: &n}, 0)
	ts.NoError(err)
	ts.True(task.Present())

	ts.NoError(task.Invoke())
	ts.Equal(1, n)

	ts.NoError(task.Invoke())
	ts.Equal(2, n)
}

func (ts *FixedTaskTestSuite) TestFuncConvenienceConstructor() {
	n := 0
	task := Func(func() { n++ })
	ts.NoError(task.Invoke())
	ts.Equal(1, n)
}

func (ts *FixedTaskTestSuite) TestTaskTooLargeRejectedAtConstruction() {
	task, err := New(oversizedRunnable{}, DefaultStorageBudget)
	ts.ErrorIs(err, ErrTaskTooLarge)
	ts.False(task.Present())
}

func (ts *FixedTaskTestSuite) TestDestroyInvokesCloserExactlyOnce() {
	ran, closed := false, false
	task, err := New(closingRunnable{ran: &ran, closed: &closed}, 0)
	ts.NoError(err)

	ts.NoError(task.Invoke())
	ts.True(ran)
	ts.False(closed)

	task.Destroy()
	ts.True(closed)
	ts.False(task.Present())

	// Destroying again must not invoke Close a second time.
	closed = false
	task.Destroy()
	ts.False(closed)
}

func (ts *FixedTaskTestSuite) TestMoveFromLeavesSourceEmpty() {
	n := 0
	src, err := New(counter{n: &n}, 0)
	ts.NoError(err)

	var dst Task
	dst.MoveFrom(&src)

	ts.False(src.Present())
	ts.ErrorIs(src.Invoke(), ErrEmptyCallable)

	ts.True(dst.Present())
	ts.NoError(dst.Invoke())
	ts.Equal(1, n)
}

func (ts *FixedTaskTestSuite) TestMoveFromDestroysExistingDestination() {
	destClosed := false
	dst, err := New(closingRunnable{ran: new(bool), closed: &destClosed}, 0)
	ts.NoError(err)

	n := 0
	src, err := New(counter{n: &n}, 0)
	ts.NoError(err)

	dst.MoveFrom(&src)
	ts.True(destClosed)
	ts.NoError(dst.Invoke())
	ts.Equal(1, n)
}

func (ts *FixedTaskTestSuite) TestSelfMoveIsNoOp() {
	n := 0
	task, err := New(counter{n: &n}, 0)
	ts.NoError(err)

	task.MoveFrom(&task)
	ts.True(task.Present())
	ts.NoError(task.Invoke())
	ts.Equal(1, n)
}
