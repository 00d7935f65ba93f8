package systems

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobCallbacksRunOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	var started atomic.Int32
	var results []interface{}
	var failures []error
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.NoError(t, js.Submit(JobTask{
			Name: "square",
			Start: func() (interface{}, error) {
				started.Add(1)
				return i * i, nil
			},
			OnComplete: func(result interface{}) { results = append(results, result) },
		}))
	}
	require.NoError(t, js.Submit(JobTask{
		Name:      "fail",
		Start:     func() (interface{}, error) { return nil, boom },
		OnFailure: func(err error) { failures = append(failures, err) },
	}))
	assert.Equal(t, 4, js.Pending())

	require.Eventually(t, func() bool { return js.Finished() == 4 }, time.Second, time.Millisecond)
	assert.Empty(t, results, "callbacks wait for Update")

	assert.Equal(t, 4, js.Update())
	assert.ElementsMatch(t, []interface{}{0, 1, 4}, results)
	assert.Equal(t, []error{boom}, failures)
	assert.Equal(t, int32(3), started.Load())
	assert.Zero(t, js.Pending())
	assert.Zero(t, js.Update())
}

func TestJobSystemShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, js.Submit(JobTask{
		Name:  "last",
		Start: func() (interface{}, error) { ran <- struct{}{}; return nil, nil },
	}))
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	select {
	case <-ran:
	default:
		t.Fatal("queued job did not run before shutdown returned")
	}
	assert.Error(t, js.Submit(JobTask{Name: "late", Start: func() (interface{}, error) { return nil, nil }}))
}
