package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima/engine/core"
)

/**
 * @brief A unit of background work. Start runs on a worker goroutine and must
 * not touch the device; OnComplete and OnFailure run on the goroutine that
 * calls Update, which is the frame loop.
 */
type JobTask struct {
	Name       string
	Start      func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex     sync.Mutex
	pending   int
	completed []jobResult
	closed    bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.Start()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err.Error())
				}
				js.mutex.Lock()
				js.completed = append(js.completed, jobResult{task: job, result: result, err: err})
				js.mutex.Unlock()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks
 * are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	js.mutex.Unlock()
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Runs the callbacks of finished jobs. Should happen once an update cycle.
 *
 * @return The number of jobs whose callbacks ran.
 */
func (js *JobSystem) Update() int {
	js.mutex.Lock()
	done := js.completed
	js.completed = nil
	js.pending -= len(done)
	js.mutex.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
	return len(done)
}

// Pending counts submitted jobs whose callbacks have not run yet.
func (js *JobSystem) Pending() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.pending
}

// Finished counts jobs waiting for Update.
func (js *JobSystem) Finished() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return len(js.completed)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return fmt.Errorf("job system is shut down, dropping job %s", jt.Name)
	}
	js.pending++
	js.mutex.Unlock()
	js.jobQueue <- jt
	return nil
}
