package jobs

import (
	"context"
	"fmt"
)

// Process is a started tool whose output is drained line by line.
type Process interface {
	Consume(onStdout, onStderr func(line string)) error
}

// Job drains one process through a Dispatcher on its own goroutine.
type Job struct {
	dispatcher *Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	result     Result
}

// Start runs proc in the background. ctx must be the context the process
// was started with; cancel stops it.
func Start(ctx context.Context, cancel context.CancelFunc, proc Process, d *Dispatcher) *Job {
	j := &Job{
		dispatcher: d,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go j.run(proc)
	return j
}

func (j *Job) run(proc Process) {
	defer close(j.done)

	err := proc.Consume(j.dispatcher.HandleStdout, j.dispatcher.HandleStderr)
	if err != nil && j.ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", j.ctx.Err(), err)
	}
	j.result = j.dispatcher.Finish(err)
	j.cancel()
}

// ID returns the job id.
func (j *Job) ID() string {
	return j.dispatcher.Handle().ID
}

// Handle returns the job handle.
func (j *Job) Handle() *Handle {
	return j.dispatcher.Handle()
}

// Done is closed once the terminal event has been emitted.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result blocks until the job ends and returns its outcome.
func (j *Job) Result() Result {
	<-j.done
	return j.result
}

// Wait returns the outcome, or ctx's error if ctx ends first.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel kills the process; the job then ends with an Error event.
func (j *Job) Cancel() {
	j.cancel()
}
