package synthesis

import "context"

// Outcome is the terminal state of a speak request: an artifact path on
// success, or an error whose kind is available through Kind.
type Outcome struct {
	Artifact string
	Err      error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

func (o Outcome) Kind() ErrorKind {
	if o.Err == nil {
		return ""
	}
	return KindOf(o.Err)
}

// Task is the handle for one speak request.
type Task struct {
	done    chan struct{}
	outcome Outcome
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) finish(o Outcome) {
	t.outcome = o
	close(t.done)
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Outcome blocks until the task has finished.
func (t *Task) Outcome() Outcome {
	<-t.done
	return t.outcome
}

func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
