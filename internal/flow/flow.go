// Package flow sequences multi-step forms: ordered steps, validated forward moves,
// and a terminal step that is only reachable through a successful submit.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrBusy           = errors.New("flow: a submit is already in flight")
	ErrAtFirstStep    = errors.New("flow: already at the first step")
	ErrSubmitRequired = errors.New("flow: the next step is reached by submitting")
	ErrNotReady       = errors.New("flow: submit is only allowed from the last input step")
	ErrFinished       = errors.New("flow: flow already finished")
)

// Step is one named state of a flow. Validate gates Next; nil means always valid.
// A Pending step is shown only while a submit is in flight.
type Step struct {
	Name     string
	Validate func() error
	Pending  bool
}

// Controller is a small state machine over Steps. The last step is terminal.
type Controller struct {
	mu sync.Mutex

	steps   []Step
	cur     int
	input   int // last input step, where Submit is allowed
	busy    bool
	lastErr error
}

func NewController(steps ...Step) (*Controller, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("flow: need at least two steps, got %d", len(steps))
	}
	input := -1
	for i := len(steps) - 2; i >= 0; i-- {
		if !steps[i].Pending {
			input = i
			break
		}
	}
	if input < 0 {
		return nil, errors.New("flow: no input step before the terminal step")
	}
	for i := 0; i < input; i++ {
		if steps[i].Pending {
			return nil, fmt.Errorf("flow: pending step %q must follow the last input step", steps[i].Name)
		}
	}
	return &Controller{steps: steps, input: input}, nil
}

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.cur]
}

func (c *Controller) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Err is the error attached by the last failed Next or Submit.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) ClearErr() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *Controller) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur == len(c.steps)-1
}

// AtInput reports whether the current step is the one Submit runs from.
func (c *Controller) AtInput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur == c.input && !c.busy
}

// Next advances one input step when the current step validates.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.cur >= c.input {
		if c.cur == len(c.steps)-1 {
			return ErrFinished
		}
		return ErrSubmitRequired
	}
	if v := c.steps[c.cur].Validate; v != nil {
		if err := v(); err != nil {
			c.lastErr = err
			return err
		}
	}
	c.lastErr = nil
	c.cur++
	return nil
}

func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.cur == len(c.steps)-1 {
		return ErrFinished
	}
	if c.cur == 0 {
		return ErrAtFirstStep
	}
	c.lastErr = nil
	c.cur--
	return nil
}

// Begin validates the input step and moves into the pending state.
// The caller runs the request and reports the outcome with Finish.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.cur != c.input {
		if c.cur == len(c.steps)-1 {
			return ErrFinished
		}
		return ErrNotReady
	}
	if v := c.steps[c.cur].Validate; v != nil {
		if err := v(); err != nil {
			c.lastErr = err
			return err
		}
	}
	c.lastErr = nil
	c.busy = true
	if c.steps[c.input+1].Pending {
		c.cur = c.input + 1
	}
	return nil
}

// Finish ends a submit started by Begin: success enters the terminal step,
// failure returns to the input step with err attached.
func (c *Controller) Finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.busy {
		return
	}
	c.busy = false
	if err != nil {
		c.lastErr = err
		c.cur = c.input
		return
	}
	c.lastErr = nil
	c.cur = len(c.steps) - 1
}

// Submit runs fn between Begin and Finish.
func (c *Controller) Submit(ctx context.Context, fn func(context.Context) error) error {
	if err := c.Begin(); err != nil {
		return err
	}
	err := fn(ctx)
	c.Finish(err)
	return err
}

// Reset returns to the first step and drops any error.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = 0
	c.busy = false
	c.lastErr = nil
}
