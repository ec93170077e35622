package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSteps(valid *bool) *Controller {
	c, err := NewController(
		Step{Name: "a", Validate: func() error {
			if !*valid {
				return errors.New("a is incomplete")
			}
			return nil
		}},
		Step{Name: "b"},
		Step{Name: "done"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func TestNewController_RejectsBadStepLists(t *testing.T) {
	_, err := NewController(Step{Name: "only"})
	require.Error(t, err)

	_, err = NewController(Step{Name: "wait", Pending: true}, Step{Name: "done"})
	require.Error(t, err)

	_, err = NewController(Step{Name: "a"}, Step{Name: "wait", Pending: true}, Step{Name: "b"}, Step{Name: "done"})
	require.Error(t, err)
}

func TestController_NextIsGatedByValidation(t *testing.T) {
	valid := false
	c := threeSteps(&valid)

	require.Error(t, c.Next())
	assert.Equal(t, 0, c.Index())
	assert.EqualError(t, c.Err(), "a is incomplete")

	valid = true
	require.NoError(t, c.Next())
	assert.Equal(t, "b", c.Current().Name)
	assert.NoError(t, c.Err())

	require.ErrorIs(t, c.Next(), ErrSubmitRequired)
	assert.True(t, c.AtInput())
}

func TestController_Back(t *testing.T) {
	valid := true
	c := threeSteps(&valid)
	require.ErrorIs(t, c.Back(), ErrAtFirstStep)

	require.NoError(t, c.Next())
	require.NoError(t, c.Back())
	assert.Equal(t, 0, c.Index())
}

func TestController_SubmitSuccessEntersTerminal(t *testing.T) {
	valid := true
	c := threeSteps(&valid)
	require.ErrorIs(t, c.Submit(context.Background(), func(context.Context) error { return nil }), ErrNotReady)

	require.NoError(t, c.Next())
	var sawBusy bool
	err := c.Submit(context.Background(), func(context.Context) error {
		sawBusy = c.Busy()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawBusy)
	assert.False(t, c.Busy())
	assert.True(t, c.Finished())

	require.ErrorIs(t, c.Next(), ErrFinished)
	require.ErrorIs(t, c.Back(), ErrFinished)

	c.Reset()
	assert.Equal(t, 0, c.Index())
}

func TestController_SubmitFailureReturnsToInputStep(t *testing.T) {
	valid := true
	c := threeSteps(&valid)
	require.NoError(t, c.Next())

	boom := errors.New("server said no")
	err := c.Submit(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "b", c.Current().Name)
	assert.ErrorIs(t, c.Err(), boom)
	assert.False(t, c.Busy())
	assert.False(t, c.Finished())

	c.ClearErr()
	assert.NoError(t, c.Err())
}

func TestController_BusyBlocksNavigation(t *testing.T) {
	valid := true
	c := threeSteps(&valid)
	require.NoError(t, c.Next())
	require.NoError(t, c.Begin())

	assert.ErrorIs(t, c.Begin(), ErrBusy)
	assert.ErrorIs(t, c.Next(), ErrBusy)
	assert.ErrorIs(t, c.Back(), ErrBusy)

	c.Finish(nil)
	assert.True(t, c.Finished())

	// A second Finish without Begin is ignored.
	c.Finish(errors.New("late"))
	assert.True(t, c.Finished())
	assert.NoError(t, c.Err())
}
