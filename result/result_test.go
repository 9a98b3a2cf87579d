package result_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/result"
)

func TestNewSuccess(t *testing.T) {
	value := "config"
	res := result.NewSuccess(&value)

	assert.True(t, res.IsSuccess())
	assert.False(t, res.IsError())
	assert.Nil(t, res.Error())

	val, err := res.Value()
	assert.Nil(t, err)
	assert.Equal(t, value, *val)
	assert.Equal(t, value, *res.ToValue())
}

func TestNewFailure(t *testing.T) {
	testErr := blame.NewBasicBlame("test-error")
	res := result.NewFailure[string](testErr)

	assert.False(t, res.IsSuccess())
	assert.True(t, res.IsError())

	val, err := res.Value()
	assert.Nil(t, val)
	assert.Equal(t, testErr, err)
	assert.Equal(t, testErr, res.Error())
	assert.Nil(t, res.ToValue())
}

func TestFailureWithValue(t *testing.T) {
	partial := "rejected body"
	res := result.NewFailureWithValue(&partial, blame.NewBasicBlame("partial-error"))

	val, err := res.Value()
	assert.Error(t, err)
	assert.Equal(t, "rejected body", *val)
	assert.Nil(t, res.ToValue())
}

func TestZeroValueIsEmptySuccess(t *testing.T) {
	var res result.Result[int]

	assert.True(t, res.IsSuccess())
	assert.Nil(t, res.ToValue())
}
