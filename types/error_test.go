package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := NewError(ErrInvalidTransition, "cannot transition")
	assert.Equal(t, "[INVALID_TRANSITION] cannot transition", err.Error())

	cause := fmt.Errorf("boom")
	err = err.WithCause(cause)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, errors.Is(err, cause))
}

func TestError_Metadata(t *testing.T) {
	err := NewError(ErrEmitFailed, "tag update failed").
		WithContact("c-1").
		WithRetryable(true)

	assert.Equal(t, "c-1", err.ContactID)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrEmitFailed, GetErrorCode(err))
}

func TestGetErrorCode_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(fmt.Errorf("plain")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestContact_RecentWindows(t *testing.T) {
	c := NewContact("c-1", testTime())
	for i := 0; i < 15; i++ {
		c.Turns = append(c.Turns, ConversationTurn{ID: fmt.Sprintf("t-%d", i)})
	}

	recent := c.RecentTurns(10)
	assert.Len(t, recent, 10)
	assert.Equal(t, "t-5", recent[0].ID)
	assert.Equal(t, "t-14", recent[9].ID)

	assert.Nil(t, c.RecentTurns(0))
	assert.Len(t, c.RecentTurns(100), 15)
	assert.Nil(t, c.RecentHandoffs(3))
}
