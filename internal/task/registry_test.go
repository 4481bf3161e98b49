package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkedPayload exercises the PayloadValidator path.
type checkedPayload struct {
	Count int `json:"count"`
}

func (p checkedPayload) Validate() error {
	if p.Count < 0 {
		return errors.New("count cannot be negative")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	err := Register(r, "mock_echo", func(ctx context.Context, p MockPayload) (any, error) {
		return p.Message, nil
	})
	require.NoError(t, err)
	assert.True(t, r.Has("mock_echo"))
	assert.Equal(t, 1, r.Len())

	t.Run("empty type rejected", func(t *testing.T) {
		t.Parallel()
		err := Register(r, "", func(ctx context.Context, p MockPayload) (any, error) { return nil, nil })
		assert.Error(t, err)
	})

	t.Run("nil handler rejected", func(t *testing.T) {
		t.Parallel()
		err := Register[MockPayload](r, "mock_nil", nil)
		assert.Error(t, err)
	})

	t.Run("duplicate type rejected", func(t *testing.T) {
		t.Parallel()
		err := Register(r, "mock_echo", func(ctx context.Context, p MockPayload) (any, error) { return nil, nil })
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestRegistry_Types(t *testing.T) {
	t.Parallel()

	r := NewMockRegistry("zebra", "alpha", "mango")
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, r.Types())
}

func TestRegistry_CheckPayload(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, Register(r, "mock_checked", func(ctx context.Context, p checkedPayload) (any, error) {
		return p.Count, nil
	}))

	t.Run("valid payload passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, r.CheckPayload("mock_checked", checkedPayload{Count: 3}))
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		err := r.CheckPayload("nope", checkedPayload{})
		assert.ErrorIs(t, err, ErrUnknownTaskType)
	})

	t.Run("wrong payload type", func(t *testing.T) {
		t.Parallel()
		err := r.CheckPayload("mock_checked", "a string is not a checkedPayload")
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("payload validation failure", func(t *testing.T) {
		t.Parallel()
		err := r.CheckPayload("mock_checked", checkedPayload{Count: -1})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.Contains(t, err.Error(), "negative")
	})
}

func TestRegistry_DecodePayload(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, Register(r, "mock_checked", func(ctx context.Context, p checkedPayload) (any, error) {
		return p.Count, nil
	}))

	t.Run("valid JSON decodes to registered type", func(t *testing.T) {
		t.Parallel()
		decoded, err := r.DecodePayload("mock_checked", json.RawMessage(`{"count": 7}`))
		require.NoError(t, err)
		payload, ok := decoded.(checkedPayload)
		require.True(t, ok)
		assert.Equal(t, 7, payload.Count)
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		t.Parallel()
		_, err := r.DecodePayload("mock_checked", json.RawMessage(`{"count": `))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		t.Parallel()
		_, err := r.DecodePayload("nope", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrUnknownTaskType)
	})
}
