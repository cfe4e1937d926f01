package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanoutCloserReverseOrder(t *testing.T) {
	var order []string

	closer := &FanoutCloser{}
	closer.Add("first", FuncCloser(func() error {
		order = append(order, "first")

		return nil
	}))
	closer.Add("second", FuncCloser(func() error {
		order = append(order, "second")

		return nil
	}))

	require.NoError(t, closer.Close())
	require.Equal(t, []string{"second", "first"}, order)

	require.NoError(t, closer.Close())
	require.Len(t, order, 2)
}

func TestFanoutCloserJoinErrors(t *testing.T) {
	errFirst := errors.New("first")
	called := false

	closer := &FanoutCloser{}
	closer.Add("failing", FuncCloser(func() error { return errFirst }))
	closer.Add("ok", FuncCloser(func() error {
		called = true

		return nil
	}))

	err := closer.Close()
	require.ErrorIs(t, err, errFirst)
	require.True(t, called)
}
