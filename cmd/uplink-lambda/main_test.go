package main

import (
	"errors"
	"testing"

	log "github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

type countCloser struct {
	closed int
	err    error
}

func (c *countCloser) Close() error {
	c.closed++
	return c.err
}

func TestCloseAll(t *testing.T) {
	failing := &countCloser{err: errors.New("broker gone")}
	ok := &countCloser{}

	closeAll(log.NewNopLogger(), failing, ok)()

	require.Equal(t, 1, failing.closed)
	require.Equal(t, 1, ok.closed)

	require.NotPanics(t, closeAll(log.NewNopLogger()))
}
