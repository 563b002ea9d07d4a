package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopySeed(t *testing.T) {
	orig := copyText
	defer func() { copyText = orig }()

	var got string
	copyText = func(s string) error { got = s; return nil }
	require.NoError(t, copySeed(-1234567890123))
	assert.Equal(t, "-1234567890123", got)

	copyText = func(string) error { return errors.New("no clipboard") }
	assert.Error(t, copySeed(1))
}
