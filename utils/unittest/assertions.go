package unittest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode checks that err carries the given result code somewhere in
// its chain.
func AssertErrorCode(t *testing.T, expected int, err error) bool {
	require.Error(t, err)

	var coded interface{ Code() int }
	if !assert.True(t, errors.As(err, &coded), "error carries no result code: %s", err) {
		return false
	}

	if !assert.Equal(t, expected, coded.Code()) {
		t.Log(err.Error())
		return false
	}

	return true
}
