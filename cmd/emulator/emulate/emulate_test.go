package emulate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/onflow/ton-emulator/emulator"
)

func TestFailureMessage(t *testing.T) {

	t.Parallel()

	t.Run("should name integrity mismatches", func(t *testing.T) {

		t.Parallel()

		err := errors.WithMessage(&emulator.IntegrityError{What: "transaction hash"}, "cannot emulate transaction #0")
		assert.Equal(t, "❗  Emulation failed: integrity error", failureMessage(err))
	})

	t.Run("should include the result code when there is one", func(t *testing.T) {

		t.Parallel()

		err := errors.WithMessage(&emulator.ConfigError{Msg: "missing param"}, "cannot fetch config params")
		assert.Equal(t, "❗  Emulation failed: config error (code -668)", failureMessage(err))
	})
}
