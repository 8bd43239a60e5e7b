package emulator_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/onflow/ton-emulator/emulator"
)

func TestErrorKind(t *testing.T) {

	t.Parallel()

	t.Run("should name wrapped errors by their class", func(t *testing.T) {

		t.Parallel()

		cases := map[string]error{
			"decode":        &emulator.DecodeError{What: "transaction", Err: fmt.Errorf("bad tag")},
			"config":        &emulator.ConfigError{Msg: "missing param"},
			"rejected":      &emulator.MessageRejectedError{Msg: "rejected"},
			"phase":         &emulator.PhaseError{Msg: "cannot commit"},
			"serialization": &emulator.SerializationError{Err: fmt.Errorf("overflow")},
			"integrity":     &emulator.IntegrityError{What: "transaction hash"},
			"other":         fmt.Errorf("boom"),
		}
		for kind, err := range cases {
			wrapped := errors.WithMessage(err, "cannot emulate transaction #0")
			assert.Equal(t, kind, emulator.ErrorKind(wrapped))
		}
	})

	t.Run("should report integrity mismatches without a result code", func(t *testing.T) {

		t.Parallel()

		err := errors.WithMessage(&emulator.IntegrityError{What: "account hash"}, "cannot emulate transaction #1")
		assert.Equal(t, 0, emulator.ErrorCode(err))
		assert.Equal(t, "integrity", emulator.ErrorKind(err))
	})
}
