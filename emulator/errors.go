/*
 * TON Emulator
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package emulator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/onflow/ton-emulator/block"
)

// Result codes reported by the transaction engine.
const (
	CodeConfig   = -668
	CodePhase    = -669
	CodeRejected = -701
)

// CodedError is implemented by errors that carry a result code.
type CodedError interface {
	error
	Code() int
}

// DecodeError indicates that an input cell could not be decoded.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot unpack %s: %s", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConfigError indicates that the chain configuration lacks a parameter the
// transaction needs, or that the parameter cannot be unpacked.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Code() int {
	return CodeConfig
}

// MessageRejectedError indicates that an account refused an inbound external message.
type MessageRejectedError struct {
	Address block.Address
	Msg     string
	Err     error
}

func (e *MessageRejectedError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e *MessageRejectedError) Unwrap() error {
	return e.Err
}

func (e *MessageRejectedError) Code() int {
	return CodeRejected
}

// PhaseError indicates that a transaction phase could not be completed.
type PhaseError struct {
	Address block.Address
	Msg     string
	Err     error
}

func (e *PhaseError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func (e *PhaseError) Code() int {
	return CodePhase
}

// SerializationError indicates that a finished transaction could not be serialized.
type SerializationError struct {
	Address block.Address
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize new transaction for smart contract %s: %s", e.Address, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

func (e *SerializationError) Code() int {
	return CodePhase
}

// IntegrityError indicates that an emulated transaction diverged from the
// transaction it was expected to reproduce.
type IntegrityError struct {
	What     string
	Expected []byte
	Actual   []byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s mismatch", e.What)
}

// ErrorCode returns the result code carried by err, or 0 if there is none.
func ErrorCode(err error) int {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return 0
}

// ErrorKind names the class of err as used in failure metrics and reports.
func ErrorKind(err error) string {
	var (
		decodeErr    *DecodeError
		configErr    *ConfigError
		rejectedErr  *MessageRejectedError
		phaseErr     *PhaseError
		serializeErr *SerializationError
		integrityErr *IntegrityError
	)
	switch {
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &rejectedErr):
		return "rejected"
	case errors.As(err, &phaseErr):
		return "phase"
	case errors.As(err, &serializeErr):
		return "serialization"
	case errors.As(err, &integrityErr):
		return "integrity"
	default:
		return "other"
	}
}

func newPhaseError(addr block.Address, phase string, err error) *PhaseError {
	return &PhaseError{
		Address: addr,
		Msg:     fmt.Sprintf("cannot create %s phase of a new transaction for smart contract %s", phase, addr),
		Err:     err,
	}
}
