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

// Package vm defines the execution engine seam used by the compute phase.
package vm

import (
	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// Selectors passed to contract code in place of a method id.
const (
	SelectorInternal int32 = 0
	SelectorExternal int32 = -1
	SelectorTickTock int32 = -2
)

// Request describes one contract execution.
type Request struct {
	Address   block.Address
	Code      *cell.Cell
	Data      *cell.Cell
	Libraries *cell.Cell

	Balance  *uint256.Int
	MsgValue *uint256.Int
	InMsg    *cell.Cell
	Body     *cell.Cell
	Selector int32
	IsTock   bool

	GasLimit  uint64
	GasMax    uint64
	GasCredit uint64

	Now          uint32
	LT           uint64
	Seed         types.Seed
	GlobalConfig *cell.Cell
	MaxDataDepth uint16
}

// Result is what the execution engine reports back.
type Result struct {
	ExitCode int32
	ExitArg  *int32
	// Accepted is set once the contract agreed to pay for its own gas.
	Accepted  bool
	Committed bool
	GasUsed   uint64
	Steps     uint32
	Mode      int8

	NewData *cell.Cell
	Actions *cell.Cell

	InitStateHash  [32]byte
	FinalStateHash [32]byte
}

// Success reports whether execution ended with a successful exit code and committed its state.
func (r *Result) Success() bool {
	return r.Committed && (r.ExitCode == 0 || r.ExitCode == 1)
}

// Executor runs contract code.
type Executor interface {
	Execute(req *Request) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(req *Request) (*Result, error)

func (f ExecutorFunc) Execute(req *Request) (*Result, error) {
	return f(req)
}

// EmptyActions is the empty output action list.
func EmptyActions() *cell.Cell {
	return cell.BeginCell().EndCell()
}
