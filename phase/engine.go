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

// Package phase implements the transaction phases of the TON execution model:
// storage, credit, compute, action and bounce, followed by serialization of
// the transaction record and of the new account state.
package phase

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/vm"
)

//go:generate mockgen -destination=mocks/engine.go -package=mocks github.com/onflow/ton-emulator/phase Engine,Session

// Engine starts phase sessions for single transactions.
type Engine interface {
	Begin(acc *block.Account, kind types.TransactionKind, lt uint64, now uint32, inMsg *cell.Cell) (Session, error)
}

// Session runs the phases of one transaction against a tentative copy of the
// account state. Nothing is written to an account until Commit.
type Session interface {
	UnpackInputMessage(ihrDelivered bool, cfg *types.ActionPhaseConfig) (bounceEnabled bool, err error)
	StoragePhase(cfg *types.StoragePhaseConfig, forceCollect, adjustMsgValue bool) (*types.StoragePhase, error)
	CreditPhase() (*types.CreditPhase, error)
	ComputePhase(cfg *types.ComputePhaseConfig) (*types.ComputePhase, error)
	ActionPhase(cfg *types.ActionPhaseConfig) (*types.ActionPhase, error)
	BouncePhase(cfg *types.ActionPhaseConfig) (*types.BouncePhase, error)
	Serialize(tx *types.Transaction) (*cell.Cell, error)
	Commit(acc *block.Account) (*cell.Cell, error)
}

// Processor is the Engine backed by a contract execution engine.
type Processor struct {
	executor vm.Executor
	logger   zerolog.Logger
}

type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logger phase results are reported to.
func WithProcessorLogger(logger zerolog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

func NewProcessor(executor vm.Executor, opts ...ProcessorOption) *Processor {
	p := &Processor{
		executor: executor,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Begin(
	acc *block.Account,
	kind types.TransactionKind,
	lt uint64,
	now uint32,
	inMsg *cell.Cell,
) (Session, error) {
	if acc == nil {
		return nil, fmt.Errorf("cannot begin a transaction without an account")
	}
	if lt < acc.StorageLT {
		return nil, fmt.Errorf("transaction lt %d precedes the last transaction end lt %d of %s", lt, acc.StorageLT, acc.Address)
	}

	due := new(uint256.Int)
	if acc.DuePayment != nil {
		due.Set(acc.DuePayment)
	}

	t := &transaction{
		executor:   p.executor,
		logger:     p.logger.With().Str("account", acc.Address.String()).Uint64("lt", lt).Logger(),
		account:    acc,
		kind:       kind,
		startLT:    lt,
		endLT:      lt + 1,
		now:        now,
		inMsg:      inMsg,
		external:   block.IsExternalMessage(inMsg),
		origStatus: acc.Status,
		status:     acc.Status,
		balance:    acc.Balance.Copy(),
		msgBalance: new(uint256.Int),
		duePayment: due,
		lastPaid:   acc.LastPaid,
		totalFees:  new(uint256.Int),
		code:       acc.Code,
		data:       acc.Data,
		library:    acc.Library,
		splitDepth: acc.SplitDepth,
		special:    acc.Special,
		frozenHash: acc.FrozenHash,
	}
	return t, nil
}

// transaction holds the tentative state of an account while its phases run.
type transaction struct {
	executor vm.Executor
	logger   zerolog.Logger

	account *block.Account
	kind    types.TransactionKind
	startLT uint64
	endLT   uint64
	now     uint32

	inMsg         *cell.Cell
	msg           *block.Message
	external      bool
	bounceEnabled bool

	origStatus block.AccountStatus
	status     block.AccountStatus
	deleted    bool

	balance         block.CurrencyCollection
	originalBalance *uint256.Int
	msgBalance      *uint256.Int
	msgExtra        *cell.Cell
	duePayment      *uint256.Int
	lastPaid        uint32
	totalFees       *uint256.Int

	code       *cell.Cell
	data       *cell.Cell
	library    *cell.Cell
	splitDepth *uint8
	special    *block.TickTock
	frozenHash [32]byte

	compute *types.ComputePhase
	actions *cell.Cell
	outMsgs []*cell.Cell

	root     *cell.Cell
	newState *block.Account
}

func (t *transaction) address() block.Address {
	return t.account.Address
}

// sub subtracts v from dst, reporting false instead of wrapping around.
func sub(dst, v *uint256.Int) bool {
	if dst.Lt(v) {
		return false
	}
	dst.Sub(dst, v)
	return true
}

func minInt(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}
