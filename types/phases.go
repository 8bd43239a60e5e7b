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

package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
)

type AccStatusChange uint8

const (
	StatusUnchanged AccStatusChange = iota
	StatusFrozen
	StatusDeleted
)

func (c AccStatusChange) String() string {
	switch c {
	case StatusUnchanged:
		return "unchanged"
	case StatusFrozen:
		return "frozen"
	case StatusDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("AccStatusChange(%d)", uint8(c))
	}
}

func loadStatusChange(s *cell.Slice) (AccStatusChange, error) {
	changed, err := s.LoadBoolBit()
	if err != nil || !changed {
		return StatusUnchanged, err
	}
	deleted, err := s.LoadBoolBit()
	if err != nil {
		return StatusUnchanged, err
	}
	if deleted {
		return StatusDeleted, nil
	}
	return StatusFrozen, nil
}

func storeStatusChange(b *cell.Builder, c AccStatusChange) error {
	switch c {
	case StatusUnchanged:
		return b.StoreUInt(0b0, 1)
	case StatusFrozen:
		return b.StoreUInt(0b10, 2)
	case StatusDeleted:
		return b.StoreUInt(0b11, 2)
	default:
		return fmt.Errorf("unknown status change %s", c)
	}
}

// StoragePhase is the result of collecting storage rent.
type StoragePhase struct {
	FeesCollected *uint256.Int
	FeesDue       *uint256.Int
	StatusChange  AccStatusChange
}

func LoadStoragePhase(s *cell.Slice) (*StoragePhase, error) {
	var (
		p   StoragePhase
		err error
	)
	if p.FeesCollected, err = block.LoadGrams(s); err != nil {
		return nil, err
	}
	if p.FeesDue, err = block.LoadMaybeGrams(s); err != nil {
		return nil, err
	}
	if p.StatusChange, err = loadStatusChange(s); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *StoragePhase) Store(b *cell.Builder) error {
	if err := block.StoreGrams(b, p.FeesCollected); err != nil {
		return err
	}
	if err := block.StoreMaybeGrams(b, p.FeesDue); err != nil {
		return err
	}
	return storeStatusChange(b, p.StatusChange)
}

// CreditPhase is the result of crediting the inbound message value.
type CreditPhase struct {
	DueFeesCollected *uint256.Int
	Credit           block.CurrencyCollection
}

func LoadCreditPhase(s *cell.Slice) (*CreditPhase, error) {
	var (
		p   CreditPhase
		err error
	)
	if p.DueFeesCollected, err = block.LoadMaybeGrams(s); err != nil {
		return nil, err
	}
	if p.Credit, err = block.LoadCurrencyCollection(s); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *CreditPhase) Store(b *cell.Builder) error {
	if err := block.StoreMaybeGrams(b, p.DueFeesCollected); err != nil {
		return err
	}
	return block.StoreCurrencyCollection(b, p.Credit)
}

type ComputeSkipReason uint8

const (
	SkipNone ComputeSkipReason = iota
	SkipNoState
	SkipBadState
	SkipNoGas
	SkipSuspended
)

func (r ComputeSkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipNoState:
		return "no_state"
	case SkipBadState:
		return "bad_state"
	case SkipNoGas:
		return "no_gas"
	case SkipSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("ComputeSkipReason(%d)", uint8(r))
	}
}

// ComputePhase is the result of running contract code. A phase with a skip
// reason other than SkipNone carries no execution details.
type ComputePhase struct {
	SkipReason       ComputeSkipReason
	Success          bool
	MsgStateUsed     bool
	AccountActivated bool
	// Accepted is not serialized; it records whether the contract agreed to pay for execution.
	Accepted         bool
	GasFees          *uint256.Int
	GasUsed          uint64
	GasLimit         uint64
	GasCredit        uint64
	Mode             int8
	ExitCode         int32
	ExitArg          *int32
	VMSteps          uint32
	VMInitStateHash  [32]byte
	VMFinalStateHash [32]byte
}

func (p *ComputePhase) Skipped() bool {
	return p.SkipReason != SkipNone
}

func LoadComputePhase(s *cell.Slice) (*ComputePhase, error) {
	vm, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}

	if !vm {
		reason, err := loadSkipReason(s)
		if err != nil {
			return nil, err
		}
		return &ComputePhase{SkipReason: reason, GasFees: new(uint256.Int)}, nil
	}

	p := &ComputePhase{Accepted: true}
	for _, f := range []*bool{&p.Success, &p.MsgStateUsed, &p.AccountActivated} {
		if *f, err = s.LoadBoolBit(); err != nil {
			return nil, err
		}
	}
	if p.GasFees, err = block.LoadGrams(s); err != nil {
		return nil, err
	}

	d, err := s.LoadRef()
	if err != nil {
		return nil, err
	}
	if p.GasUsed, err = block.LoadVarUInt(d, 7); err != nil {
		return nil, err
	}
	if p.GasLimit, err = block.LoadVarUInt(d, 7); err != nil {
		return nil, err
	}

	hasCredit, err := d.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if hasCredit {
		if p.GasCredit, err = block.LoadVarUInt(d, 3); err != nil {
			return nil, err
		}
	}

	mode, err := d.LoadInt(8)
	if err != nil {
		return nil, err
	}
	p.Mode = int8(mode)

	code, err := d.LoadInt(32)
	if err != nil {
		return nil, err
	}
	p.ExitCode = int32(code)

	if p.ExitArg, err = loadMaybeInt32(d); err != nil {
		return nil, err
	}

	steps, err := d.LoadUInt(32)
	if err != nil {
		return nil, err
	}
	p.VMSteps = uint32(steps)

	for _, h := range []*[32]byte{&p.VMInitStateHash, &p.VMFinalStateHash} {
		data, err := d.LoadSlice(256)
		if err != nil {
			return nil, err
		}
		copy(h[:], data)
	}
	return p, nil
}

func loadSkipReason(s *cell.Slice) (ComputeSkipReason, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return SkipNone, err
	}
	switch tag {
	case 0b00:
		return SkipNoState, nil
	case 0b01:
		return SkipBadState, nil
	case 0b10:
		return SkipNoGas, nil
	}

	last, err := s.LoadBoolBit()
	if err != nil {
		return SkipNone, err
	}
	if last {
		return SkipNone, fmt.Errorf("%w: compute skip reason 111", block.ErrUnsupportedPrefix)
	}
	return SkipSuspended, nil
}

func (p *ComputePhase) Store(b *cell.Builder) error {
	switch p.SkipReason {
	case SkipNone:
	case SkipNoState:
		return b.StoreUInt(0b0_00, 3)
	case SkipBadState:
		return b.StoreUInt(0b0_01, 3)
	case SkipNoGas:
		return b.StoreUInt(0b0_10, 3)
	case SkipSuspended:
		return b.StoreUInt(0b0_110, 4)
	default:
		return fmt.Errorf("unknown skip reason %s", p.SkipReason)
	}

	for _, f := range []bool{true, p.Success, p.MsgStateUsed, p.AccountActivated} {
		if err := b.StoreBoolBit(f); err != nil {
			return err
		}
	}
	if err := block.StoreGrams(b, p.GasFees); err != nil {
		return err
	}

	d := cell.BeginCell()
	if err := block.StoreVarUInt(d, 7, p.GasUsed); err != nil {
		return err
	}
	if err := block.StoreVarUInt(d, 7, p.GasLimit); err != nil {
		return err
	}
	if p.GasCredit == 0 {
		if err := d.StoreBoolBit(false); err != nil {
			return err
		}
	} else {
		if err := d.StoreBoolBit(true); err != nil {
			return err
		}
		if err := block.StoreVarUInt(d, 3, p.GasCredit); err != nil {
			return err
		}
	}
	if err := d.StoreInt(int64(p.Mode), 8); err != nil {
		return err
	}
	if err := d.StoreInt(int64(p.ExitCode), 32); err != nil {
		return err
	}
	if err := storeMaybeInt32(d, p.ExitArg); err != nil {
		return err
	}
	if err := d.StoreUInt(uint64(p.VMSteps), 32); err != nil {
		return err
	}
	if err := d.StoreSlice(p.VMInitStateHash[:], 256); err != nil {
		return err
	}
	if err := d.StoreSlice(p.VMFinalStateHash[:], 256); err != nil {
		return err
	}
	return b.StoreRef(d.EndCell())
}

// ActionPhase is the result of processing the output action list.
type ActionPhase struct {
	Success         bool
	Valid           bool
	NoFunds         bool
	StatusChange    AccStatusChange
	TotalFwdFees    *uint256.Int
	TotalActionFees *uint256.Int
	ResultCode      int32
	ResultArg       *int32
	TotActions      uint16
	SpecActions     uint16
	SkippedActions  uint16
	MsgsCreated     uint16
	ActionListHash  [32]byte
	TotMsgSize      block.StorageUsed
}

func LoadActionPhase(s *cell.Slice) (*ActionPhase, error) {
	var (
		p   ActionPhase
		err error
	)
	for _, f := range []*bool{&p.Success, &p.Valid, &p.NoFunds} {
		if *f, err = s.LoadBoolBit(); err != nil {
			return nil, err
		}
	}
	if p.StatusChange, err = loadStatusChange(s); err != nil {
		return nil, err
	}
	if p.TotalFwdFees, err = block.LoadMaybeGrams(s); err != nil {
		return nil, err
	}
	if p.TotalActionFees, err = block.LoadMaybeGrams(s); err != nil {
		return nil, err
	}

	code, err := s.LoadInt(32)
	if err != nil {
		return nil, err
	}
	p.ResultCode = int32(code)

	if p.ResultArg, err = loadMaybeInt32(s); err != nil {
		return nil, err
	}

	for _, f := range []*uint16{&p.TotActions, &p.SpecActions, &p.SkippedActions, &p.MsgsCreated} {
		v, err := s.LoadUInt(16)
		if err != nil {
			return nil, err
		}
		*f = uint16(v)
	}

	hash, err := s.LoadSlice(256)
	if err != nil {
		return nil, err
	}
	copy(p.ActionListHash[:], hash)

	if p.TotMsgSize, err = block.LoadStorageUsedShort(s); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *ActionPhase) Store(b *cell.Builder) error {
	for _, f := range []bool{p.Success, p.Valid, p.NoFunds} {
		if err := b.StoreBoolBit(f); err != nil {
			return err
		}
	}
	if err := storeStatusChange(b, p.StatusChange); err != nil {
		return err
	}
	if err := block.StoreMaybeGrams(b, p.TotalFwdFees); err != nil {
		return err
	}
	if err := block.StoreMaybeGrams(b, p.TotalActionFees); err != nil {
		return err
	}
	if err := b.StoreInt(int64(p.ResultCode), 32); err != nil {
		return err
	}
	if err := storeMaybeInt32(b, p.ResultArg); err != nil {
		return err
	}
	for _, v := range []uint16{p.TotActions, p.SpecActions, p.SkippedActions, p.MsgsCreated} {
		if err := b.StoreUInt(uint64(v), 16); err != nil {
			return err
		}
	}
	if err := b.StoreSlice(p.ActionListHash[:], 256); err != nil {
		return err
	}
	return block.StoreStorageUsedShort(b, p.TotMsgSize)
}

type BounceKind uint8

const (
	BounceNegFunds BounceKind = iota
	BounceNoFunds
	BounceOk
)

func (k BounceKind) String() string {
	switch k {
	case BounceNegFunds:
		return "negfunds"
	case BounceNoFunds:
		return "nofunds"
	case BounceOk:
		return "ok"
	default:
		return fmt.Sprintf("BounceKind(%d)", uint8(k))
	}
}

// BouncePhase is the result of returning the inbound value to its sender.
type BouncePhase struct {
	Kind       BounceKind
	MsgSize    block.StorageUsed
	ReqFwdFees *uint256.Int
	MsgFees    *uint256.Int
	FwdFees    *uint256.Int
}

func LoadBouncePhase(s *cell.Slice) (*BouncePhase, error) {
	ok, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}

	if !ok {
		nofunds, err := s.LoadBoolBit()
		if err != nil {
			return nil, err
		}
		if !nofunds {
			return &BouncePhase{Kind: BounceNegFunds}, nil
		}

		p := &BouncePhase{Kind: BounceNoFunds}
		if p.MsgSize, err = block.LoadStorageUsedShort(s); err != nil {
			return nil, err
		}
		if p.ReqFwdFees, err = block.LoadGrams(s); err != nil {
			return nil, err
		}
		return p, nil
	}

	p := &BouncePhase{Kind: BounceOk}
	if p.MsgSize, err = block.LoadStorageUsedShort(s); err != nil {
		return nil, err
	}
	if p.MsgFees, err = block.LoadGrams(s); err != nil {
		return nil, err
	}
	if p.FwdFees, err = block.LoadGrams(s); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *BouncePhase) Store(b *cell.Builder) error {
	switch p.Kind {
	case BounceNegFunds:
		return b.StoreUInt(0b00, 2)
	case BounceNoFunds:
		if err := b.StoreUInt(0b01, 2); err != nil {
			return err
		}
		if err := block.StoreStorageUsedShort(b, p.MsgSize); err != nil {
			return err
		}
		return block.StoreGrams(b, p.ReqFwdFees)
	case BounceOk:
		if err := b.StoreBoolBit(true); err != nil {
			return err
		}
		if err := block.StoreStorageUsedShort(b, p.MsgSize); err != nil {
			return err
		}
		if err := block.StoreGrams(b, p.MsgFees); err != nil {
			return err
		}
		return block.StoreGrams(b, p.FwdFees)
	default:
		return fmt.Errorf("unknown bounce phase %s", p.Kind)
	}
}

func loadMaybeInt32(s *cell.Slice) (*int32, error) {
	has, err := s.LoadBoolBit()
	if err != nil || !has {
		return nil, err
	}
	v, err := s.LoadInt(32)
	if err != nil {
		return nil, err
	}
	res := int32(v)
	return &res, nil
}

func storeMaybeInt32(b *cell.Builder, v *int32) error {
	if v == nil {
		return b.StoreBoolBit(false)
	}
	if err := b.StoreBoolBit(true); err != nil {
		return err
	}
	return b.StoreInt(int64(*v), 32)
}
