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

package phase

import (
	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

const (
	actionSendMsg       = 0x0ec3c86d
	actionSetCode       = 0xad4de08e
	actionReserve       = 0x36e6b809
	actionChangeLibrary = 0x26fa1dd4

	maxActions = 255
)

// Action phase result codes.
const (
	resultInvalidList     int32 = 32
	resultTooManyActions  int32 = 33
	resultInvalidAction   int32 = 34
	resultBadDestination  int32 = 36
	resultNotEnoughFunds  int32 = 37
	resultNotEnoughExtra  int32 = 38
	resultCannotPayForFwd int32 = 40
)

// Send message modes.
const (
	sendPayFeesSeparately = 1
	sendIgnoreErrors      = 2
	sendDestroyIfZero     = 32
	sendCarryInbound      = 64
	sendCarryAll          = 128
)

// Reserve modes.
const (
	reserveAllBut      = 1
	reserveAtMost      = 2
	reserveAddOriginal = 4
	reserveNegate      = 8
)

type outAction struct {
	tag  uint32
	mode uint8
	ref  *cell.Cell
	// value is set for reserve actions only.
	value block.CurrencyCollection
}

// actionState accumulates the effects of the action list. It is only applied
// to the transaction when every action succeeds.
type actionState struct {
	remaining    *uint256.Int
	reserved     *uint256.Int
	endLT        uint64
	outMsgs      []*cell.Cell
	newCode      *cell.Cell
	deleteOnZero bool
}

// ActionPhase performs the actions the contract left in its output action list.
func (t *transaction) ActionPhase(cfg *types.ActionPhaseConfig) (*types.ActionPhase, error) {
	list := t.actions
	if list == nil {
		list = cell.BeginCell().EndCell()
	}

	ap := &types.ActionPhase{
		Valid:           true,
		TotalFwdFees:    new(uint256.Int),
		TotalActionFees: new(uint256.Int),
		StatusChange:    types.StatusUnchanged,
	}
	copy(ap.ActionListHash[:], list.Hash())

	actions, code := parseActionList(list)
	if code != 0 {
		return t.failActions(ap, code, -1), nil
	}
	ap.TotActions = uint16(len(actions))

	st := &actionState{
		remaining: new(uint256.Int).Set(t.balance.Grams),
		reserved:  new(uint256.Int),
		endLT:     t.endLT,
	}

	for i, act := range actions {
		switch act.tag {
		case actionSendMsg:
			code = t.sendMessage(st, ap, act, cfg)
			if code != 0 && act.mode&sendIgnoreErrors != 0 {
				ap.SkippedActions++
				code = 0
			}
		case actionSetCode:
			st.newCode = act.ref
			ap.SpecActions++
		case actionReserve:
			code = t.reserveCurrency(st, act)
		default:
			code = resultInvalidAction
		}
		if code != 0 {
			return t.failActions(ap, code, i), nil
		}
	}

	t.balance.Grams = new(uint256.Int).Add(st.remaining, st.reserved)
	t.outMsgs = append(t.outMsgs, st.outMsgs...)
	t.endLT = st.endLT
	if st.newCode != nil {
		t.code = st.newCode
	}
	t.totalFees.Add(t.totalFees, ap.TotalActionFees)

	if st.deleteOnZero && t.balance.Grams.IsZero() && t.balance.Extra == nil {
		ap.StatusChange = types.StatusDeleted
		t.status = block.StatusNonexist
		t.deleted = true
	}
	ap.Success = true

	t.logger.Debug().
		Uint16("actions", ap.TotActions).
		Uint16("messages", ap.MsgsCreated).
		Str("action_fees", ap.TotalActionFees.Dec()).
		Msg("action phase")
	return ap, nil
}

func (t *transaction) failActions(ap *types.ActionPhase, code int32, idx int) *types.ActionPhase {
	ap.ResultCode = code
	if idx >= 0 {
		arg := int32(idx)
		ap.ResultArg = &arg
	}
	switch code {
	case resultInvalidList, resultTooManyActions, resultInvalidAction:
		ap.Valid = false
	case resultNotEnoughFunds, resultNotEnoughExtra, resultCannotPayForFwd:
		ap.NoFunds = true
	}
	ap.TotalFwdFees.Clear()
	ap.TotalActionFees.Clear()

	t.logger.Debug().Int32("result_code", code).Int("action", idx).Msg("action phase failed")
	return ap
}

// parseActionList walks the output action list from its newest entry and
// returns the actions in the order they were issued.
func parseActionList(root *cell.Cell) ([]outAction, int32) {
	var raw []*cell.Slice
	for c := root; c.BitsSize() > 0 || c.RefsNum() > 0; {
		if len(raw) == maxActions {
			return nil, resultTooManyActions
		}
		s := c.BeginParse()
		prev, err := s.LoadRefCell()
		if err != nil {
			return nil, resultInvalidList
		}
		raw = append(raw, s)
		c = prev
	}

	actions := make([]outAction, len(raw))
	for i := range raw {
		act, ok := parseAction(raw[len(raw)-1-i])
		if !ok {
			return nil, resultInvalidAction
		}
		actions[i] = act
	}
	return actions, 0
}

func parseAction(s *cell.Slice) (outAction, bool) {
	var act outAction

	tag, err := s.LoadUInt(32)
	if err != nil {
		return act, false
	}
	act.tag = uint32(tag)

	switch act.tag {
	case actionSendMsg, actionReserve:
		mode, err := s.LoadUInt(8)
		if err != nil {
			return act, false
		}
		act.mode = uint8(mode)
		if act.tag == actionSendMsg {
			act.ref, err = s.LoadRefCell()
		} else {
			act.value, err = block.LoadCurrencyCollection(s)
		}
		if err != nil {
			return act, false
		}
	case actionSetCode:
		if act.ref, err = s.LoadRefCell(); err != nil {
			return act, false
		}
	case actionChangeLibrary:
		// library changes are not supported
		return act, false
	default:
		return act, false
	}

	return act, s.BitsLeft() == 0 && s.RefsNum() == 0
}

func (t *transaction) sendMessage(st *actionState, ap *types.ActionPhase, act outAction, cfg *types.ActionPhaseConfig) int32 {
	mode := act.mode
	if mode&^(sendPayFeesSeparately|sendIgnoreErrors|sendDestroyIfZero|sendCarryInbound|sendCarryAll) != 0 ||
		mode&(sendCarryInbound|sendCarryAll) == sendCarryInbound|sendCarryAll {
		return resultInvalidAction
	}

	msg, err := block.LoadMessage(act.ref)
	if err != nil {
		return resultInvalidAction
	}

	addr := t.address()
	size := block.ComputeStorageUsed(act.ref, false)

	if msg.Info.Kind == block.ExternalOutMessage {
		fwd := cfg.FwdPrices(addr.Workchain, addr.Workchain).ComputeFwdFees(size.Cells, size.Bits)
		if st.remaining.Lt(fwd) {
			return resultNotEnoughFunds
		}

		msg.Info.Src = &addr
		msg.Info.CreatedLT = st.endLT
		msg.Info.CreatedAt = t.now
		out, err := msg.ToCell()
		if err != nil {
			return resultInvalidAction
		}

		st.remaining.Sub(st.remaining, fwd)
		st.endLT++
		st.outMsgs = append(st.outMsgs, out)
		ap.TotalFwdFees.Add(ap.TotalFwdFees, fwd)
		ap.TotalActionFees.Add(ap.TotalActionFees, fwd)
		ap.MsgsCreated++
		addMsgSize(ap, out)
		return 0
	}

	if msg.Info.Kind != block.InternalMessage {
		return resultInvalidAction
	}
	if !cfg.Workchains.AcceptsMessages(msg.Info.Dest.Workchain) {
		return resultBadDestination
	}
	if msg.Info.Value.Extra != nil {
		return resultNotEnoughExtra
	}

	prices := cfg.FwdPrices(addr.Workchain, msg.Info.Dest.Workchain)
	fwd := prices.ComputeFwdFees(size.Cells, size.Bits)
	ihr := new(uint256.Int)
	if !msg.Info.IHRDisabled {
		ihr = prices.IhrFee(fwd)
	}
	fees := new(uint256.Int).Add(fwd, ihr)

	value := new(uint256.Int).Set(msg.Info.Value.Grams)
	switch {
	case mode&sendCarryAll != 0:
		value.Set(st.remaining)
		mode &^= sendPayFeesSeparately
	case mode&sendCarryInbound != 0:
		value.Add(value, t.msgBalance)
		if mode&sendPayFeesSeparately == 0 && t.compute != nil && t.compute.GasFees != nil {
			if !sub(value, t.compute.GasFees) {
				return resultNotEnoughFunds
			}
		}
	}

	required := new(uint256.Int).Set(value)
	if mode&sendPayFeesSeparately != 0 {
		required.Add(required, fees)
	} else if !sub(value, fees) {
		return resultCannotPayForFwd
	}
	if st.remaining.Lt(required) {
		return resultNotEnoughFunds
	}

	first := prices.FirstPart(fwd)
	msg.Info.Src = &addr
	msg.Info.Value.Grams = value
	msg.Info.IHRFee = ihr
	msg.Info.FwdFee = new(uint256.Int).Sub(fwd, first)
	msg.Info.CreatedLT = st.endLT
	msg.Info.CreatedAt = t.now
	out, err := msg.ToCell()
	if err != nil {
		return resultInvalidAction
	}

	st.remaining.Sub(st.remaining, required)
	st.endLT++
	st.outMsgs = append(st.outMsgs, out)
	if mode&sendCarryAll != 0 && mode&sendDestroyIfZero != 0 {
		st.deleteOnZero = true
	}
	ap.TotalFwdFees.Add(ap.TotalFwdFees, fees)
	ap.TotalActionFees.Add(ap.TotalActionFees, first)
	ap.MsgsCreated++
	addMsgSize(ap, out)
	return 0
}

func addMsgSize(ap *types.ActionPhase, msg *cell.Cell) {
	used := block.ComputeStorageUsed(msg, true)
	ap.TotMsgSize.Cells += used.Cells
	ap.TotMsgSize.Bits += used.Bits
}

func (t *transaction) reserveCurrency(st *actionState, act outAction) int32 {
	mode := act.mode
	if mode&^(reserveAllBut|reserveAtMost|reserveAddOriginal|reserveNegate) != 0 {
		return resultInvalidAction
	}

	amount := new(uint256.Int)
	if act.value.Grams != nil {
		amount.Set(act.value.Grams)
	}
	original := t.originalBalance
	if original == nil {
		original = t.balance.Grams
	}
	switch {
	case mode&reserveAddOriginal == 0:
		if mode&reserveNegate != 0 {
			return resultInvalidAction
		}
	case mode&reserveNegate != 0:
		if amount.Gt(original) {
			return resultInvalidAction
		}
		amount.Sub(original, amount)
	default:
		amount.Add(amount, original)
	}

	if mode&reserveAtMost != 0 && st.remaining.Lt(amount) {
		amount.Set(st.remaining)
	}
	if st.remaining.Lt(amount) {
		return resultNotEnoughFunds
	}
	if mode&reserveAllBut != 0 {
		amount.Sub(st.remaining, amount)
	}

	st.remaining.Sub(st.remaining, amount)
	st.reserved.Add(st.reserved, amount)
	return 0
}
