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
	"fmt"

	"github.com/holiman/uint256"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// UnpackInputMessage decodes the inbound message and prepares the message
// balance. Inbound external messages pay their import fee from the account
// balance right away.
func (t *transaction) UnpackInputMessage(ihrDelivered bool, cfg *types.ActionPhaseConfig) (bool, error) {
	if t.inMsg == nil {
		return false, fmt.Errorf("transaction has no inbound message")
	}

	msg, err := block.LoadMessage(t.inMsg)
	if err != nil {
		return false, fmt.Errorf("cannot unpack input message for a new transaction: %w", err)
	}

	if msg.Info.Kind == block.ExternalOutMessage {
		return false, fmt.Errorf("outbound external message cannot start a transaction")
	}
	if msg.Info.Dest != t.address() {
		return false, fmt.Errorf("message destination %s differs from account %s", msg.Info.Dest, t.address())
	}

	if msg.Info.Kind == block.ExternalInMessage {
		if t.kind != types.TransactionOrdinary {
			return false, fmt.Errorf("inbound external message in a %s transaction", t.kind)
		}

		size := block.ComputeStorageUsed(t.inMsg, false)
		prices := cfg.FwdPrices(t.address().Workchain, t.address().Workchain)
		fee := prices.ComputeFwdFees(size.Cells, size.Bits)

		if !sub(t.balance.Grams, fee) {
			return false, fmt.Errorf("cannot pay %s nanotons for importing an external message", fee.Dec())
		}
		t.totalFees.Add(t.totalFees, fee)
		t.msgBalance.Clear()
		t.bounceEnabled = false

		t.logger.Debug().Str("fee", fee.Dec()).Msg("charged external message import fee")
	} else {
		t.bounceEnabled = msg.Info.Bounce
		t.msgBalance.Set(msg.Info.Value.Grams)
		if ihrDelivered && msg.Info.IHRFee != nil {
			t.msgBalance.Add(t.msgBalance, msg.Info.IHRFee)
		}
		t.msgExtra = msg.Info.Value.Extra
	}

	t.msg = msg
	return t.bounceEnabled, nil
}

// StoragePhase collects storage rent and any due payment, freezing or
// deleting the account when it cannot pay.
func (t *transaction) StoragePhase(cfg *types.StoragePhaseConfig, forceCollect, adjustMsgValue bool) (*types.StoragePhase, error) {
	if t.now < t.lastPaid {
		return nil, fmt.Errorf("current time %d precedes the last storage payment at %d", t.now, t.lastPaid)
	}

	toPay := t.account.ComputeStorageFees(t.now, cfg.Prices)
	toPay.Add(toPay, t.duePayment)

	res := &types.StoragePhase{
		FeesCollected: new(uint256.Int),
		FeesDue:       new(uint256.Int),
		StatusChange:  types.StatusUnchanged,
	}

	lastPaid := t.now
	if t.account.IsSpecial {
		lastPaid = 0
	}

	switch {
	case toPay.IsZero():
		t.duePayment.Clear()
	case !t.balance.Grams.Lt(toPay):
		res.FeesCollected.Set(toPay)
		t.balance.Grams.Sub(t.balance.Grams, toPay)
		t.duePayment.Clear()
	case t.status == block.StatusFrozen && !forceCollect && toPay.Lt(cfg.DeleteDueLimit):
		// nothing is collected and the payment period stays open
		lastPaid = t.lastPaid
	default:
		res.FeesCollected.Set(t.balance.Grams)
		res.FeesDue.Sub(toPay, t.balance.Grams)
		t.balance.Grams.Clear()
		t.duePayment.Set(res.FeesDue)

		if !t.account.IsSpecial {
			t.applyDebt(cfg, res)
		}
	}
	t.lastPaid = lastPaid

	if adjustMsgValue && t.msgBalance.Gt(t.balance.Grams) {
		t.msgBalance.Set(t.balance.Grams)
	}
	t.totalFees.Add(t.totalFees, res.FeesCollected)

	t.logger.Debug().
		Str("collected", res.FeesCollected.Dec()).
		Str("due", res.FeesDue.Dec()).
		Stringer("status_change", res.StatusChange).
		Msg("storage phase")
	return res, nil
}

func (t *transaction) applyDebt(cfg *types.StoragePhaseConfig, res *types.StoragePhase) {
	switch t.status {
	case block.StatusUninit, block.StatusFrozen:
		if res.FeesDue.Gt(cfg.DeleteDueLimit) && t.balance.Extra == nil {
			res.StatusChange = types.StatusDeleted
			t.status = block.StatusNonexist
			t.deleted = true
		}
	case block.StatusActive:
		if res.FeesDue.Gt(cfg.FreezeDueLimit) {
			res.StatusChange = types.StatusFrozen
			t.status = block.StatusFrozen
			if si, err := t.account.StateInit().ToCell(); err == nil {
				copy(t.frozenHash[:], si.Hash())
			}
		}
	}
}

// CreditPhase pays the due payment from the inbound value and credits the rest.
func (t *transaction) CreditPhase() (*types.CreditPhase, error) {
	collected := minInt(t.msgBalance, t.duePayment)
	t.msgBalance.Sub(t.msgBalance, collected)
	t.duePayment.Sub(t.duePayment, collected)
	t.totalFees.Add(t.totalFees, collected)

	credit := block.CurrencyCollection{
		Grams: new(uint256.Int).Set(t.msgBalance),
		Extra: t.msgExtra,
	}
	if err := t.balance.Add(credit); err != nil {
		return nil, fmt.Errorf("cannot credit inbound value: %w", err)
	}

	t.logger.Debug().
		Str("credit", credit.Grams.Dec()).
		Str("due_collected", collected.Dec()).
		Msg("credit phase")

	return &types.CreditPhase{
		DueFeesCollected: collected,
		Credit:           credit,
	}, nil
}
