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

	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// Serialize builds the transaction cell and the tentative new account state.
// The account passed to Begin is left untouched.
func (t *transaction) Serialize(tx *types.Transaction) (*cell.Cell, error) {
	descr, err := tx.Describe(t.deleted).ToCell()
	if err != nil {
		return nil, fmt.Errorf("cannot serialize transaction description: %w", err)
	}

	oldState := t.account.TotalState
	if oldState == nil {
		if oldState, err = t.account.Copy().BuildState(); err != nil {
			return nil, fmt.Errorf("cannot serialize original account state: %w", err)
		}
	}

	acc := t.account.Copy()
	acc.Status = t.status
	acc.Balance = t.balance.Copy()
	acc.DuePayment = t.duePayment
	acc.LastPaid = t.lastPaid
	acc.Code, acc.Data, acc.Library = t.code, t.data, t.library
	acc.SplitDepth, acc.Special = t.splitDepth, t.special
	acc.FrozenHash = t.frozenHash
	acc.StorageLT = t.endLT
	acc.Now = t.now
	if acc.Status == block.StatusNonexist && !acc.Balance.Grams.IsZero() {
		acc.Status = block.StatusUninit
	}

	state, err := acc.BuildState()
	if err != nil {
		return nil, fmt.Errorf("cannot serialize new account state: %w", err)
	}
	acc.TotalState = state

	var update block.HashUpdate
	copy(update.OldHash[:], oldState.Hash())
	copy(update.NewHash[:], state.Hash())

	rec := &block.TransactionRecord{
		AccountAddr: t.address().Data,
		LT:          t.startLT,
		PrevTxHash:  t.account.LastTransHash,
		PrevTxLT:    t.account.LastTransLT,
		Now:         t.now,
		OrigStatus:  t.origStatus,
		EndStatus:   acc.Status,
		InMsg:       t.inMsg,
		OutMsgs:     t.outMsgs,
		TotalFees:   block.CurrencyCollection{Grams: t.totalFees},
		StateUpdate: update.ToCell(),
		Description: descr,
	}
	root, err := rec.ToCell()
	if err != nil {
		return nil, err
	}

	t.root = root
	t.newState = acc
	tx.Root = root
	return root, nil
}

// Commit stores the new account state into acc and returns the transaction cell.
func (t *transaction) Commit(acc *block.Account) (*cell.Cell, error) {
	if t.root == nil || t.newState == nil {
		return nil, fmt.Errorf("transaction of %s has not been serialized", t.address())
	}
	if acc == nil {
		return nil, fmt.Errorf("cannot commit into a nil account")
	}

	*acc = *t.newState
	acc.LastTransLT = t.startLT
	copy(acc.LastTransHash[:], t.root.Hash())
	return t.root, nil
}
