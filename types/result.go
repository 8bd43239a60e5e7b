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

	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
)

// Transaction is a transaction being built. Phase results are appended in
// the order the phases run; Root is set once it has been serialized.
type Transaction struct {
	Kind          TransactionKind
	LT            uint64
	Now           uint32
	InMsg         *cell.Cell
	External      bool
	BounceEnabled bool

	Storage *StoragePhase
	Credit  *CreditPhase
	Compute *ComputePhase
	Action  *ActionPhase
	Bounce  *BouncePhase

	Root *cell.Cell
}

func NewTransaction(kind TransactionKind, lt uint64, now uint32, inMsg *cell.Cell) *Transaction {
	return &Transaction{
		Kind:     kind,
		LT:       lt,
		Now:      now,
		InMsg:    inMsg,
		External: block.IsExternalMessage(inMsg),
	}
}

// Aborted reports whether the transaction failed to complete its compute or action phase.
func (t *Transaction) Aborted() bool {
	return t.Compute == nil || !t.Compute.Success || t.Action == nil || !t.Action.Success
}

// Describe assembles the description record of the transaction.
func (t *Transaction) Describe(destroyed bool) *TransactionDescr {
	d := &TransactionDescr{
		Kind:      t.Kind,
		Storage:   t.Storage,
		Compute:   t.Compute,
		Action:    t.Action,
		Aborted:   t.Aborted(),
		Destroyed: destroyed,
	}
	if t.Kind == TransactionOrdinary {
		d.CreditFirst = !t.BounceEnabled
		d.Credit = t.Credit
		d.Bounce = t.Bounce
	}
	return d
}

// An EmulationResult is the outcome of emulating a single transaction.
type EmulationResult struct {
	Transaction *cell.Cell
	Account     *block.Account
}

// Hash returns the hash of the produced transaction.
func (r *EmulationResult) Hash() string {
	return fmt.Sprintf("%x", r.Transaction.Hash())
}

// An EmulationResults is the outcome of emulating a list of transactions
// against the same account, in order.
type EmulationResults struct {
	Transactions []*cell.Cell
	Account      *block.Account
}

// Last returns the result of the final emulated transaction, or nil for an empty batch.
func (r *EmulationResults) Last() *EmulationResult {
	if len(r.Transactions) == 0 {
		return nil
	}
	return &EmulationResult{
		Transaction: r.Transactions[len(r.Transactions)-1],
		Account:     r.Account,
	}
}
