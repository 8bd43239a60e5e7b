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

package vm

import (
	"fmt"

	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// ReplayExecutor answers compute requests with the results recorded in
// reference transactions. It reproduces contracts that leave their data
// untouched and emit no actions; anything else will not hash-match.
type ReplayExecutor struct {
	results map[uint64]*Result
}

// NewReplayExecutor indexes the compute phases of the given transactions by lt.
// Transactions whose compute phase was skipped are ignored.
func NewReplayExecutor(txs ...*cell.Cell) (*ReplayExecutor, error) {
	e := &ReplayExecutor{results: make(map[uint64]*Result, len(txs))}

	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if err := e.Record(tx); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Record adds the compute phase of one reference transaction.
func (e *ReplayExecutor) Record(tx *cell.Cell) error {
	record, err := block.UnpackTransaction(tx)
	if err != nil {
		return err
	}

	kind, err := types.ClassifyDescription(record.Description)
	if err != nil {
		return err
	}
	if kind != types.TransactionOrdinary && !kind.IsTickTock() {
		return nil
	}

	descr, err := types.LoadTransactionDescr(record.Description)
	if err != nil {
		return fmt.Errorf("transaction %d: %w", record.LT, err)
	}
	if descr.Compute == nil || descr.Compute.Skipped() {
		return nil
	}

	c := descr.Compute
	e.results[record.LT] = &Result{
		ExitCode:       c.ExitCode,
		ExitArg:        c.ExitArg,
		Accepted:       true,
		Committed:      c.Success,
		GasUsed:        c.GasUsed,
		Steps:          c.VMSteps,
		Mode:           c.Mode,
		InitStateHash:  c.VMInitStateHash,
		FinalStateHash: c.VMFinalStateHash,
	}
	return nil
}

// Execute returns the recorded result for req.LT with the request's data
// carried through unchanged.
func (e *ReplayExecutor) Execute(req *Request) (*Result, error) {
	recorded, ok := e.results[req.LT]
	if !ok {
		return nil, fmt.Errorf("no recorded execution for lt %d", req.LT)
	}

	res := *recorded
	res.NewData = req.Data
	res.Actions = EmptyActions()
	return &res, nil
}
