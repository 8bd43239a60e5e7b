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

// Package convert turns emulation results into flat reports for printing and
// export.
package convert

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// EmulationReport describes the transactions of one run and the account
// state they left behind.
type EmulationReport struct {
	Account      AccountReport       `json:"account" msgpack:"account"`
	Transactions []TransactionReport `json:"transactions" msgpack:"transactions"`
}

type AccountReport struct {
	Address       string `json:"address" msgpack:"address"`
	Status        string `json:"status" msgpack:"status"`
	Balance       string `json:"balance" msgpack:"balance"`
	StateHash     string `json:"state_hash" msgpack:"state_hash"`
	LastTransLT   uint64 `json:"last_trans_lt" msgpack:"last_trans_lt"`
	LastTransHash string `json:"last_trans_hash" msgpack:"last_trans_hash"`
}

type TransactionReport struct {
	Hash       string         `json:"hash" msgpack:"hash"`
	LT         uint64         `json:"lt" msgpack:"lt"`
	Now        uint32         `json:"now" msgpack:"now"`
	Kind       string         `json:"kind" msgpack:"kind"`
	OrigStatus string         `json:"orig_status" msgpack:"orig_status"`
	EndStatus  string         `json:"end_status" msgpack:"end_status"`
	TotalFees  string         `json:"total_fees" msgpack:"total_fees"`
	OutMsgs    int            `json:"out_msgs" msgpack:"out_msgs"`
	Aborted    bool           `json:"aborted" msgpack:"aborted"`
	Destroyed  bool           `json:"destroyed" msgpack:"destroyed"`
	Compute    *ComputeReport `json:"compute,omitempty" msgpack:"compute,omitempty"`
	Action     *ActionReport  `json:"action,omitempty" msgpack:"action,omitempty"`
	Bounce     string         `json:"bounce,omitempty" msgpack:"bounce,omitempty"`
}

// ComputeReport summarizes the compute phase. Skipped holds the skip reason
// and is empty when the contract ran.
type ComputeReport struct {
	Skipped  string `json:"skipped,omitempty" msgpack:"skipped,omitempty"`
	Success  bool   `json:"success" msgpack:"success"`
	ExitCode int32  `json:"exit_code" msgpack:"exit_code"`
	GasUsed  uint64 `json:"gas_used" msgpack:"gas_used"`
	GasFees  string `json:"gas_fees" msgpack:"gas_fees"`
	VMSteps  uint32 `json:"vm_steps" msgpack:"vm_steps"`
}

type ActionReport struct {
	Success     bool   `json:"success" msgpack:"success"`
	ResultCode  int32  `json:"result_code" msgpack:"result_code"`
	TotActions  uint16 `json:"tot_actions" msgpack:"tot_actions"`
	MsgsCreated uint16 `json:"msgs_created" msgpack:"msgs_created"`
	FwdFees     string `json:"fwd_fees" msgpack:"fwd_fees"`
}

func ToReport(result *types.EmulationResult) (*EmulationReport, error) {
	tx, err := ToTransactionReport(result.Transaction)
	if err != nil {
		return nil, err
	}

	return &EmulationReport{
		Account:      ToAccountReport(result.Account),
		Transactions: []TransactionReport{tx},
	}, nil
}

func ToBatchReport(results *types.EmulationResults) (*EmulationReport, error) {
	report := &EmulationReport{
		Account:      ToAccountReport(results.Account),
		Transactions: make([]TransactionReport, 0, len(results.Transactions)),
	}

	for i, c := range results.Transactions {
		tx, err := ToTransactionReport(c)
		if err != nil {
			return nil, fmt.Errorf("transaction #%d: %w", i, err)
		}
		report.Transactions = append(report.Transactions, tx)
	}
	return report, nil
}

func ToAccountReport(acc *block.Account) AccountReport {
	return AccountReport{
		Address:       acc.Address.String(),
		Status:        acc.Status.String(),
		Balance:       grams(acc.Balance.Grams),
		StateHash:     fmt.Sprintf("%x", acc.StateHash()),
		LastTransLT:   acc.LastTransLT,
		LastTransHash: fmt.Sprintf("%x", acc.LastTransHash),
	}
}

// ToTransactionReport decodes a transaction cell. Split and merge
// transactions are reported without phase details.
func ToTransactionReport(c *cell.Cell) (TransactionReport, error) {
	record, err := block.UnpackTransaction(c)
	if err != nil {
		return TransactionReport{}, err
	}

	kind, err := types.ClassifyDescription(record.Description)
	if err != nil {
		return TransactionReport{}, err
	}

	report := TransactionReport{
		Hash:       fmt.Sprintf("%x", c.Hash()),
		LT:         record.LT,
		Now:        record.Now,
		Kind:       kind.String(),
		OrigStatus: record.OrigStatus.String(),
		EndStatus:  record.EndStatus.String(),
		TotalFees:  grams(record.TotalFees.Grams),
		OutMsgs:    len(record.OutMsgs),
	}

	if kind != types.TransactionOrdinary && kind != types.TransactionStorage && !kind.IsTickTock() {
		return report, nil
	}

	descr, err := types.LoadTransactionDescr(record.Description)
	if err != nil {
		return TransactionReport{}, err
	}

	report.Aborted = descr.Aborted
	report.Destroyed = descr.Destroyed
	if cp := descr.Compute; cp != nil {
		report.Compute = toComputeReport(cp)
	}
	if ap := descr.Action; ap != nil {
		report.Action = &ActionReport{
			Success:     ap.Success,
			ResultCode:  ap.ResultCode,
			TotActions:  ap.TotActions,
			MsgsCreated: ap.MsgsCreated,
			FwdFees:     grams(ap.TotalFwdFees),
		}
	}
	if bp := descr.Bounce; bp != nil {
		report.Bounce = bp.Kind.String()
	}
	return report, nil
}

func toComputeReport(cp *types.ComputePhase) *ComputeReport {
	if cp.Skipped() {
		return &ComputeReport{Skipped: cp.SkipReason.String(), GasFees: "0"}
	}
	return &ComputeReport{
		Success:  cp.Success,
		ExitCode: cp.ExitCode,
		GasUsed:  cp.GasUsed,
		GasFees:  grams(cp.GasFees),
		VMSteps:  cp.VMSteps,
	}
}

func grams(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
