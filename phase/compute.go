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
	"bytes"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/vm"
)

// ComputePhase runs the contract code, or records why it was skipped.
func (t *transaction) ComputePhase(cfg *types.ComputePhaseConfig) (*types.ComputePhase, error) {
	cp := &types.ComputePhase{GasFees: new(uint256.Int)}
	t.compute = cp
	t.originalBalance = new(uint256.Int).Set(t.balance.Grams)

	if t.kind == types.TransactionStorage {
		cp.SkipReason = types.SkipNoState
		return cp, nil
	}

	if t.balance.Grams.IsZero() {
		cp.SkipReason = types.SkipNoGas
		return t.skipped(cp)
	}

	code, data, library := t.code, t.data, t.library
	var init *block.StateInit

	switch {
	case t.status == block.StatusActive:
	case t.msg != nil && t.msg.Init != nil:
		si, err := t.msg.Init.ToCell()
		if err != nil {
			return nil, fmt.Errorf("cannot serialize message state init: %w", err)
		}

		addr := t.address()
		expected := addr.Data[:]
		if t.status == block.StatusFrozen {
			expected = t.frozenHash[:]
		}
		if !bytes.Equal(si.Hash(), expected) {
			cp.SkipReason = types.SkipBadState
			return t.skipped(cp)
		}

		init = t.msg.Init
		code, data, library = init.Code, init.Data, init.Library
		cp.MsgStateUsed = true
	default:
		cp.SkipReason = types.SkipNoState
		return t.skipped(cp)
	}

	gasMax, gasLimit, gasCredit := t.gasLimits(cfg)
	if gasLimit == 0 && gasCredit == 0 {
		cp.SkipReason = types.SkipNoGas
		return t.skipped(cp)
	}

	req := &vm.Request{
		Address:      t.address(),
		Code:         code,
		Data:         data,
		Libraries:    cfg.Libraries,
		Balance:      new(uint256.Int).Set(t.balance.Grams),
		MsgValue:     new(uint256.Int).Set(t.msgBalance),
		InMsg:        t.inMsg,
		GasLimit:     gasLimit,
		GasMax:       gasMax,
		GasCredit:    gasCredit,
		Now:          t.now,
		LT:           t.startLT,
		Seed:         cfg.Seed,
		GlobalConfig: cfg.GlobalConfig,
		MaxDataDepth: cfg.MaxVMDataDepth,
	}
	switch {
	case t.kind.IsTickTock():
		req.Selector = vm.SelectorTickTock
		req.IsTock = t.kind == types.TransactionTock
	case t.external:
		req.Selector = vm.SelectorExternal
	default:
		req.Selector = vm.SelectorInternal
	}
	if t.msg != nil {
		req.Body = t.msg.Body
	}

	res, err := t.executor.Execute(req)
	if err != nil {
		return nil, fmt.Errorf("execution engine failed: %w", err)
	}

	cp.GasLimit = gasLimit
	cp.GasCredit = gasCredit
	cp.GasUsed = res.GasUsed
	cp.Mode = res.Mode
	cp.ExitCode = res.ExitCode
	cp.ExitArg = res.ExitArg
	cp.VMSteps = res.Steps
	cp.VMInitStateHash = res.InitStateHash
	cp.VMFinalStateHash = res.FinalStateHash
	cp.Accepted = !t.external || res.Accepted

	if !cp.Accepted {
		t.logger.Debug().Int32("exit_code", res.ExitCode).Msg("external message not accepted")
		return cp, nil
	}

	cp.Success = res.Success()
	cp.AccountActivated = cp.MsgStateUsed && cp.Success

	if !t.account.IsSpecial {
		cp.GasFees = cfg.GasPrices.ComputeGasPrice(cp.GasUsed)
		if cp.GasFees.Gt(t.balance.Grams) {
			cp.GasFees.Set(t.balance.Grams)
		}
	}
	t.balance.Grams.Sub(t.balance.Grams, cp.GasFees)
	t.totalFees.Add(t.totalFees, cp.GasFees)

	if cp.Success {
		if init != nil {
			t.status = block.StatusActive
			t.code, t.library = code, library
			t.splitDepth, t.special = init.SplitDepth, init.Special
		}
		t.data = res.NewData
		t.actions = res.Actions
		if t.actions == nil {
			t.actions = vm.EmptyActions()
		}
	}

	t.logger.Debug().
		Int32("exit_code", cp.ExitCode).
		Uint64("gas_used", cp.GasUsed).
		Str("gas_fees", cp.GasFees.Dec()).
		Bool("success", cp.Success).
		Msg("compute phase")
	return cp, nil
}

func (t *transaction) skipped(cp *types.ComputePhase) (*types.ComputePhase, error) {
	t.logger.Debug().Stringer("reason", cp.SkipReason).Msg("compute phase skipped")
	return cp, nil
}

// gasLimits derives the gas the contract may buy, the gas it starts with and
// the credit given to inbound external messages.
func (t *transaction) gasLimits(cfg *types.ComputePhaseConfig) (gasMax, gasLimit, gasCredit uint64) {
	prices := &cfg.GasPrices

	if t.account.IsSpecial {
		gasMax = prices.SpecialGasLimit
	} else {
		gasMax = prices.GasBoughtFor(t.balance.Grams)
	}

	gasLimit = gasMax
	if t.kind == types.TransactionOrdinary && !(t.account.IsSpecial && cfg.SpecialGasFull) {
		if bought := prices.GasBoughtFor(t.msgBalance); bought < gasMax {
			gasLimit = bought
		}
	}

	if t.kind == types.TransactionOrdinary && t.external {
		gasCredit = prices.GasCredit
		if gasCredit > gasMax {
			gasCredit = gasMax
		}
	}
	return gasMax, gasLimit, gasCredit
}
