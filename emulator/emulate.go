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

package emulator

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// EmulateTransaction reproduces the transaction txCell on a copy of acc and
// verifies that both the produced transaction and the resulting account
// state hash to what the network committed. A nil seed draws a fresh one
// from the seed provider.
func (e *Emulator) EmulateTransaction(acc *block.Account, txCell *cell.Cell, seed *types.Seed) (*types.EmulationResult, error) {
	return e.emulateTransaction(acc, txCell, seed, e.logger)
}

// EmulateTransactions reproduces txs in order, feeding the account produced
// by each transaction into the next one. Nil entries are skipped. The first
// failure aborts the batch.
func (e *Emulator) EmulateTransactions(acc *block.Account, txs []*cell.Cell, seed *types.Seed) (*types.EmulationResults, error) {
	if acc == nil {
		return nil, fmt.Errorf("account is required")
	}

	runID := uuid.New()
	logger := e.logger.With().Str("run", runID.String()).Logger()
	logger.Debug().Int("transactions", len(txs)).Msg("emulating transactions")

	results := &types.EmulationResults{Account: acc.Copy()}
	for i, txCell := range txs {
		if txCell == nil {
			logger.Debug().Int("index", i).Msg("skipping missing transaction")
			continue
		}

		res, err := e.emulateTransaction(results.Account, txCell, seed, logger)
		if err != nil {
			return nil, errors.WithMessagef(err, "cannot emulate transaction #%d", i)
		}

		results.Account = res.Account
		results.Transactions = append(results.Transactions, res.Transaction)
	}

	return results, nil
}

func (e *Emulator) emulateTransaction(
	acc *block.Account,
	txCell *cell.Cell,
	seed *types.Seed,
	logger zerolog.Logger,
) (_ *types.EmulationResult, err error) {
	start := time.Now()
	defer func() {
		e.metrics.observe(start, err)
	}()

	if acc == nil {
		return nil, fmt.Errorf("account is required")
	}

	record, err := block.UnpackTransaction(txCell)
	if err != nil {
		return nil, &DecodeError{What: "transaction", Err: err}
	}
	update, err := record.HashUpdate()
	if err != nil {
		return nil, &DecodeError{What: "transaction state update", Err: err}
	}

	work := acc.Copy()
	work.Now = record.Now
	if work.Status == block.StatusNonexist {
		resolveAddress(work, record)
	}
	work.IsSpecial = e.chain.IsSpecialAccount(work.Address)

	addr := work.Address
	logger = logger.With().Str("account", addr.String()).Uint64("lt", record.LT).Logger()

	params, err := e.fetchConfigParams(work.Workchain(), seed, logger)
	if err != nil {
		return nil, errors.WithMessage(err, "cannot fetch config params")
	}

	tx, session, err := e.CreateTransaction(record, work, params)
	if err != nil {
		return nil, errors.WithMessage(err, "cannot run message on account "+addr.String())
	}

	if !bytes.Equal(tx.Root.Hash(), record.Hash()) {
		return nil, &IntegrityError{What: "transaction hash", Expected: record.Hash(), Actual: tx.Root.Hash()}
	}

	root, err := session.Commit(work)
	if err != nil || root == nil {
		return nil, &PhaseError{
			Address: addr,
			Msg:     "cannot commit new transaction for smart contract " + addr.String(),
			Err:     err,
		}
	}

	if !bytes.Equal(work.StateHash(), update.NewHash[:]) {
		return nil, &IntegrityError{What: "account hash", Expected: update.NewHash[:], Actual: work.StateHash()}
	}

	logger.Info().
		Str("hash", fmt.Sprintf("%x", root.Hash())).
		Str("balance", work.Balance.Grams.Dec()).
		Msg("transaction emulated")

	return &types.EmulationResult{Transaction: root, Account: work}, nil
}

func (e *Emulator) fetchConfigParams(workchain int32, seed *types.Seed, logger zerolog.Logger) (*ConfigParams, error) {
	var s types.Seed
	if seed != nil {
		s = *seed
	} else {
		var err error
		if s, err = e.seeds.Seed(); err != nil {
			return nil, &ConfigError{Msg: "cannot generate random seed", Err: err}
		}
		logger.Debug().Str("seed", s.String()).Msg("generated random seed")
	}

	return FetchConfigParams(e.chain, e.conf.Libraries, workchain, s)
}

// resolveAddress fills in the address of an account that does not exist yet.
// account_none carries no address, so it comes from the transaction and the
// destination of its inbound message.
func resolveAddress(acc *block.Account, record *block.TransactionRecord) {
	acc.Address.Data = record.AccountAddr
	if record.InMsg == nil {
		return
	}
	if msg, err := block.LoadMessage(record.InMsg); err == nil {
		acc.Address.Workchain = msg.Info.Dest.Workchain
	}
}
