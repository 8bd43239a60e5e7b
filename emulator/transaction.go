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
	"fmt"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/phase"
	"github.com/onflow/ton-emulator/types"
)

// CreateTransaction runs the phases of the transaction recorded in record
// against acc in consensus order and serializes the result. The account is
// not modified; the returned session commits the new state into it.
func (e *Emulator) CreateTransaction(
	record *block.TransactionRecord,
	acc *block.Account,
	params *ConfigParams,
) (*types.Transaction, phase.Session, error) {
	addr := acc.Address

	kind, err := types.ClassifyDescription(record.Description)
	if err != nil {
		return nil, nil, &DecodeError{What: "transaction description", Err: err}
	}

	tx := types.NewTransaction(kind, record.LT, record.Now, record.InMsg)
	needCredit := kind.NeedsCreditPhase(tx.External)

	logger := e.logger.With().
		Str("account", addr.String()).
		Uint64("lt", tx.LT).
		Stringer("kind", kind).
		Logger()

	session, err := e.engine.Begin(acc, kind, tx.LT, tx.Now, tx.InMsg)
	if err != nil {
		return nil, nil, &PhaseError{
			Address: addr,
			Msg:     fmt.Sprintf("cannot create a new transaction for smart contract %s", addr),
			Err:     err,
		}
	}

	if tx.InMsg != nil {
		tx.BounceEnabled, err = session.UnpackInputMessage(false, &params.Action)
		if err != nil {
			if tx.External {
				return nil, nil, &MessageRejectedError{
					Address: addr,
					Msg:     fmt.Sprintf("inbound external message rejected by account %s before smart-contract execution", addr),
					Err:     err,
				}
			}
			return nil, nil, &PhaseError{
				Address: addr,
				Msg:     fmt.Sprintf("cannot unpack input message for a new transaction of smart contract %s", addr),
				Err:     err,
			}
		}
	}

	if tx.BounceEnabled {
		logger.Debug().Bool("credit", needCredit).Msg("running storage phase before credit phase")
		if tx.Storage, err = session.StoragePhase(&params.Storage, true, false); err != nil {
			return nil, nil, newPhaseError(addr, "storage", err)
		}
		if needCredit {
			if tx.Credit, err = session.CreditPhase(); err != nil {
				return nil, nil, newPhaseError(addr, "credit", err)
			}
		}
	} else {
		logger.Debug().Bool("credit", needCredit).Msg("running credit phase before storage phase")
		if needCredit {
			if tx.Credit, err = session.CreditPhase(); err != nil {
				return nil, nil, newPhaseError(addr, "credit", err)
			}
		}
		if tx.Storage, err = session.StoragePhase(&params.Storage, true, needCredit); err != nil {
			return nil, nil, newPhaseError(addr, "storage", err)
		}
	}

	if tx.Compute, err = session.ComputePhase(&params.Compute); err != nil {
		return nil, nil, newPhaseError(addr, "compute", err)
	}

	cp := tx.Compute
	if !cp.Accepted {
		if tx.External {
			return nil, nil, &MessageRejectedError{
				Address: addr,
				Msg:     fmt.Sprintf("inbound external message rejected by transaction %s", addr),
			}
		}
		if cp.SkipReason == types.SkipNone {
			return nil, nil, &PhaseError{
				Address: addr,
				Msg:     fmt.Sprintf("new ordinary transaction for smart contract %s has not been accepted by the smart contract (?)", addr),
			}
		}
	}

	if cp.Success {
		if tx.Action, err = session.ActionPhase(&params.Action); err != nil {
			return nil, nil, newPhaseError(addr, "action", err)
		}
	}

	if tx.BounceEnabled && !cp.Success {
		if tx.Bounce, err = session.BouncePhase(&params.Action); err != nil {
			return nil, nil, newPhaseError(addr, "bounce", err)
		}
	}

	root, err := session.Serialize(tx)
	if err != nil {
		return nil, nil, &SerializationError{Address: addr, Err: err}
	}
	tx.Root = root

	logger.Debug().
		Bool("aborted", tx.Aborted()).
		Bool("bounced", tx.Bounce != nil).
		Msg("transaction created")
	return tx, session, nil
}
