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

package utils

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog"

	"github.com/onflow/ton-emulator/convert"
)

// PrintEmulationReport logs every transaction of the report followed by the
// final account state.
func PrintEmulationReport(logger *zerolog.Logger, report *convert.EmulationReport) {
	for _, tx := range report.Transactions {
		PrintTransactionReport(logger, tx)
	}

	acc := report.Account
	logger.Info().
		Str("address", acc.Address).
		Str("status", acc.Status).
		Str("balance", acc.Balance).
		Str("stateHash", acc.StateHash).
		Msg("📒  Account state verified")
}

func PrintTransactionReport(logger *zerolog.Logger, tx convert.TransactionReport) {
	event := logger.Info()
	msg := "⭐  Transaction reproduced"
	if tx.Aborted {
		event = logger.Warn()
		msg = "❗  Aborted transaction reproduced"
	}
	event.
		Str("txHash", tx.Hash).
		Uint64("lt", tx.LT).
		Str("kind", tx.Kind).
		Str("totalFees", tx.TotalFees).
		Msg(msg)

	if cp := tx.Compute; cp != nil {
		if cp.Skipped != "" {
			logger.Debug().Msgf("%s compute skipped: %s", logPrefix("TX", tx.Hash, aurora.BlueFg), cp.Skipped)
		} else {
			logger.Debug().Msgf(
				"%s compute exit code %d, gas used %d, fees %s",
				logPrefix("TX", tx.Hash, aurora.BlueFg),
				cp.ExitCode,
				cp.GasUsed,
				cp.GasFees,
			)
		}
	}

	if ap := tx.Action; ap != nil && !ap.Success {
		logger.Warn().Msgf(
			"%s action phase failed with result code %d",
			logPrefix("ERR", tx.Hash, aurora.RedFg),
			ap.ResultCode,
		)
	}

	if tx.Bounce != "" {
		logger.Debug().Msgf("%s bounced: %s", logPrefix("TX", tx.Hash, aurora.GreenFg), tx.Bounce)
	}
}

// PrintEmulationError logs a failed run against the transaction hash it
// stopped at, if known.
func PrintEmulationError(logger *zerolog.Logger, txHash string, err error) {
	logger.Warn().Msgf("%s %s", logPrefix("ERR", txHash, aurora.RedFg), err.Error())
}

func logPrefix(prefix string, hash string, color aurora.Color) string {
	prefix = aurora.Colorize(prefix, color|aurora.BoldFm).String()
	if len(hash) > 6 {
		hash = hash[:6]
	}
	shortHash := aurora.Colorize(fmt.Sprintf("[%s]", hash), aurora.FaintFm).String()
	return fmt.Sprintf("%s %s", prefix, shortHash)
}
