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
	"encoding/hex"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
)

// Seed is the 256-bit random seed exposed to contract code.
type Seed [32]byte

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

// ParseSeed decodes a hex seed.
func ParseSeed(s string) (Seed, error) {
	var seed Seed

	raw, err := hex.DecodeString(s)
	if err != nil {
		return seed, err
	}
	if len(raw) != len(seed) {
		return seed, &SeedLengthError{Length: len(raw)}
	}

	copy(seed[:], raw)
	return seed, nil
}

// StoragePhaseConfig parametrizes storage rent collection.
type StoragePhaseConfig struct {
	Prices         []block.StoragePrices
	FreezeDueLimit *uint256.Int
	DeleteDueLimit *uint256.Int
}

// ComputePhaseConfig parametrizes contract execution.
type ComputePhaseConfig struct {
	GasPrices      block.GasLimitsPrices
	SpecialGasFull bool
	MaxVMDataDepth uint16
	Libraries      *cell.Cell
	GlobalConfig   *cell.Cell
	Seed           Seed
}

// ActionPhaseConfig parametrizes outbound message creation and bounces.
type ActionPhaseConfig struct {
	FwdStd     block.MsgPrices
	FwdMC      block.MsgPrices
	Workchains block.WorkchainSet
	// BounceMsgBody is the number of original body bits echoed back in bounced messages.
	BounceMsgBody uint
}

// FwdPrices returns the forwarding prices for a message between the given workchains.
func (c *ActionPhaseConfig) FwdPrices(from, to int32) *block.MsgPrices {
	if from == block.MasterchainID || to == block.MasterchainID {
		return &c.FwdMC
	}
	return &c.FwdStd
}
