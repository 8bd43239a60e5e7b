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

package unittest

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
)

const (
	// FixtureNow is the unix time fixture accounts and messages are built around.
	FixtureNow uint32 = 1_700_000_000
	// FixtureLT is the logical time of the first fixture transaction.
	FixtureLT uint64 = 40_000_000_000_000

	Capabilities = block.CapIhrEnabled | block.CapCreateStatsEnabled | block.CapBounceMsgBody |
		block.CapReportVersion | block.CapShortDequeue
)

var (
	BasechainGasPrices = block.GasLimitsPrices{
		FlatGasLimit:    100,
		FlatGasPrice:    40_000,
		GasPrice:        26_214_400,
		GasLimit:        1_000_000,
		SpecialGasLimit: 1_000_000,
		GasCredit:       10_000,
		BlockGasLimit:   10_000_000,
		FreezeDueLimit:  100_000_000,
		DeleteDueLimit:  1_000_000_000,
	}

	MasterchainGasPrices = block.GasLimitsPrices{
		FlatGasLimit:    100,
		FlatGasPrice:    1_000_000,
		GasPrice:        655_360_000,
		GasLimit:        1_000_000,
		SpecialGasLimit: 70_000_000,
		GasCredit:       10_000,
		BlockGasLimit:   2_500_000,
		FreezeDueLimit:  100_000_000,
		DeleteDueLimit:  1_000_000_000,
	}

	BasechainMsgPrices = block.MsgPrices{
		LumpPrice:    400_000,
		BitPrice:     26_214_400,
		CellPrice:    2_621_440_000,
		IhrPriceFrac: 98_304,
		FirstFrac:    21_845,
		NextFrac:     21_845,
	}

	MasterchainMsgPrices = block.MsgPrices{
		LumpPrice:    10_000_000,
		BitPrice:     655_360_000,
		CellPrice:    65_536_000_000,
		IhrPriceFrac: 98_304,
		FirstFrac:    21_845,
		NextFrac:     21_845,
	}

	StoragePrices = block.StoragePrices{
		ValidSince:  0,
		BitPrice:    1,
		CellPrice:   500,
		MCBitPrice:  1_000,
		MCCellPrice: 500_000,
	}
)

func GasPricesCell(g block.GasLimitsPrices) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0xd1, 8).
		MustStoreUInt(g.FlatGasLimit, 64).
		MustStoreUInt(g.FlatGasPrice, 64).
		MustStoreUInt(0xde, 8).
		MustStoreUInt(g.GasPrice, 64).
		MustStoreUInt(g.GasLimit, 64).
		MustStoreUInt(g.SpecialGasLimit, 64).
		MustStoreUInt(g.GasCredit, 64).
		MustStoreUInt(g.BlockGasLimit, 64).
		MustStoreUInt(g.FreezeDueLimit, 64).
		MustStoreUInt(g.DeleteDueLimit, 64).
		EndCell()
}

func MsgPricesCell(p block.MsgPrices) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0xea, 8).
		MustStoreUInt(p.LumpPrice, 64).
		MustStoreUInt(p.BitPrice, 64).
		MustStoreUInt(p.CellPrice, 64).
		MustStoreUInt(uint64(p.IhrPriceFrac), 32).
		MustStoreUInt(uint64(p.FirstFrac), 16).
		MustStoreUInt(uint64(p.NextFrac), 16).
		EndCell()
}

func storagePricesValue(p block.StoragePrices) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0xcc, 8).
		MustStoreUInt(uint64(p.ValidSince), 32).
		MustStoreUInt(p.BitPrice, 64).
		MustStoreUInt(p.CellPrice, 64).
		MustStoreUInt(p.MCBitPrice, 64).
		MustStoreUInt(p.MCCellPrice, 64).
		EndCell()
}

// StoragePricesCell builds parameter 18 with one entry per price, keyed by
// ValidSince unless a key is given explicitly through keys.
func StoragePricesCell(t testing.TB, prices []block.StoragePrices, keys ...uint32) *cell.Cell {
	dict := cell.NewDict(32)
	for i, p := range prices {
		key := p.ValidSince
		if i < len(keys) {
			key = keys[i]
		}
		err := dict.SetIntKey(big.NewInt(int64(key)), storagePricesValue(p))
		require.NoError(t, err)
	}
	return dict.AsCell()
}

func GlobalVersionCell(version uint32, capabilities uint64) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(0xc4, 8).
		MustStoreUInt(uint64(version), 32).
		MustStoreUInt(capabilities, 64).
		EndCell()
}

func BlockCreateFeesCell(t testing.TB, masterchain, basechain uint64) *cell.Cell {
	b := cell.BeginCell().MustStoreUInt(0x6b, 8)
	require.NoError(t, block.StoreGrams(b, uint256.NewInt(masterchain)))
	require.NoError(t, block.StoreGrams(b, uint256.NewInt(basechain)))
	return b.EndCell()
}

func WorkchainsCell(t testing.TB, infos ...block.WorkchainInfo) *cell.Cell {
	dict := cell.NewDict(32)
	for _, info := range infos {
		value := cell.BeginCell()
		require.NoError(t, block.StoreWorkchainDescr(value, info))
		require.NoError(t, dict.SetIntKey(big.NewInt(int64(info.ID)), value.EndCell()))
	}
	b := cell.BeginCell()
	require.NoError(t, b.StoreMaybeRef(dict.AsCell()))
	return b.EndCell()
}

// MandatoryParamsCell builds parameter 9 listing the given parameter ids.
func MandatoryParamsCell(t testing.TB, ids ...uint32) *cell.Cell {
	dict := cell.NewDict(32)
	for _, id := range ids {
		require.NoError(t, dict.SetIntKey(big.NewInt(int64(id)), cell.BeginCell().EndCell()))
	}
	return dict.AsCell()
}

// ConfigParamsFixture returns a realistic set of configuration parameters.
// Modifiers may replace or delete entries.
func ConfigParamsFixture(t testing.TB, n ...func(params map[uint32]*cell.Cell)) map[uint32]*cell.Cell {
	params := map[uint32]*cell.Cell{
		block.ConfigParamGlobalVersion:   GlobalVersionCell(4, Capabilities),
		block.ConfigParamMandatoryParams: MandatoryParamsCell(t, 18, 20, 21, 24, 25),
		block.ConfigParamWorkchains: WorkchainsCell(t, block.WorkchainInfo{
			ID:         block.BasechainID,
			Basic:      true,
			Active:     true,
			AcceptMsgs: true,
		}),
		block.ConfigParamBlockCreateFees: BlockCreateFeesCell(t, 1_700_000_000, 1_000_000_000),
		block.ConfigParamStoragePrices:   StoragePricesCell(t, []block.StoragePrices{StoragePrices}),
		block.ConfigParamMCGasPrices:     GasPricesCell(MasterchainGasPrices),
		block.ConfigParamGasPrices:       GasPricesCell(BasechainGasPrices),
		block.ConfigParamMCMsgPrices:     MsgPricesCell(MasterchainMsgPrices),
		block.ConfigParamMsgPrices:       MsgPricesCell(BasechainMsgPrices),
	}

	for _, f := range n {
		f(params)
	}
	return params
}

func ConfigFixture(t testing.TB, n ...func(params map[uint32]*cell.Cell)) *block.Config {
	config, err := block.NewConfigFromParams(ConfigParamsFixture(t, n...))
	require.NoError(t, err)
	return config
}

func AddressFixture(workchain int32, seed byte) block.Address {
	addr := block.Address{Workchain: workchain}
	for i := range addr.Data {
		addr.Data[i] = seed + byte(i)
	}
	return addr
}

// AccountFixture returns an active account holding balance nanotons whose
// storage was last paid at FixtureNow.
func AccountFixture(t testing.TB, addr block.Address, balance uint64, n ...func(acc *block.Account)) *block.Account {
	acc := &block.Account{
		Address:       addr,
		Status:        block.StatusActive,
		Balance:       block.NewCurrencyCollection(balance),
		Code:          cell.BeginCell().MustStoreUInt(0xff00, 16).EndCell(),
		Data:          cell.BeginCell().MustStoreUInt(7, 32).EndCell(),
		LastPaid:      FixtureNow,
		DuePayment:    new(uint256.Int),
		StorageLT:     FixtureLT - 1,
		LastTransLT:   FixtureLT - 2,
		LastTransHash: [32]byte{0xaa},
	}

	for _, f := range n {
		f(acc)
	}

	state, err := acc.BuildState()
	require.NoError(t, err)
	acc.TotalState = state
	return acc
}

// InternalMessageFixture builds an inbound internal message to dest.
func InternalMessageFixture(t testing.TB, src, dest block.Address, value uint64, bounce bool, body *cell.Cell) *cell.Cell {
	msg := &block.Message{
		Info: block.MsgInfo{
			Kind:        block.InternalMessage,
			IHRDisabled: true,
			Bounce:      bounce,
			Src:         &src,
			Dest:        dest,
			Value:       block.NewCurrencyCollection(value),
			IHRFee:      new(uint256.Int),
			FwdFee:      uint256.NewInt(666_672),
			CreatedLT:   FixtureLT - 10,
			CreatedAt:   FixtureNow,
		},
		Body: body,
	}

	c, err := msg.ToCell()
	require.NoError(t, err)
	return c
}

func ExternalMessageFixture(t testing.TB, dest block.Address, body *cell.Cell) *cell.Cell {
	msg := &block.Message{
		Info: block.MsgInfo{
			Kind:      block.ExternalInMessage,
			Dest:      dest,
			ImportFee: new(uint256.Int),
		},
		Body: body,
	}

	c, err := msg.ToCell()
	require.NoError(t, err)
	return c
}
