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
	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

// maxVMDataDepth bounds the depth of cells contract code may produce.
const maxVMDataDepth = 512

// ConfigParams are the phase parameters derived from the chain configuration
// for one workchain.
type ConfigParams struct {
	// OldMParams is the mandatory parameter list of configuration parameter 9.
	OldMParams    *cell.Cell
	StoragePrices []block.StoragePrices
	Storage       types.StoragePhaseConfig
	Compute       types.ComputePhaseConfig
	Action        types.ActionPhaseConfig

	MasterchainCreateFee *uint256.Int
	BasechainCreateFee   *uint256.Int
}

// FetchConfigParams derives the phase parameters a transaction on the given
// workchain runs with. It reads chain only and has no side effects.
func FetchConfigParams(chain ChainConfig, libraries *cell.Cell, workchain int32, seed types.Seed) (*ConfigParams, error) {
	params := &ConfigParams{
		OldMParams: chain.GetParam(block.ConfigParamMandatoryParams),
	}

	prices, err := chain.GetStoragePrices()
	if err != nil {
		return nil, &ConfigError{Msg: "cannot fetch storage prices from masterchain configuration", Err: err}
	}
	params.StoragePrices = prices

	gas, err := fetchGasPrices(chain, workchain)
	if err != nil {
		return nil, err
	}

	params.Storage = types.StoragePhaseConfig{
		Prices:         prices,
		FreezeDueLimit: uint256.NewInt(gas.FreezeDueLimit),
		DeleteDueLimit: uint256.NewInt(gas.DeleteDueLimit),
	}

	params.Compute = types.ComputePhaseConfig{
		GasPrices:      *gas,
		MaxVMDataDepth: maxVMDataDepth,
		Libraries:      libraries,
		GlobalConfig:   chain.RootCell(),
		Seed:           seed,
	}

	if params.Action, err = fetchActionConfig(chain); err != nil {
		return nil, err
	}

	params.MasterchainCreateFee, params.BasechainCreateFee, err = fetchCreateFees(chain)
	if err != nil {
		return nil, err
	}
	return params, nil
}

func fetchGasPrices(chain ChainConfig, workchain int32) (*block.GasLimitsPrices, error) {
	id := uint32(block.ConfigParamGasPrices)
	if workchain == block.MasterchainID {
		id = block.ConfigParamMCGasPrices
	}

	c := chain.GetParam(id)
	if c == nil {
		return nil, &ConfigError{
			Msg: "cannot fetch current gas prices and limits from masterchain configuration",
			Err: &block.ConfigParamError{Param: id},
		}
	}

	gas, err := block.ParseGasLimitsPrices(c)
	if err != nil {
		return nil, &ConfigError{
			Msg: "cannot unpack current gas prices and limits from masterchain configuration",
			Err: &block.ConfigParamError{Param: id, Err: err},
		}
	}
	return gas, nil
}

func fetchMsgPrices(chain ChainConfig, id uint32, name string) (*block.MsgPrices, error) {
	c := chain.GetParam(id)
	if c == nil {
		return nil, &ConfigError{
			Msg: "cannot fetch " + name + " message transfer prices from masterchain configuration",
			Err: &block.ConfigParamError{Param: id},
		}
	}

	prices, err := block.ParseMsgPrices(c)
	if err != nil {
		return nil, &ConfigError{
			Msg: "cannot unpack " + name + " message transfer prices from masterchain configuration",
			Err: &block.ConfigParamError{Param: id, Err: err},
		}
	}
	return prices, nil
}

func fetchActionConfig(chain ChainConfig) (types.ActionPhaseConfig, error) {
	var cfg types.ActionPhaseConfig

	mc, err := fetchMsgPrices(chain, block.ConfigParamMCMsgPrices, "masterchain")
	if err != nil {
		return cfg, err
	}
	std, err := fetchMsgPrices(chain, block.ConfigParamMsgPrices, "basechain")
	if err != nil {
		return cfg, err
	}
	cfg.FwdMC, cfg.FwdStd = *mc, *std

	if cfg.Workchains, err = chain.WorkchainList(); err != nil {
		return cfg, &ConfigError{Msg: "cannot fetch workchain list from masterchain configuration", Err: err}
	}

	if chain.HasCapability(block.CapBounceMsgBody) {
		cfg.BounceMsgBody = 256
	}
	return cfg, nil
}

// fetchCreateFees reads configuration parameter 14. An absent parameter means
// no block creation fees.
func fetchCreateFees(chain ChainConfig) (mc, bc *uint256.Int, err error) {
	c := chain.GetParam(block.ConfigParamBlockCreateFees)
	if c == nil {
		return new(uint256.Int), new(uint256.Int), nil
	}

	fees, err := block.ParseBlockCreateFees(c)
	if err != nil {
		return nil, nil, &ConfigError{
			Msg: "cannot unpack block creation fees from masterchain configuration",
			Err: &block.ConfigParamError{Param: block.ConfigParamBlockCreateFees, Err: err},
		}
	}

	if mc, err = block.FromBig(fees.MasterchainFee.Nano()); err != nil {
		return nil, nil, &ConfigError{Msg: "invalid masterchain block creation fee", Err: err}
	}
	if bc, err = block.FromBig(fees.BasechainFee.Nano()); err != nil {
		return nil, nil, &ConfigError{Msg: "invalid basechain block creation fee", Err: err}
	}
	return mc, bc, nil
}
