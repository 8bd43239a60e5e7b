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

package block

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	ConfigParamConfigAddress   uint32 = 0
	ConfigParamGlobalVersion   uint32 = 8
	ConfigParamMandatoryParams uint32 = 9
	ConfigParamWorkchains      uint32 = 12
	ConfigParamBlockCreateFees uint32 = 14
	ConfigParamStoragePrices   uint32 = 18
	ConfigParamMCGasPrices     uint32 = 20
	ConfigParamGasPrices       uint32 = 21
	ConfigParamMCMsgPrices     uint32 = 24
	ConfigParamMsgPrices       uint32 = 25
	ConfigParamFundamentalSmc  uint32 = 31
)

// Capability flags of configuration parameter 8.
const (
	CapIhrEnabled             uint64 = 1
	CapCreateStatsEnabled     uint64 = 2
	CapBounceMsgBody          uint64 = 4
	CapReportVersion          uint64 = 8
	CapSplitMergeTransactions uint64 = 16
	CapShortDequeue           uint64 = 32
)

// Config gives typed access to a blockchain configuration dictionary. It is
// immutable and safe for concurrent use.
type Config struct {
	root   *cell.Cell
	params *cell.Dictionary
}

// NewConfig wraps either the bare Hashmap 32 ^Cell root or a ConfigParams
// cell (config address followed by a reference to the dictionary).
func NewConfig(root *cell.Cell) (*Config, error) {
	if root == nil {
		return nil, ErrMissingConfigParams
	}

	if root.BitsSize() == 256 && root.RefsNum() == 1 {
		dict, err := root.PeekRef(0)
		if err != nil {
			return nil, err
		}
		root = dict
	}

	return &Config{
		root:   root,
		params: root.AsDict(32),
	}, nil
}

// NewConfigFromParams assembles a configuration from individual parameter cells.
func NewConfigFromParams(params map[uint32]*cell.Cell) (*Config, error) {
	if len(params) == 0 {
		return nil, ErrMissingConfigParams
	}

	dict := cell.NewDict(32)
	for id, param := range params {
		value := cell.BeginCell()
		if err := value.StoreRef(param); err != nil {
			return nil, err
		}
		if err := dict.SetIntKey(big.NewInt(int64(id)), value.EndCell()); err != nil {
			return nil, fmt.Errorf("cannot store configuration parameter #%d: %w", id, err)
		}
	}

	return NewConfig(dict.AsCell())
}

// RootCell returns the configuration dictionary root.
func (c *Config) RootCell() *cell.Cell {
	return c.root
}

// GetParam returns the parameter cell, or nil when it is absent.
func (c *Config) GetParam(id uint32) *cell.Cell {
	v, err := c.params.LoadValueByIntKey(big.NewInt(int64(id)))
	if err != nil {
		return nil
	}

	ref, err := v.LoadRefCell()
	if err != nil {
		return nil
	}
	return ref
}

func (c *Config) GlobalVersion() (*GlobalVersion, error) {
	p := c.GetParam(ConfigParamGlobalVersion)
	if p == nil {
		return nil, &ConfigParamError{Param: ConfigParamGlobalVersion}
	}

	var v GlobalVersion
	if err := tlb.LoadFromCell(&v, p.BeginParse()); err != nil {
		return nil, &ConfigParamError{Param: ConfigParamGlobalVersion, Err: err}
	}
	return &v, nil
}

// HasCapability reports whether all bits of flag are enabled in parameter 8.
func (c *Config) HasCapability(flag uint64) bool {
	v, err := c.GlobalVersion()
	if err != nil {
		return false
	}
	return v.Capabilities&flag == flag
}

// GetStoragePrices returns the storage price table of parameter 18 ordered by
// the time each entry becomes valid.
func (c *Config) GetStoragePrices() ([]StoragePrices, error) {
	p := c.GetParam(ConfigParamStoragePrices)
	if p == nil {
		return nil, &ConfigParamError{Param: ConfigParamStoragePrices}
	}

	kvs, err := p.AsDict(32).LoadAll()
	if err != nil {
		return nil, &ConfigParamError{Param: ConfigParamStoragePrices, Err: err}
	}

	prices := make([]StoragePrices, 0, len(kvs))
	for _, kv := range kvs {
		key, err := kv.Key.LoadUInt(32)
		if err != nil {
			return nil, &ConfigParamError{Param: ConfigParamStoragePrices, Err: err}
		}

		var entry StoragePrices
		if err := tlb.LoadFromCell(&entry, kv.Value); err != nil {
			return nil, &ConfigParamError{Param: ConfigParamStoragePrices, Err: err}
		}
		if uint64(entry.ValidSince) != key {
			return nil, &ConfigParamError{
				Param: ConfigParamStoragePrices,
				Err:   fmt.Errorf("entry %d is valid since %d", key, entry.ValidSince),
			}
		}
		prices = append(prices, entry)
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].ValidSince < prices[j].ValidSince
	})
	return prices, nil
}

// IsSpecialAccount reports whether addr is the configuration smart contract or
// one of the fundamental smart contracts of parameter 31.
func (c *Config) IsSpecialAccount(addr Address) bool {
	if !addr.IsMasterchain() {
		return false
	}

	if p := c.GetParam(ConfigParamConfigAddress); p != nil {
		data, err := p.BeginParse().LoadSlice(256)
		if err == nil && string(data) == string(addr.Data[:]) {
			return true
		}
	}

	p := c.GetParam(ConfigParamFundamentalSmc)
	if p == nil {
		return false
	}
	root, err := loadMaybeRefCell(p.BeginParse())
	if err != nil || root == nil {
		return false
	}

	key := cell.BeginCell()
	if err := key.StoreSlice(addr.Data[:], 256); err != nil {
		return false
	}
	_, err = root.AsDict(256).LoadValue(key.EndCell())
	return err == nil
}
