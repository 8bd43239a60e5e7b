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

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// MsgPrices are the message forwarding prices of configuration parameters 24 and 25.
type MsgPrices struct {
	_            tlb.Magic `tlb:"#ea"`
	LumpPrice    uint64    `tlb:"## 64"`
	BitPrice     uint64    `tlb:"## 64"`
	CellPrice    uint64    `tlb:"## 64"`
	IhrPriceFrac uint32    `tlb:"## 32"`
	FirstFrac    uint16    `tlb:"## 16"`
	NextFrac     uint16    `tlb:"## 16"`
}

func ParseMsgPrices(c *cell.Cell) (*MsgPrices, error) {
	var prices MsgPrices
	if err := tlb.LoadFromCell(&prices, c.BeginParse()); err != nil {
		return nil, err
	}
	return &prices, nil
}

// ComputeFwdFees returns lump + ceil((bit_price*bits + cell_price*cells) / 2^16).
func (p *MsgPrices) ComputeFwdFees(cells, bits uint64) *uint256.Int {
	v := new(uint256.Int).Mul(uint256.NewInt(p.BitPrice), uint256.NewInt(bits))
	v.Add(v, new(uint256.Int).Mul(uint256.NewInt(p.CellPrice), uint256.NewInt(cells)))
	v = shiftCeil(v, 16)
	return v.Add(v, uint256.NewInt(p.LumpPrice))
}

// FirstPart is the share of a forwarding fee collected by the sending shard.
func (p *MsgPrices) FirstPart(fwd *uint256.Int) *uint256.Int {
	return fraction(fwd, uint64(p.FirstFrac))
}

func (p *MsgPrices) NextPart(fwd *uint256.Int) *uint256.Int {
	return fraction(fwd, uint64(p.NextFrac))
}

func (p *MsgPrices) IhrFee(fwd *uint256.Int) *uint256.Int {
	return fraction(fwd, uint64(p.IhrPriceFrac))
}

func fraction(v *uint256.Int, frac uint64) *uint256.Int {
	res := new(uint256.Int).Mul(v, uint256.NewInt(frac))
	return res.Rsh(res, 16)
}

func shiftCeil(v *uint256.Int, n uint) *uint256.Int {
	mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), n), uint256.NewInt(1))
	rem := new(uint256.Int).And(v, mask)
	res := new(uint256.Int).Rsh(v, n)
	if !rem.IsZero() {
		res.AddUint64(res, 1)
	}
	return res
}

const (
	gasFlatPfxTag   = 0xd1
	gasPricesTag    = 0xdd
	gasPricesExtTag = 0xde
)

// GasLimitsPrices holds the gas parameters of configuration parameters 20 and 21.
type GasLimitsPrices struct {
	FlatGasLimit    uint64
	FlatGasPrice    uint64
	GasPrice        uint64
	GasLimit        uint64
	SpecialGasLimit uint64
	GasCredit       uint64
	BlockGasLimit   uint64
	FreezeDueLimit  uint64
	DeleteDueLimit  uint64
}

func ParseGasLimitsPrices(c *cell.Cell) (*GasLimitsPrices, error) {
	g := &GasLimitsPrices{}
	if err := g.load(c.BeginParse(), true); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GasLimitsPrices) load(s *cell.Slice, allowFlat bool) error {
	tag, err := s.LoadUInt(8)
	if err != nil {
		return err
	}

	switch {
	case tag == gasFlatPfxTag && allowFlat:
		if g.FlatGasLimit, err = s.LoadUInt(64); err != nil {
			return err
		}
		if g.FlatGasPrice, err = s.LoadUInt(64); err != nil {
			return err
		}
		return g.load(s, false)
	case tag == gasPricesTag:
		return g.loadFields(s, false)
	case tag == gasPricesExtTag:
		return g.loadFields(s, true)
	default:
		return fmt.Errorf("%w: gas limits and prices tag %#x", ErrUnsupportedPrefix, tag)
	}
}

func (g *GasLimitsPrices) loadFields(s *cell.Slice, ext bool) error {
	fields := []*uint64{&g.GasPrice, &g.GasLimit}
	if ext {
		fields = append(fields, &g.SpecialGasLimit)
	}
	fields = append(fields, &g.GasCredit, &g.BlockGasLimit, &g.FreezeDueLimit, &g.DeleteDueLimit)

	for _, f := range fields {
		v, err := s.LoadUInt(64)
		if err != nil {
			return err
		}
		*f = v
	}

	if !ext {
		g.SpecialGasLimit = g.GasLimit
	}
	return nil
}

// ComputeGasPrice returns the nanoton price of gasUsed units including the flat part.
func (g *GasLimitsPrices) ComputeGasPrice(gasUsed uint64) *uint256.Int {
	if gasUsed <= g.FlatGasLimit {
		return uint256.NewInt(g.FlatGasPrice)
	}

	v := new(uint256.Int).Mul(uint256.NewInt(gasUsed-g.FlatGasLimit), uint256.NewInt(g.GasPrice))
	v = shiftCeil(v, 16)
	return v.AddUint64(v, g.FlatGasPrice)
}

// GasBoughtFor returns how much gas the given amount of nanotons buys, capped by the gas limit.
func (g *GasLimitsPrices) GasBoughtFor(nanotons *uint256.Int) uint64 {
	if nanotons == nil || nanotons.IsZero() || g.GasPrice == 0 {
		return 0
	}
	if nanotons.Cmp(g.ComputeGasPrice(g.GasLimit)) >= 0 {
		return g.GasLimit
	}
	if nanotons.LtUint64(g.FlatGasPrice) {
		return 0
	}

	v := new(uint256.Int).SubUint64(nanotons, g.FlatGasPrice)
	v.Lsh(v, 16)
	v.Div(v, uint256.NewInt(g.GasPrice))
	return v.Uint64() + g.FlatGasLimit
}

// StoragePrices is one entry of the configuration parameter 18 dictionary.
type StoragePrices struct {
	_           tlb.Magic `tlb:"#cc"`
	ValidSince  uint32    `tlb:"## 32"`
	BitPrice    uint64    `tlb:"## 64"`
	CellPrice   uint64    `tlb:"## 64"`
	MCBitPrice  uint64    `tlb:"## 64"`
	MCCellPrice uint64    `tlb:"## 64"`
}

// BlockCreateFees is configuration parameter 14.
type BlockCreateFees struct {
	_              tlb.Magic `tlb:"#6b"`
	MasterchainFee tlb.Coins `tlb:"."`
	BasechainFee   tlb.Coins `tlb:"."`
}

func ParseBlockCreateFees(c *cell.Cell) (*BlockCreateFees, error) {
	var fees BlockCreateFees
	if err := tlb.LoadFromCell(&fees, c.BeginParse()); err != nil {
		return nil, err
	}
	return &fees, nil
}

// GlobalVersion is configuration parameter 8.
type GlobalVersion struct {
	_            tlb.Magic `tlb:"#c4"`
	Version      uint32    `tlb:"## 32"`
	Capabilities uint64    `tlb:"## 64"`
}
