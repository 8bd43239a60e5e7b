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
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// LoadGrams reads a Grams (VarUInteger 16) amount in nanotons.
func LoadGrams(s *cell.Slice) (*uint256.Int, error) {
	v, err := s.LoadBigCoins()
	if err != nil {
		return nil, err
	}
	return FromBig(v)
}

func StoreGrams(b *cell.Builder, v *uint256.Int) error {
	if v == nil {
		v = new(uint256.Int)
	}
	return b.StoreBigCoins(v.ToBig())
}

// LoadMaybeGrams reads (Maybe Grams), returning zero when absent.
func LoadMaybeGrams(s *cell.Slice) (*uint256.Int, error) {
	has, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if !has {
		return new(uint256.Int), nil
	}
	return LoadGrams(s)
}

// StoreMaybeGrams writes (Maybe Grams), omitting zero and nil values.
func StoreMaybeGrams(b *cell.Builder, v *uint256.Int) error {
	if v == nil || v.IsZero() {
		return b.StoreBoolBit(false)
	}
	if err := b.StoreBoolBit(true); err != nil {
		return err
	}
	return StoreGrams(b, v)
}

func FromBig(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrValueOverflow
	}
	return u, nil
}

// LoadVarUInt reads a VarUInteger n whose value fits into 64 bits.
func LoadVarUInt(s *cell.Slice, n uint) (uint64, error) {
	l, err := s.LoadUInt(lenBits(n))
	if err != nil {
		return 0, err
	}
	if l == 0 {
		return 0, nil
	}
	if l > 8 {
		return 0, fmt.Errorf("VarUInteger of %d bytes does not fit 64 bits", l)
	}
	return s.LoadUInt(uint(l) * 8)
}

func StoreVarUInt(b *cell.Builder, n uint, v uint64) error {
	l := uint(bits.Len64(v)+7) / 8
	if l >= n {
		return fmt.Errorf("value %d does not fit VarUInteger %d", v, n)
	}
	if err := b.StoreUInt(uint64(l), lenBits(n)); err != nil {
		return err
	}
	if l == 0 {
		return nil
	}
	return b.StoreUInt(v, l*8)
}

func lenBits(n uint) uint {
	return uint(bits.Len(n - 1))
}

// CurrencyCollection is an amount of nanotons plus an optional extra currency dictionary.
type CurrencyCollection struct {
	Grams *uint256.Int
	Extra *cell.Cell
}

func NewCurrencyCollection(grams uint64) CurrencyCollection {
	return CurrencyCollection{Grams: uint256.NewInt(grams)}
}

func LoadCurrencyCollection(s *cell.Slice) (CurrencyCollection, error) {
	grams, err := LoadGrams(s)
	if err != nil {
		return CurrencyCollection{}, err
	}

	extra, err := loadMaybeRefCell(s)
	if err != nil {
		return CurrencyCollection{}, err
	}

	return CurrencyCollection{Grams: grams, Extra: extra}, nil
}

func StoreCurrencyCollection(b *cell.Builder, c CurrencyCollection) error {
	if err := StoreGrams(b, c.Grams); err != nil {
		return err
	}
	return b.StoreMaybeRef(c.Extra)
}

// Copy returns a collection that does not share the grams value.
func (c CurrencyCollection) Copy() CurrencyCollection {
	res := CurrencyCollection{Grams: new(uint256.Int), Extra: c.Extra}
	if c.Grams != nil {
		res.Grams.Set(c.Grams)
	}
	return res
}

// Add credits o into c. Extra currencies are only carried over when c has none.
func (c *CurrencyCollection) Add(o CurrencyCollection) error {
	if c.Grams == nil {
		c.Grams = new(uint256.Int)
	}
	if o.Grams != nil {
		if _, overflow := c.Grams.AddOverflow(c.Grams, o.Grams); overflow {
			return ErrValueOverflow
		}
	}

	if o.Extra != nil {
		if c.Extra != nil {
			return ErrExtraCurrencyMerge
		}
		c.Extra = o.Extra
	}
	return nil
}

func loadMaybeRefCell(s *cell.Slice) (*cell.Cell, error) {
	has, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return s.LoadRefCell()
}
