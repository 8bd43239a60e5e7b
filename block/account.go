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
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// AccountStatus uses the AccountStatus TL-B encoding.
type AccountStatus uint8

const (
	StatusUninit   AccountStatus = 0b00
	StatusFrozen   AccountStatus = 0b01
	StatusActive   AccountStatus = 0b10
	StatusNonexist AccountStatus = 0b11
)

func (s AccountStatus) String() string {
	switch s {
	case StatusUninit:
		return "uninit"
	case StatusFrozen:
		return "frozen"
	case StatusActive:
		return "active"
	case StatusNonexist:
		return "nonexist"
	default:
		return fmt.Sprintf("AccountStatus(%d)", uint8(s))
	}
}

// Account is the mutable state of a single smart contract together with the
// shard-level bookkeeping of its last transaction.
type Account struct {
	Address    Address
	Status     AccountStatus
	Balance    CurrencyCollection
	SplitDepth *uint8
	Special    *TickTock
	Code       *cell.Cell
	Data       *cell.Cell
	Library    *cell.Cell
	FrozenHash [32]byte

	StorageStat StorageUsed
	LastPaid    uint32
	DuePayment  *uint256.Int
	// StorageLT is the last_trans_lt field of AccountStorage.
	StorageLT uint64

	LastTransLT   uint64
	LastTransHash [32]byte

	// Now is the unix time the account is being processed at.
	Now       uint32
	IsSpecial bool

	// TotalState is the serialized Account cell; its hash is the account state hash.
	TotalState *cell.Cell
}

func (a *Account) Workchain() int32 {
	return a.Address.Workchain
}

// StateHash returns the representation hash of the total state cell.
func (a *Account) StateHash() []byte {
	if a.TotalState == nil {
		return nil
	}
	return a.TotalState.Hash()
}

// NewEmptyAccount returns a non-existent account at addr.
func NewEmptyAccount(addr Address) (*Account, error) {
	acc := &Account{
		Address:    addr,
		Status:     StatusNonexist,
		Balance:    NewCurrencyCollection(0),
		DuePayment: new(uint256.Int),
	}

	state, err := acc.BuildState()
	if err != nil {
		return nil, err
	}
	acc.TotalState = state
	return acc, nil
}

// UnpackShardAccount decodes a ShardAccount cell: a reference to the account
// followed by the hash and lt of its last transaction.
func UnpackShardAccount(c *cell.Cell) (*Account, error) {
	s := c.BeginParse()

	state, err := s.LoadRefCell()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack shard account: %w", err)
	}
	hash, err := s.LoadSlice(256)
	if err != nil {
		return nil, fmt.Errorf("cannot unpack shard account: %w", err)
	}
	lt, err := s.LoadUInt(64)
	if err != nil {
		return nil, fmt.Errorf("cannot unpack shard account: %w", err)
	}

	acc, err := UnpackAccount(state)
	if err != nil {
		return nil, err
	}
	copy(acc.LastTransHash[:], hash)
	acc.LastTransLT = lt
	return acc, nil
}

// PackShardAccount is the inverse of UnpackShardAccount.
func (a *Account) PackShardAccount() (*cell.Cell, error) {
	if a.TotalState == nil {
		return nil, fmt.Errorf("account %s has no state cell", a.Address)
	}

	b := cell.BeginCell()
	if err := b.StoreRef(a.TotalState); err != nil {
		return nil, err
	}
	if err := b.StoreSlice(a.LastTransHash[:], 256); err != nil {
		return nil, err
	}
	if err := b.StoreUInt(a.LastTransLT, 64); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// UnpackAccount decodes an Account cell. The result of account_none has a
// zero address which the caller is expected to fill in.
func UnpackAccount(c *cell.Cell) (*Account, error) {
	acc := &Account{
		Status:     StatusNonexist,
		Balance:    NewCurrencyCollection(0),
		DuePayment: new(uint256.Int),
		TotalState: c,
	}

	s := c.BeginParse()
	exists, err := s.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack account: %w", err)
	}
	if !exists {
		return acc, nil
	}

	if err := acc.load(s); err != nil {
		return nil, fmt.Errorf("cannot unpack account: %w", err)
	}
	return acc, nil
}

func (a *Account) load(s *cell.Slice) (err error) {
	if a.Address, err = LoadAddressInt(s); err != nil {
		return err
	}
	if a.StorageStat, err = LoadStorageUsed(s); err != nil {
		return err
	}

	paid, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	a.LastPaid = uint32(paid)

	if a.DuePayment, err = LoadMaybeGrams(s); err != nil {
		return err
	}
	if a.StorageLT, err = s.LoadUInt(64); err != nil {
		return err
	}
	if a.Balance, err = LoadCurrencyCollection(s); err != nil {
		return err
	}

	active, err := s.LoadBoolBit()
	if err != nil {
		return err
	}
	if active {
		si, err := LoadStateInit(s)
		if err != nil {
			return err
		}
		a.Status = StatusActive
		a.SplitDepth, a.Special = si.SplitDepth, si.Special
		a.Code, a.Data, a.Library = si.Code, si.Data, si.Library
		return nil
	}

	frozen, err := s.LoadBoolBit()
	if err != nil {
		return err
	}
	if !frozen {
		a.Status = StatusUninit
		return nil
	}

	hash, err := s.LoadSlice(256)
	if err != nil {
		return err
	}
	a.Status = StatusFrozen
	copy(a.FrozenHash[:], hash)
	return nil
}

// StateInit returns the contract state of an active account.
func (a *Account) StateInit() *StateInit {
	return &StateInit{
		SplitDepth: a.SplitDepth,
		Special:    a.Special,
		Code:       a.Code,
		Data:       a.Data,
		Library:    a.Library,
	}
}

// BuildStorage serializes AccountStorage for the current fields.
func (a *Account) BuildStorage() (*cell.Cell, error) {
	b := cell.BeginCell()
	if err := b.StoreUInt(a.StorageLT, 64); err != nil {
		return nil, err
	}
	if err := StoreCurrencyCollection(b, a.Balance); err != nil {
		return nil, err
	}

	switch a.Status {
	case StatusActive:
		if err := b.StoreBoolBit(true); err != nil {
			return nil, err
		}
		if err := storeStateInit(b, a.StateInit()); err != nil {
			return nil, err
		}
	case StatusFrozen:
		if err := b.StoreUInt(0b01, 2); err != nil {
			return nil, err
		}
		if err := b.StoreSlice(a.FrozenHash[:], 256); err != nil {
			return nil, err
		}
	case StatusUninit:
		if err := b.StoreUInt(0b00, 2); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("account in status %s has no storage", a.Status)
	}
	return b.EndCell(), nil
}

// BuildState serializes the whole Account cell, refreshing the storage
// statistics from the storage tree. Non-existent accounts become account_none.
func (a *Account) BuildState() (*cell.Cell, error) {
	if a.Status == StatusNonexist {
		return cell.BeginCell().MustStoreUInt(0, 1).EndCell(), nil
	}

	storage, err := a.BuildStorage()
	if err != nil {
		return nil, err
	}
	a.StorageStat = ComputeStorageUsed(storage, true)

	b := cell.BeginCell()
	if err := b.StoreBoolBit(true); err != nil {
		return nil, err
	}
	if err := StoreAddressInt(b, a.Address); err != nil {
		return nil, err
	}
	if err := StoreStorageUsed(b, a.StorageStat); err != nil {
		return nil, err
	}
	if err := b.StoreUInt(uint64(a.LastPaid), 32); err != nil {
		return nil, err
	}
	if err := StoreMaybeGrams(b, a.DuePayment); err != nil {
		return nil, err
	}
	if err := appendCell(b, storage); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// Copy returns an account whose mutable fields are independent of a.
func (a *Account) Copy() *Account {
	c := *a
	c.Balance = a.Balance.Copy()
	if a.DuePayment != nil {
		c.DuePayment = new(uint256.Int).Set(a.DuePayment)
	}
	return &c
}

// ComputeStorageFees returns the rent owed for the period between the last
// payment and now, integrating over the price table.
func (a *Account) ComputeStorageFees(now uint32, prices []StoragePrices) *uint256.Int {
	total := new(uint256.Int)
	if a.IsSpecial || now <= a.LastPaid || a.LastPaid == 0 || len(prices) == 0 || now <= prices[0].ValidSince {
		return total
	}

	upto := a.LastPaid
	if prices[0].ValidSince > upto {
		upto = prices[0].ValidSince
	}

	cells := uint256.NewInt(a.StorageStat.Cells)
	bits := uint256.NewInt(a.StorageStat.Bits)

	for i, p := range prices {
		validUntil := now
		if i < len(prices)-1 && prices[i+1].ValidSince < now {
			validUntil = prices[i+1].ValidSince
		}

		if upto < validUntil {
			bitPrice, cellPrice := p.BitPrice, p.CellPrice
			if a.Address.IsMasterchain() {
				bitPrice, cellPrice = p.MCBitPrice, p.MCCellPrice
			}

			v := new(uint256.Int).Mul(cells, uint256.NewInt(cellPrice))
			v.Add(v, new(uint256.Int).Mul(bits, uint256.NewInt(bitPrice)))
			v.Mul(v, uint256.NewInt(uint64(validUntil-upto)))
			total.Add(total, v)
		}
		if validUntil > upto {
			upto = validUntil
		}
	}

	return shiftCeil(total, 16)
}
