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

	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	transactionTag = 0b0111
	hashUpdateTag  = 0x72
	outMsgKeyBits  = 15
)

// HashUpdate is the old and new account state hashes recorded by a transaction.
type HashUpdate struct {
	OldHash [32]byte
	NewHash [32]byte
}

func LoadHashUpdate(c *cell.Cell) (HashUpdate, error) {
	var hu HashUpdate
	s := c.BeginParse()

	tag, err := s.LoadUInt(8)
	if err != nil {
		return hu, err
	}
	if tag != hashUpdateTag {
		return hu, fmt.Errorf("%w: hash update tag %#x", ErrUnsupportedPrefix, tag)
	}

	for _, h := range []*[32]byte{&hu.OldHash, &hu.NewHash} {
		data, err := s.LoadSlice(256)
		if err != nil {
			return hu, err
		}
		copy(h[:], data)
	}
	return hu, nil
}

func (hu HashUpdate) ToCell() *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(hashUpdateTag, 8).
		MustStoreSlice(hu.OldHash[:], 256).
		MustStoreSlice(hu.NewHash[:], 256).
		EndCell()
}

// TransactionRecord is a decoded transaction$0111 cell.
type TransactionRecord struct {
	AccountAddr [32]byte
	LT          uint64
	PrevTxHash  [32]byte
	PrevTxLT    uint64
	Now         uint32
	OutMsgCount uint16
	OrigStatus  AccountStatus
	EndStatus   AccountStatus
	InMsg       *cell.Cell
	OutMsgs     []*cell.Cell
	TotalFees   CurrencyCollection
	StateUpdate *cell.Cell
	Description *cell.Cell

	root *cell.Cell
}

// Cell returns the cell the record was decoded from.
func (r *TransactionRecord) Cell() *cell.Cell {
	return r.root
}

// Hash returns the representation hash of the transaction cell.
func (r *TransactionRecord) Hash() []byte {
	return r.root.Hash()
}

// HashUpdate decodes the state update of the transaction.
func (r *TransactionRecord) HashUpdate() (HashUpdate, error) {
	return LoadHashUpdate(r.StateUpdate)
}

func UnpackTransaction(c *cell.Cell) (*TransactionRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("transaction cell is nil")
	}

	r := &TransactionRecord{root: c}
	if err := r.load(c.BeginParse()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *TransactionRecord) load(s *cell.Slice) error {
	tag, err := s.LoadUInt(4)
	if err != nil {
		return err
	}
	if tag != transactionTag {
		return fmt.Errorf("%w: transaction tag %04b", ErrUnsupportedPrefix, tag)
	}

	if err := loadBits256(s, &r.AccountAddr); err != nil {
		return err
	}
	if r.LT, err = s.LoadUInt(64); err != nil {
		return err
	}
	if err := loadBits256(s, &r.PrevTxHash); err != nil {
		return err
	}
	if r.PrevTxLT, err = s.LoadUInt(64); err != nil {
		return err
	}

	now, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	r.Now = uint32(now)

	cnt, err := s.LoadUInt(15)
	if err != nil {
		return err
	}
	r.OutMsgCount = uint16(cnt)

	orig, err := s.LoadUInt(2)
	if err != nil {
		return err
	}
	end, err := s.LoadUInt(2)
	if err != nil {
		return err
	}
	r.OrigStatus, r.EndStatus = AccountStatus(orig), AccountStatus(end)

	msgs, err := s.LoadRef()
	if err != nil {
		return err
	}
	if r.InMsg, err = loadMaybeRefCell(msgs); err != nil {
		return err
	}
	if r.OutMsgs, err = loadOutMsgs(msgs); err != nil {
		return err
	}

	if r.TotalFees, err = LoadCurrencyCollection(s); err != nil {
		return err
	}
	if r.StateUpdate, err = s.LoadRefCell(); err != nil {
		return err
	}
	if r.Description, err = s.LoadRefCell(); err != nil {
		return err
	}
	return nil
}

func loadOutMsgs(s *cell.Slice) ([]*cell.Cell, error) {
	root, err := loadMaybeRefCell(s)
	if err != nil || root == nil {
		return nil, err
	}

	kvs, err := root.AsDict(outMsgKeyBits).LoadAll()
	if err != nil {
		return nil, err
	}

	msgs := make([]*cell.Cell, 0, len(kvs))
	for _, kv := range kvs {
		msg, err := kv.Value.LoadRefCell()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// ToCell serializes the record into a transaction$0111 cell.
func (r *TransactionRecord) ToCell() (*cell.Cell, error) {
	msgs := cell.BeginCell()
	if err := msgs.StoreMaybeRef(r.InMsg); err != nil {
		return nil, err
	}

	var outRoot *cell.Cell
	if len(r.OutMsgs) > 0 {
		dict := cell.NewDict(outMsgKeyBits)
		for i, msg := range r.OutMsgs {
			value := cell.BeginCell()
			if err := value.StoreRef(msg); err != nil {
				return nil, err
			}
			if err := dict.SetIntKey(big.NewInt(int64(i)), value.EndCell()); err != nil {
				return nil, err
			}
		}
		outRoot = dict.AsCell()
	}
	if err := msgs.StoreMaybeRef(outRoot); err != nil {
		return nil, err
	}

	b := cell.BeginCell()
	steps := []func() error{
		func() error { return b.StoreUInt(transactionTag, 4) },
		func() error { return b.StoreSlice(r.AccountAddr[:], 256) },
		func() error { return b.StoreUInt(r.LT, 64) },
		func() error { return b.StoreSlice(r.PrevTxHash[:], 256) },
		func() error { return b.StoreUInt(r.PrevTxLT, 64) },
		func() error { return b.StoreUInt(uint64(r.Now), 32) },
		func() error { return b.StoreUInt(uint64(len(r.OutMsgs)), 15) },
		func() error { return b.StoreUInt(uint64(r.OrigStatus), 2) },
		func() error { return b.StoreUInt(uint64(r.EndStatus), 2) },
		func() error { return b.StoreRef(msgs.EndCell()) },
		func() error { return StoreCurrencyCollection(b, r.TotalFees) },
		func() error { return b.StoreRef(r.StateUpdate) },
		func() error { return b.StoreRef(r.Description) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	r.root = b.EndCell()
	r.OutMsgCount = uint16(len(r.OutMsgs))
	return r.root, nil
}

func loadBits256(s *cell.Slice, dst *[32]byte) error {
	data, err := s.LoadSlice(256)
	if err != nil {
		return err
	}
	copy(dst[:], data)
	return nil
}
