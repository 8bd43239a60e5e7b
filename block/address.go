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
	"encoding/hex"
	"fmt"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	MasterchainID int32 = -1
	BasechainID   int32 = 0
)

// Address is a standard internal account address (addr_std without anycast).
type Address struct {
	Workchain int32
	Data      [32]byte
}

func (a Address) IsMasterchain() bool {
	return a.Workchain == MasterchainID
}

// String returns the raw "workchain:hex" form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%s", a.Workchain, hex.EncodeToString(a.Data[:]))
}

// ParseAddress parses the raw "workchain:hex" form.
func ParseAddress(s string) (Address, error) {
	var (
		wc   int32
		data string
	)
	if _, err := fmt.Sscanf(s, "%d:%s", &wc, &data); err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}

	raw, err := hex.DecodeString(data)
	if err != nil || len(raw) != 32 {
		return Address{}, fmt.Errorf("invalid address %q: expected 32 bytes of hex", s)
	}

	addr := Address{Workchain: wc}
	copy(addr.Data[:], raw)
	return addr, nil
}

// ExternalAddress is an addr_extern value. A nil *ExternalAddress stands for addr_none.
type ExternalAddress struct {
	Bits uint
	Data []byte
}

// LoadAddressInt reads a MsgAddressInt. Anycast addresses are not supported.
func LoadAddressInt(s *cell.Slice) (Address, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return Address{}, err
	}

	anycast, err := s.LoadBoolBit()
	if err != nil {
		return Address{}, err
	}
	if anycast {
		return Address{}, ErrAnycastAddress
	}

	var addr Address
	switch tag {
	case 0b10:
		wc, err := s.LoadInt(8)
		if err != nil {
			return Address{}, err
		}
		addr.Workchain = int32(wc)
	case 0b11:
		l, err := s.LoadUInt(9)
		if err != nil {
			return Address{}, err
		}
		if l != 256 {
			return Address{}, fmt.Errorf("unsupported addr_var length %d", l)
		}
		wc, err := s.LoadInt(32)
		if err != nil {
			return Address{}, err
		}
		addr.Workchain = int32(wc)
	default:
		return Address{}, fmt.Errorf("address tag %02b is not an internal address", tag)
	}

	data, err := s.LoadSlice(256)
	if err != nil {
		return Address{}, err
	}
	copy(addr.Data[:], data)

	return addr, nil
}

// StoreAddressInt writes addr as addr_std.
func StoreAddressInt(b *cell.Builder, addr Address) error {
	if addr.Workchain < -128 || addr.Workchain > 127 {
		return fmt.Errorf("workchain %d does not fit addr_std", addr.Workchain)
	}

	if err := b.StoreUInt(0b100, 3); err != nil {
		return err
	}
	if err := b.StoreInt(int64(addr.Workchain), 8); err != nil {
		return err
	}
	return b.StoreSlice(addr.Data[:], 256)
}

// LoadAddressExt reads a MsgAddressExt, returning nil for addr_none.
func LoadAddressExt(s *cell.Slice) (*ExternalAddress, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0b00:
		return nil, nil
	case 0b01:
		l, err := s.LoadUInt(9)
		if err != nil {
			return nil, err
		}
		data, err := s.LoadSlice(uint(l))
		if err != nil {
			return nil, err
		}
		return &ExternalAddress{Bits: uint(l), Data: data}, nil
	default:
		return nil, fmt.Errorf("address tag %02b is not an external address", tag)
	}
}

func StoreAddressExt(b *cell.Builder, addr *ExternalAddress) error {
	if addr == nil {
		return b.StoreUInt(0, 2)
	}

	if err := b.StoreUInt(0b01, 2); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(addr.Bits), 9); err != nil {
		return err
	}
	if addr.Bits == 0 {
		return nil
	}
	return b.StoreSlice(addr.Data, addr.Bits)
}

// skipAddress consumes any MsgAddress and reports whether it was an internal one.
func skipAddress(s *cell.Slice) (*Address, error) {
	tag, err := s.Copy().LoadUInt(2)
	if err != nil {
		return nil, err
	}

	if tag&0b10 == 0 {
		_, err := LoadAddressExt(s)
		return nil, err
	}

	addr, err := LoadAddressInt(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
