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

type MessageKind uint8

const (
	InternalMessage MessageKind = iota
	ExternalInMessage
	ExternalOutMessage
)

func (k MessageKind) String() string {
	switch k {
	case InternalMessage:
		return "internal"
	case ExternalInMessage:
		return "external-in"
	case ExternalOutMessage:
		return "external-out"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(k))
	}
}

// MsgInfo is a decoded CommonMsgInfo (or CommonMsgInfoRelaxed for outbound actions).
type MsgInfo struct {
	Kind        MessageKind
	IHRDisabled bool
	Bounce      bool
	Bounced     bool
	// Src is nil for addr_none and external sources.
	Src       *Address
	Dest      Address
	ExtSrc    *ExternalAddress
	ExtDest   *ExternalAddress
	Value     CurrencyCollection
	IHRFee    *uint256.Int
	FwdFee    *uint256.Int
	ImportFee *uint256.Int
	CreatedLT uint64
	CreatedAt uint32
}

// TickTock marks a special account as taking part in tick and/or tock transactions.
type TickTock struct {
	Tick bool
	Tock bool
}

type StateInit struct {
	SplitDepth *uint8
	Special    *TickTock
	Code       *cell.Cell
	Data       *cell.Cell
	Library    *cell.Cell
}

// Message is a decoded Message X.
type Message struct {
	Info    MsgInfo
	Init    *StateInit
	InitRef bool
	Body    *cell.Cell
	BodyRef bool
}

// IsExternalMessage reports whether the message info starts with a set bit.
func IsExternalMessage(c *cell.Cell) bool {
	if c == nil {
		return false
	}
	bit, err := c.BeginParse().LoadBoolBit()
	return err == nil && bit
}

// LoadMessage decodes a message cell. Relaxed outbound messages may carry addr_none as source.
func LoadMessage(c *cell.Cell) (*Message, error) {
	s := c.BeginParse()

	info, err := loadMsgInfo(s)
	if err != nil {
		return nil, fmt.Errorf("cannot unpack message info: %w", err)
	}

	msg := &Message{Info: info}

	hasInit, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if hasInit {
		if msg.InitRef, err = s.LoadBoolBit(); err != nil {
			return nil, err
		}

		initSlice := s
		if msg.InitRef {
			if initSlice, err = s.LoadRef(); err != nil {
				return nil, err
			}
		}
		if msg.Init, err = LoadStateInit(initSlice); err != nil {
			return nil, fmt.Errorf("cannot unpack message state init: %w", err)
		}
	}

	if msg.BodyRef, err = s.LoadBoolBit(); err != nil {
		return nil, err
	}
	if msg.BodyRef {
		msg.Body, err = s.LoadRefCell()
	} else {
		msg.Body, err = s.ToCell()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot unpack message body: %w", err)
	}

	return msg, nil
}

func loadMsgInfo(s *cell.Slice) (MsgInfo, error) {
	var info MsgInfo

	external, err := s.LoadBoolBit()
	if err != nil {
		return info, err
	}

	if !external {
		info.Kind = InternalMessage
		for _, f := range []*bool{&info.IHRDisabled, &info.Bounce, &info.Bounced} {
			if *f, err = s.LoadBoolBit(); err != nil {
				return info, err
			}
		}
		if info.Src, err = skipAddress(s); err != nil {
			return info, err
		}
		if info.Dest, err = LoadAddressInt(s); err != nil {
			return info, err
		}
		if info.Value, err = LoadCurrencyCollection(s); err != nil {
			return info, err
		}
		if info.IHRFee, err = LoadGrams(s); err != nil {
			return info, err
		}
		if info.FwdFee, err = LoadGrams(s); err != nil {
			return info, err
		}
		return info, loadCreated(s, &info)
	}

	out, err := s.LoadBoolBit()
	if err != nil {
		return info, err
	}

	if !out {
		info.Kind = ExternalInMessage
		if info.ExtSrc, err = LoadAddressExt(s); err != nil {
			return info, err
		}
		if info.Dest, err = LoadAddressInt(s); err != nil {
			return info, err
		}
		info.ImportFee, err = LoadGrams(s)
		return info, err
	}

	info.Kind = ExternalOutMessage
	if info.Src, err = skipAddress(s); err != nil {
		return info, err
	}
	if info.ExtDest, err = LoadAddressExt(s); err != nil {
		return info, err
	}
	return info, loadCreated(s, &info)
}

func loadCreated(s *cell.Slice, info *MsgInfo) error {
	lt, err := s.LoadUInt(64)
	if err != nil {
		return err
	}
	at, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	info.CreatedLT, info.CreatedAt = lt, uint32(at)
	return nil
}

func storeMsgInfo(b *cell.Builder, info MsgInfo) error {
	switch info.Kind {
	case InternalMessage:
		if err := b.StoreBoolBit(false); err != nil {
			return err
		}
		for _, f := range []bool{info.IHRDisabled, info.Bounce, info.Bounced} {
			if err := b.StoreBoolBit(f); err != nil {
				return err
			}
		}
		if err := storeMaybeAddressInt(b, info.Src); err != nil {
			return err
		}
		if err := StoreAddressInt(b, info.Dest); err != nil {
			return err
		}
		if err := StoreCurrencyCollection(b, info.Value); err != nil {
			return err
		}
		if err := StoreGrams(b, info.IHRFee); err != nil {
			return err
		}
		if err := StoreGrams(b, info.FwdFee); err != nil {
			return err
		}
	case ExternalInMessage:
		if err := b.StoreUInt(0b10, 2); err != nil {
			return err
		}
		if err := StoreAddressExt(b, info.ExtSrc); err != nil {
			return err
		}
		if err := StoreAddressInt(b, info.Dest); err != nil {
			return err
		}
		return StoreGrams(b, info.ImportFee)
	case ExternalOutMessage:
		if err := b.StoreUInt(0b11, 2); err != nil {
			return err
		}
		if err := storeMaybeAddressInt(b, info.Src); err != nil {
			return err
		}
		if err := StoreAddressExt(b, info.ExtDest); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown message kind %s", info.Kind)
	}

	if err := b.StoreUInt(info.CreatedLT, 64); err != nil {
		return err
	}
	return b.StoreUInt(uint64(info.CreatedAt), 32)
}

func storeMaybeAddressInt(b *cell.Builder, addr *Address) error {
	if addr == nil {
		return b.StoreUInt(0, 2)
	}
	return StoreAddressInt(b, *addr)
}

// ToCell serializes the message. State init and body keep their layout unless
// they no longer fit into the root cell, in which case they are moved into references.
func (m *Message) ToCell() (*cell.Cell, error) {
	info := cell.BeginCell()
	if err := storeMsgInfo(info, m.Info); err != nil {
		return nil, err
	}

	var initCell *cell.Cell
	if m.Init != nil {
		var err error
		if initCell, err = m.Init.ToCell(); err != nil {
			return nil, err
		}
	}

	initRef, bodyRef := m.InitRef, m.BodyRef
	fits := func() bool {
		bits, refs := info.BitsUsed()+2, info.RefsUsed()
		if initCell != nil {
			bits++
			if initRef {
				refs++
			} else {
				bits += initCell.BitsSize()
				refs += int(initCell.RefsNum())
			}
		}
		if m.Body != nil {
			if bodyRef {
				refs++
			} else {
				bits += m.Body.BitsSize()
				refs += int(m.Body.RefsNum())
			}
		}
		return bits <= 1023 && refs <= 4
	}
	if !fits() && m.Body != nil {
		bodyRef = true
	}
	if !fits() && initCell != nil {
		initRef = true
	}

	b := info
	if initCell == nil {
		if err := b.StoreBoolBit(false); err != nil {
			return nil, err
		}
	} else {
		if err := b.StoreUInt(1, 1); err != nil {
			return nil, err
		}
		if err := storeEither(b, initCell, initRef); err != nil {
			return nil, err
		}
	}

	body := m.Body
	if body == nil {
		body = cell.BeginCell().EndCell()
	}
	if err := storeEither(b, body, bodyRef); err != nil {
		return nil, err
	}

	return b.EndCell(), nil
}

func storeEither(b *cell.Builder, c *cell.Cell, asRef bool) error {
	if err := b.StoreBoolBit(asRef); err != nil {
		return err
	}
	if asRef {
		return b.StoreRef(c)
	}
	return appendCell(b, c)
}

// LoadStateInit reads a StateInit record.
func LoadStateInit(s *cell.Slice) (*StateInit, error) {
	si := &StateInit{}

	hasDepth, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if hasDepth {
		depth, err := s.LoadUInt(5)
		if err != nil {
			return nil, err
		}
		d := uint8(depth)
		si.SplitDepth = &d
	}

	hasSpecial, err := s.LoadBoolBit()
	if err != nil {
		return nil, err
	}
	if hasSpecial {
		tt := &TickTock{}
		if tt.Tick, err = s.LoadBoolBit(); err != nil {
			return nil, err
		}
		if tt.Tock, err = s.LoadBoolBit(); err != nil {
			return nil, err
		}
		si.Special = tt
	}

	for _, ref := range []**cell.Cell{&si.Code, &si.Data, &si.Library} {
		if *ref, err = loadMaybeRefCell(s); err != nil {
			return nil, err
		}
	}
	return si, nil
}

func storeStateInit(b *cell.Builder, si *StateInit) error {
	if si.SplitDepth == nil {
		if err := b.StoreBoolBit(false); err != nil {
			return err
		}
	} else {
		if err := b.StoreBoolBit(true); err != nil {
			return err
		}
		if err := b.StoreUInt(uint64(*si.SplitDepth), 5); err != nil {
			return err
		}
	}

	if si.Special == nil {
		if err := b.StoreBoolBit(false); err != nil {
			return err
		}
	} else {
		for _, f := range []bool{true, si.Special.Tick, si.Special.Tock} {
			if err := b.StoreBoolBit(f); err != nil {
				return err
			}
		}
	}

	for _, ref := range []*cell.Cell{si.Code, si.Data, si.Library} {
		if err := b.StoreMaybeRef(ref); err != nil {
			return err
		}
	}
	return nil
}

// ToCell returns the standalone StateInit cell; its hash is the address of the deployed account.
func (si *StateInit) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()
	if err := storeStateInit(b, si); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}
