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
	"fmt"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	descrOrdinaryTag     = 0b0000
	descrStorageTag      = 0b0001
	descrTickTockTag     = 0b001
	descrSplitPrepareTag = 0b0100
	descrSplitInstallTag = 0b0101
	descrMergePrepareTag = 0b0110
	descrMergeInstallTag = 0b0111
)

// TransactionDescr is a decoded TransactionDescr. Only the ordinary, storage
// and tick-tock variants carry phases; split and merge descriptions are
// classified but not decoded further.
type TransactionDescr struct {
	Kind        TransactionKind
	CreditFirst bool
	Storage     *StoragePhase
	Credit      *CreditPhase
	Compute     *ComputePhase
	Action      *ActionPhase
	Aborted     bool
	Bounce      *BouncePhase
	Destroyed   bool
}

// ClassifyDescription reads the kind of a description cell. For tick-tock
// descriptions the whole record is decoded to tell tick from tock.
func ClassifyDescription(c *cell.Cell) (TransactionKind, error) {
	if c == nil {
		return 0, &DescriptionError{Err: fmt.Errorf("description cell is missing")}
	}

	tag, err := c.BeginParse().LoadUInt(4)
	if err != nil {
		return 0, &DescriptionError{Err: err}
	}

	switch tag {
	case descrOrdinaryTag:
		return TransactionOrdinary, nil
	case descrStorageTag:
		return TransactionStorage, nil
	case descrSplitPrepareTag:
		return TransactionSplitPrepare, nil
	case descrSplitInstallTag:
		return TransactionSplitInstall, nil
	case descrMergePrepareTag:
		return TransactionMergePrepare, nil
	case descrMergeInstallTag:
		return TransactionMergeInstall, nil
	}

	if tag>>1 != descrTickTockTag {
		return 0, &DescriptionError{Err: fmt.Errorf("unknown description tag %04b", tag)}
	}

	d, err := LoadTransactionDescr(c)
	if err != nil {
		return 0, &DescriptionError{Kind: TransactionTick, Err: err}
	}
	return d.Kind, nil
}

// LoadTransactionDescr decodes ordinary, storage and tick-tock descriptions.
func LoadTransactionDescr(c *cell.Cell) (*TransactionDescr, error) {
	s := c.BeginParse()

	tag, err := s.LoadUInt(3)
	if err != nil {
		return nil, err
	}

	d := &TransactionDescr{}
	switch {
	case tag == descrTickTockTag:
		tock, err := s.LoadBoolBit()
		if err != nil {
			return nil, err
		}
		d.Kind = TransactionTick
		if tock {
			d.Kind = TransactionTock
		}
		return d, d.loadTickTock(s)
	case tag == 0b000:
		last, err := s.LoadBoolBit()
		if err != nil {
			return nil, err
		}
		if last {
			d.Kind = TransactionStorage
			d.Storage, err = LoadStoragePhase(s)
			return d, err
		}
		d.Kind = TransactionOrdinary
		return d, d.loadOrdinary(s)
	default:
		kind, err := ClassifyDescription(c)
		if err != nil {
			return nil, err
		}
		return nil, &UnsupportedKindError{Kind: kind}
	}
}

func (d *TransactionDescr) loadOrdinary(s *cell.Slice) (err error) {
	if d.CreditFirst, err = s.LoadBoolBit(); err != nil {
		return err
	}

	has, err := s.LoadBoolBit()
	if err != nil {
		return err
	}
	if has {
		if d.Storage, err = LoadStoragePhase(s); err != nil {
			return fmt.Errorf("storage phase: %w", err)
		}
	}

	if has, err = s.LoadBoolBit(); err != nil {
		return err
	}
	if has {
		if d.Credit, err = LoadCreditPhase(s); err != nil {
			return fmt.Errorf("credit phase: %w", err)
		}
	}

	if d.Compute, err = LoadComputePhase(s); err != nil {
		return fmt.Errorf("compute phase: %w", err)
	}
	if d.Action, err = loadMaybeActionPhase(s); err != nil {
		return fmt.Errorf("action phase: %w", err)
	}
	if d.Aborted, err = s.LoadBoolBit(); err != nil {
		return err
	}

	if has, err = s.LoadBoolBit(); err != nil {
		return err
	}
	if has {
		if d.Bounce, err = LoadBouncePhase(s); err != nil {
			return fmt.Errorf("bounce phase: %w", err)
		}
	}

	d.Destroyed, err = s.LoadBoolBit()
	return err
}

func (d *TransactionDescr) loadTickTock(s *cell.Slice) (err error) {
	if d.Storage, err = LoadStoragePhase(s); err != nil {
		return fmt.Errorf("storage phase: %w", err)
	}
	if d.Compute, err = LoadComputePhase(s); err != nil {
		return fmt.Errorf("compute phase: %w", err)
	}
	if d.Action, err = loadMaybeActionPhase(s); err != nil {
		return fmt.Errorf("action phase: %w", err)
	}
	if d.Aborted, err = s.LoadBoolBit(); err != nil {
		return err
	}
	d.Destroyed, err = s.LoadBoolBit()
	return err
}

func loadMaybeActionPhase(s *cell.Slice) (*ActionPhase, error) {
	has, err := s.LoadBoolBit()
	if err != nil || !has {
		return nil, err
	}
	ref, err := s.LoadRef()
	if err != nil {
		return nil, err
	}
	return LoadActionPhase(ref)
}

// ToCell serializes the description.
func (d *TransactionDescr) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()

	var err error
	switch d.Kind {
	case TransactionOrdinary:
		err = d.storeOrdinary(b)
	case TransactionStorage:
		if d.Storage == nil {
			return nil, fmt.Errorf("storage transaction without storage phase")
		}
		if err = b.StoreUInt(descrStorageTag, 4); err == nil {
			err = d.Storage.Store(b)
		}
	case TransactionTick, TransactionTock:
		err = d.storeTickTock(b)
	default:
		return nil, &UnsupportedKindError{Kind: d.Kind}
	}
	if err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

func (d *TransactionDescr) storeOrdinary(b *cell.Builder) error {
	if d.Compute == nil {
		return fmt.Errorf("ordinary transaction without compute phase")
	}

	if err := b.StoreUInt(descrOrdinaryTag, 4); err != nil {
		return err
	}
	if err := b.StoreBoolBit(d.CreditFirst); err != nil {
		return err
	}

	if err := b.StoreBoolBit(d.Storage != nil); err != nil {
		return err
	}
	if d.Storage != nil {
		if err := d.Storage.Store(b); err != nil {
			return err
		}
	}

	if err := b.StoreBoolBit(d.Credit != nil); err != nil {
		return err
	}
	if d.Credit != nil {
		if err := d.Credit.Store(b); err != nil {
			return err
		}
	}

	if err := d.Compute.Store(b); err != nil {
		return err
	}
	if err := storeMaybeActionPhase(b, d.Action); err != nil {
		return err
	}
	if err := b.StoreBoolBit(d.Aborted); err != nil {
		return err
	}

	if err := b.StoreBoolBit(d.Bounce != nil); err != nil {
		return err
	}
	if d.Bounce != nil {
		if err := d.Bounce.Store(b); err != nil {
			return err
		}
	}
	return b.StoreBoolBit(d.Destroyed)
}

func (d *TransactionDescr) storeTickTock(b *cell.Builder) error {
	if d.Storage == nil || d.Compute == nil {
		return fmt.Errorf("%s transaction without storage or compute phase", d.Kind)
	}

	if err := b.StoreUInt(descrTickTockTag, 3); err != nil {
		return err
	}
	if err := b.StoreBoolBit(d.Kind == TransactionTock); err != nil {
		return err
	}
	if err := d.Storage.Store(b); err != nil {
		return err
	}
	if err := d.Compute.Store(b); err != nil {
		return err
	}
	if err := storeMaybeActionPhase(b, d.Action); err != nil {
		return err
	}
	if err := b.StoreBoolBit(d.Aborted); err != nil {
		return err
	}
	return b.StoreBoolBit(d.Destroyed)
}

func storeMaybeActionPhase(b *cell.Builder, p *ActionPhase) error {
	if p == nil {
		return b.StoreBoolBit(false)
	}

	ref := cell.BeginCell()
	if err := p.Store(ref); err != nil {
		return err
	}
	if err := b.StoreBoolBit(true); err != nil {
		return err
	}
	return b.StoreRef(ref.EndCell())
}
