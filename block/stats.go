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
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// StorageUsed counts the distinct cells and data bits of a cell tree.
type StorageUsed struct {
	Cells       uint64
	Bits        uint64
	PublicCells uint64
}

// ComputeStorageUsed walks the tree under root counting every distinct cell
// once. When includeRoot is false the root cell itself is left out, which is
// how message sizes are measured for forwarding fees.
func ComputeStorageUsed(root *cell.Cell, includeRoot bool) StorageUsed {
	var (
		used StorageUsed
		seen = map[string]struct{}{}
	)
	if root == nil {
		return used
	}

	var walk func(c *cell.Cell)
	walk = func(c *cell.Cell) {
		key := string(c.Hash())
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}

		used.Cells++
		used.Bits += uint64(c.BitsSize())
		walkRefs(c, walk)
	}

	if includeRoot {
		walk(root)
	} else {
		walkRefs(root, walk)
	}
	return used
}

func walkRefs(c *cell.Cell, fn func(*cell.Cell)) {
	for i := 0; i < int(c.RefsNum()); i++ {
		ref, err := c.PeekRef(i)
		if err != nil {
			return
		}
		fn(ref)
	}
}

// LoadStorageUsed reads a StorageUsed record.
func LoadStorageUsed(s *cell.Slice) (StorageUsed, error) {
	var (
		used StorageUsed
		err  error
	)
	if used.Cells, err = LoadVarUInt(s, 7); err != nil {
		return used, err
	}
	if used.Bits, err = LoadVarUInt(s, 7); err != nil {
		return used, err
	}
	if used.PublicCells, err = LoadVarUInt(s, 7); err != nil {
		return used, err
	}
	return used, nil
}

func StoreStorageUsed(b *cell.Builder, used StorageUsed) error {
	if err := StoreVarUInt(b, 7, used.Cells); err != nil {
		return err
	}
	if err := StoreVarUInt(b, 7, used.Bits); err != nil {
		return err
	}
	return StoreVarUInt(b, 7, used.PublicCells)
}

// LoadStorageUsedShort reads a StorageUsedShort record (cells and bits only).
func LoadStorageUsedShort(s *cell.Slice) (StorageUsed, error) {
	var (
		used StorageUsed
		err  error
	)
	if used.Cells, err = LoadVarUInt(s, 7); err != nil {
		return used, err
	}
	if used.Bits, err = LoadVarUInt(s, 7); err != nil {
		return used, err
	}
	return used, nil
}

func StoreStorageUsedShort(b *cell.Builder, used StorageUsed) error {
	if err := StoreVarUInt(b, 7, used.Cells); err != nil {
		return err
	}
	return StoreVarUInt(b, 7, used.Bits)
}

// appendCell copies the bits and references of c into b.
func appendCell(b *cell.Builder, c *cell.Cell) error {
	s := c.BeginParse()

	if n := s.BitsLeft(); n > 0 {
		data, err := s.LoadSlice(n)
		if err != nil {
			return err
		}
		if err := b.StoreSlice(data, n); err != nil {
			return err
		}
	}

	for s.RefsNum() > 0 {
		ref, err := s.LoadRefCell()
		if err != nil {
			return err
		}
		if err := b.StoreRef(ref); err != nil {
			return err
		}
	}
	return nil
}
