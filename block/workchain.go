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

	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	workchainTag   = 0xa6
	workchainV2Tag = 0xa7
)

// WorkchainInfo is the part of a WorkchainDescr that message routing depends on.
type WorkchainInfo struct {
	ID           int32
	EnabledSince uint32
	Basic        bool
	Active       bool
	AcceptMsgs   bool
}

// WorkchainSet is the workchain list of configuration parameter 12.
type WorkchainSet map[int32]WorkchainInfo

// AcceptsMessages reports whether internal messages may be sent to wc.
func (ws WorkchainSet) AcceptsMessages(wc int32) bool {
	if wc == MasterchainID {
		return true
	}
	info, ok := ws[wc]
	return ok && info.AcceptMsgs
}

// WorkchainList decodes parameter 12. An absent parameter yields an empty set.
func (c *Config) WorkchainList() (WorkchainSet, error) {
	set := WorkchainSet{}

	p := c.GetParam(ConfigParamWorkchains)
	if p == nil {
		return set, nil
	}

	root, err := loadMaybeRefCell(p.BeginParse())
	if err != nil {
		return nil, &ConfigParamError{Param: ConfigParamWorkchains, Err: err}
	}
	if root == nil {
		return set, nil
	}

	kvs, err := root.AsDict(32).LoadAll()
	if err != nil {
		return nil, &ConfigParamError{Param: ConfigParamWorkchains, Err: err}
	}

	for _, kv := range kvs {
		id, err := kv.Key.LoadInt(32)
		if err != nil {
			return nil, &ConfigParamError{Param: ConfigParamWorkchains, Err: err}
		}

		info, err := loadWorkchainInfo(kv.Value)
		if err != nil {
			return nil, &ConfigParamError{
				Param: ConfigParamWorkchains,
				Err:   fmt.Errorf("workchain %d: %w", id, err),
			}
		}
		info.ID = int32(id)
		set[info.ID] = info
	}

	return set, nil
}

func loadWorkchainInfo(s *cell.Slice) (WorkchainInfo, error) {
	var info WorkchainInfo

	tag, err := s.LoadUInt(8)
	if err != nil {
		return info, err
	}
	if tag != workchainTag && tag != workchainV2Tag {
		return info, fmt.Errorf("%w: workchain descriptor tag %#x", ErrUnsupportedPrefix, tag)
	}

	since, err := s.LoadUInt(32)
	if err != nil {
		return info, err
	}
	info.EnabledSince = uint32(since)

	// actual_min_split, min_split, max_split
	if _, err := s.LoadUInt(24); err != nil {
		return info, err
	}

	if info.Basic, err = s.LoadBoolBit(); err != nil {
		return info, err
	}
	if info.Active, err = s.LoadBoolBit(); err != nil {
		return info, err
	}
	if info.AcceptMsgs, err = s.LoadBoolBit(); err != nil {
		return info, err
	}
	return info, nil
}

// StoreWorkchainDescr writes a basic workchain descriptor for info.
func StoreWorkchainDescr(b *cell.Builder, info WorkchainInfo) error {
	steps := []func() error{
		func() error { return b.StoreUInt(workchainTag, 8) },
		func() error { return b.StoreUInt(uint64(info.EnabledSince), 32) },
		func() error { return b.StoreUInt(0, 24) },
		func() error { return b.StoreBoolBit(info.Basic) },
		func() error { return b.StoreBoolBit(info.Active) },
		func() error { return b.StoreBoolBit(info.AcceptMsgs) },
		func() error { return b.StoreUInt(0, 13) },
		func() error { return b.StoreSlice(make([]byte, 32), 256) },
		func() error { return b.StoreSlice(make([]byte, 32), 256) },
		func() error { return b.StoreUInt(0, 32) },
		// wfmt_basic#1 vm_version:int32 vm_mode:uint64
		func() error { return b.StoreUInt(1, 4) },
		func() error { return b.StoreInt(-1, 32) },
		func() error { return b.StoreUInt(0, 64) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
