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

package emulate

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
)

// DecodeBOC accepts a bag of cells as raw bytes, base64 or hex text.
func DecodeBOC(data []byte) (*cell.Cell, error) {
	if c, err := cell.FromBOC(data); err == nil {
		return c, nil
	}

	text := bytes.TrimSpace(data)
	if raw, err := base64.StdEncoding.DecodeString(string(text)); err == nil {
		if c, err := cell.FromBOC(raw); err == nil {
			return c, nil
		}
	}
	if raw, err := hex.DecodeString(string(text)); err == nil {
		if c, err := cell.FromBOC(raw); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("not a bag of cells in raw, base64 or hex encoding")
}

func LoadCell(path string) (*cell.Cell, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := DecodeBOC(data)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", path, err)
	}
	return c, nil
}

func LoadConfig(path string) (*block.Config, error) {
	root, err := LoadCell(path)
	if err != nil {
		return nil, err
	}
	return block.NewConfig(root)
}

// LoadAccount reads a ShardAccount, falling back to a bare Account cell.
// A bare account carries no last transaction reference.
func LoadAccount(path string) (*block.Account, error) {
	c, err := LoadCell(path)
	if err != nil {
		return nil, err
	}

	acc, err := block.UnpackShardAccount(c)
	if err == nil {
		return acc, nil
	}
	if acc, bareErr := block.UnpackAccount(c); bareErr == nil {
		return acc, nil
	}
	return nil, fmt.Errorf("cannot load account from %s: %w", path, err)
}

func LoadTransactions(paths []string) ([]*cell.Cell, error) {
	txs := make([]*cell.Cell, 0, len(paths))
	for _, path := range paths {
		c, err := LoadCell(path)
		if err != nil {
			return nil, err
		}
		txs = append(txs, c)
	}
	return txs, nil
}
