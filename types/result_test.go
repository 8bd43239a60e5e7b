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

package types_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

func TestTransaction(t *testing.T) {

	t.Parallel()

	t.Run("should report aborted transactions", func(t *testing.T) {

		t.Parallel()

		tx := types.NewTransaction(types.TransactionOrdinary, 1, 2, nil)
		assert.True(t, tx.Aborted())

		tx.Compute = &types.ComputePhase{Success: true}
		assert.True(t, tx.Aborted())

		tx.Action = &types.ActionPhase{Success: true, Valid: true}
		assert.False(t, tx.Aborted())

		tx.Compute.Success = false
		assert.True(t, tx.Aborted())
	})

	t.Run("should treat skipped compute as aborted", func(t *testing.T) {

		t.Parallel()

		tx := types.NewTransaction(types.TransactionOrdinary, 1, 2, nil)
		tx.Compute = &types.ComputePhase{SkipReason: types.SkipNoState}

		assert.True(t, tx.Aborted())
		assert.True(t, tx.Compute.Skipped())
	})

	t.Run("should detect external inbound messages", func(t *testing.T) {

		t.Parallel()

		ext := cell.BeginCell().MustStoreUInt(0b10, 2).EndCell()
		assert.True(t, types.NewTransaction(types.TransactionOrdinary, 1, 2, ext).External)

		internal := cell.BeginCell().MustStoreUInt(0, 1).EndCell()
		assert.False(t, types.NewTransaction(types.TransactionOrdinary, 1, 2, internal).External)
	})

	t.Run("should set credit first when bounce is disabled", func(t *testing.T) {

		t.Parallel()

		tx := types.NewTransaction(types.TransactionOrdinary, 1, 2, nil)
		tx.Credit = &types.CreditPhase{Credit: block.NewCurrencyCollection(1)}

		assert.True(t, tx.Describe(false).CreditFirst)

		tx.BounceEnabled = true
		assert.False(t, tx.Describe(false).CreditFirst)
	})

	t.Run("should drop credit and bounce from tick-tock descriptions", func(t *testing.T) {

		t.Parallel()

		tx := types.NewTransaction(types.TransactionTock, 1, 2, nil)
		tx.Credit = &types.CreditPhase{}
		tx.Bounce = &types.BouncePhase{}

		d := tx.Describe(true)
		assert.Nil(t, d.Credit)
		assert.Nil(t, d.Bounce)
		assert.True(t, d.Destroyed)
	})
}

func TestEmulationResults(t *testing.T) {

	t.Parallel()

	t.Run("should return the last result", func(t *testing.T) {

		t.Parallel()

		first := cell.BeginCell().MustStoreUInt(1, 8).EndCell()
		second := cell.BeginCell().MustStoreUInt(2, 8).EndCell()
		acc := &block.Account{Balance: block.CurrencyCollection{Grams: uint256.NewInt(1)}}

		results := &types.EmulationResults{Transactions: []*cell.Cell{first, second}, Account: acc}

		last := results.Last()
		require.NotNil(t, last)
		assert.Equal(t, second, last.Transaction)
		assert.Same(t, acc, last.Account)
	})

	t.Run("should return nil for an empty batch", func(t *testing.T) {

		t.Parallel()

		assert.Nil(t, (&types.EmulationResults{}).Last())
	})
}

func TestSeed(t *testing.T) {

	t.Parallel()

	seed := types.Seed{0xab, 0xcd}

	parsed, err := types.ParseSeed(seed.String())
	require.NoError(t, err)
	assert.Equal(t, seed, parsed)

	_, err = types.ParseSeed("abcd")
	var lengthErr *types.SeedLengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, 2, lengthErr.Length)
}
