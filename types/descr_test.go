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

func int32Ptr(v int32) *int32 {
	return &v
}

func ordinaryDescr() *types.TransactionDescr {
	return &types.TransactionDescr{
		Kind:        types.TransactionOrdinary,
		CreditFirst: false,
		Storage: &types.StoragePhase{
			FeesCollected: uint256.NewInt(12),
			FeesDue:       new(uint256.Int),
			StatusChange:  types.StatusUnchanged,
		},
		Credit: &types.CreditPhase{
			DueFeesCollected: new(uint256.Int),
			Credit:           block.NewCurrencyCollection(1_000_000),
		},
		Compute: &types.ComputePhase{
			Success:          false,
			Accepted:         true,
			GasFees:          uint256.NewInt(40_000),
			GasUsed:          77,
			GasLimit:         2_500,
			Mode:             0,
			ExitCode:         35,
			ExitArg:          int32Ptr(-3),
			VMSteps:          9,
			VMInitStateHash:  [32]byte{1},
			VMFinalStateHash: [32]byte{2},
		},
		Aborted: true,
		Bounce: &types.BouncePhase{
			Kind:    types.BounceOk,
			MsgSize: block.StorageUsed{Cells: 1, Bits: 64},
			MsgFees: uint256.NewInt(100),
			FwdFees: uint256.NewInt(200),
		},
	}
}

func TestTransactionDescr(t *testing.T) {

	t.Parallel()

	t.Run("should decode an ordinary description", func(t *testing.T) {

		t.Parallel()

		want := ordinaryDescr()
		c, err := want.ToCell()
		require.NoError(t, err)

		got, err := types.LoadTransactionDescr(c)
		require.NoError(t, err)

		assert.Equal(t, types.TransactionOrdinary, got.Kind)
		assert.Equal(t, want.Storage.FeesCollected.Uint64(), got.Storage.FeesCollected.Uint64())
		assert.Equal(t, uint64(1_000_000), got.Credit.Credit.Grams.Uint64())
		assert.Equal(t, want.Compute.ExitCode, got.Compute.ExitCode)
		assert.Equal(t, int32(-3), *got.Compute.ExitArg)
		assert.Equal(t, uint64(77), got.Compute.GasUsed)
		assert.Equal(t, want.Compute.VMFinalStateHash, got.Compute.VMFinalStateHash)
		assert.Nil(t, got.Action)
		assert.True(t, got.Aborted)
		require.NotNil(t, got.Bounce)
		assert.Equal(t, types.BounceOk, got.Bounce.Kind)
		assert.Equal(t, uint64(200), got.Bounce.FwdFees.Uint64())

		again, err := got.ToCell()
		require.NoError(t, err)
		assert.Equal(t, c.Hash(), again.Hash())
	})

	t.Run("should keep action phase details", func(t *testing.T) {

		t.Parallel()

		d := ordinaryDescr()
		d.Compute.Success = true
		d.Compute.ExitCode = 0
		d.Compute.ExitArg = nil
		d.Bounce = nil
		d.Aborted = false
		d.Action = &types.ActionPhase{
			Success:         true,
			Valid:           true,
			StatusChange:    types.StatusDeleted,
			TotalFwdFees:    uint256.NewInt(5),
			TotalActionFees: uint256.NewInt(2),
			TotActions:      2,
			MsgsCreated:     1,
			ActionListHash:  [32]byte{7},
			TotMsgSize:      block.StorageUsed{Cells: 1, Bits: 700},
		}

		c, err := d.ToCell()
		require.NoError(t, err)

		got, err := types.LoadTransactionDescr(c)
		require.NoError(t, err)

		require.NotNil(t, got.Action)
		assert.Equal(t, types.StatusDeleted, got.Action.StatusChange)
		assert.Equal(t, uint16(2), got.Action.TotActions)
		assert.Equal(t, block.StorageUsed{Cells: 1, Bits: 700}, got.Action.TotMsgSize)
		assert.Equal(t, uint64(2), got.Action.TotalActionFees.Uint64())
	})

	t.Run("should encode skipped compute phases", func(t *testing.T) {

		t.Parallel()

		for _, reason := range []types.ComputeSkipReason{
			types.SkipNoState,
			types.SkipBadState,
			types.SkipNoGas,
			types.SkipSuspended,
		} {
			d := ordinaryDescr()
			d.Compute = &types.ComputePhase{SkipReason: reason}
			d.Bounce = &types.BouncePhase{Kind: types.BounceNegFunds}

			c, err := d.ToCell()
			require.NoError(t, err)

			got, err := types.LoadTransactionDescr(c)
			require.NoError(t, err)
			assert.Equal(t, reason, got.Compute.SkipReason)
			assert.Equal(t, types.BounceNegFunds, got.Bounce.Kind)
		}
	})

	t.Run("should refuse split and merge descriptions", func(t *testing.T) {

		t.Parallel()

		_, err := (&types.TransactionDescr{Kind: types.TransactionSplitPrepare}).ToCell()

		var unsupported *types.UnsupportedKindError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, types.TransactionSplitPrepare, unsupported.Kind)

		_, err = types.LoadTransactionDescr(cell.BeginCell().MustStoreUInt(0b0111, 4).EndCell())
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, types.TransactionMergeInstall, unsupported.Kind)
	})
}

func TestClassifyDescription(t *testing.T) {

	t.Parallel()

	tickTock := func(t *testing.T, kind types.TransactionKind) *cell.Cell {
		d := &types.TransactionDescr{
			Kind:    kind,
			Storage: &types.StoragePhase{FeesCollected: new(uint256.Int)},
			Compute: &types.ComputePhase{SkipReason: types.SkipNoGas},
			Aborted: true,
		}
		c, err := d.ToCell()
		require.NoError(t, err)
		return c
	}

	t.Run("should classify by prefix", func(t *testing.T) {

		t.Parallel()

		cases := map[uint64]types.TransactionKind{
			0b0000: types.TransactionOrdinary,
			0b0001: types.TransactionStorage,
			0b0100: types.TransactionSplitPrepare,
			0b0101: types.TransactionSplitInstall,
			0b0110: types.TransactionMergePrepare,
			0b0111: types.TransactionMergeInstall,
		}

		for tag, want := range cases {
			kind, err := types.ClassifyDescription(cell.BeginCell().MustStoreUInt(tag, 4).EndCell())
			require.NoError(t, err)
			assert.Equal(t, want, kind)
		}
	})

	t.Run("should tell tick from tock", func(t *testing.T) {

		t.Parallel()

		kind, err := types.ClassifyDescription(tickTock(t, types.TransactionTick))
		require.NoError(t, err)
		assert.Equal(t, types.TransactionTick, kind)

		kind, err = types.ClassifyDescription(tickTock(t, types.TransactionTock))
		require.NoError(t, err)
		assert.Equal(t, types.TransactionTock, kind)
	})

	t.Run("should fail on a truncated tick-tock description", func(t *testing.T) {

		t.Parallel()

		_, err := types.ClassifyDescription(cell.BeginCell().MustStoreUInt(0b0011, 4).EndCell())

		var descrErr *types.DescriptionError
		require.ErrorAs(t, err, &descrErr)
		assert.Contains(t, err.Error(), "Failed to unpack tick tock transaction description")
	})

	t.Run("should fail on unknown prefixes", func(t *testing.T) {

		t.Parallel()

		_, err := types.ClassifyDescription(cell.BeginCell().MustStoreUInt(0b1000, 4).EndCell())
		assert.Error(t, err)

		_, err = types.ClassifyDescription(nil)
		assert.Error(t, err)
	})
}
