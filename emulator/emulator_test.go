package emulator_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/emulator"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/utils/unittest"
	"github.com/onflow/ton-emulator/vm"
)

var (
	accountAddr = unittest.AddressFixture(block.BasechainID, 1)
	senderAddr  = unittest.AddressFixture(block.BasechainID, 100)
	pinnedSeed  = types.Seed{0xde, 0xad}
)

func succeeding(gasUsed uint64) vm.ExecutorFunc {
	return func(req *vm.Request) (*vm.Result, error) {
		return &vm.Result{
			Accepted:  true,
			Committed: true,
			GasUsed:   gasUsed,
			Steps:     12,
			NewData:   req.Data,
			Actions:   vm.EmptyActions(),
		}, nil
	}
}

// draftRecord is a transaction record carrying just enough to drive the
// transaction builder: kind, lt, time and inbound message.
func draftRecord(t *testing.T, kind types.TransactionKind, acc *block.Account, lt uint64, inMsg *cell.Cell) *block.TransactionRecord {
	descr := &types.TransactionDescr{
		Kind:    kind,
		Storage: &types.StoragePhase{FeesCollected: new(uint256.Int), FeesDue: new(uint256.Int)},
		Compute: &types.ComputePhase{SkipReason: types.SkipNoState, GasFees: new(uint256.Int)},
	}
	c, err := descr.ToCell()
	require.NoError(t, err)

	return &block.TransactionRecord{
		AccountAddr: acc.Address.Data,
		LT:          lt,
		Now:         unittest.FixtureNow,
		InMsg:       inMsg,
		Description: c,
	}
}

// referenceTransaction produces the transaction the network would have
// committed for the draft, using the same executor the test emulates with.
func referenceTransaction(
	t *testing.T,
	config *block.Config,
	executor vm.Executor,
	kind types.TransactionKind,
	acc *block.Account,
	lt uint64,
	inMsg *cell.Cell,
) *cell.Cell {
	emu, err := emulator.New(config, emulator.WithExecutor(executor))
	require.NoError(t, err)

	work := acc.Copy()
	work.Now = unittest.FixtureNow
	work.IsSpecial = config.IsSpecialAccount(work.Address)

	params, err := emulator.FetchConfigParams(config, nil, work.Workchain(), pinnedSeed)
	require.NoError(t, err)

	tx, _, err := emu.CreateTransaction(draftRecord(t, kind, work, lt, inMsg), work, params)
	require.NoError(t, err)
	require.NotNil(t, tx.Root)
	return tx.Root
}

func TestNew(t *testing.T) {

	t.Parallel()

	t.Run("should require a configuration", func(t *testing.T) {

		t.Parallel()

		_, err := emulator.New(nil, emulator.WithExecutor(succeeding(1)))
		require.Error(t, err)
	})

	t.Run("should require an executor or a phase engine", func(t *testing.T) {

		t.Parallel()

		_, err := emulator.New(unittest.ConfigFixture(t))
		require.Error(t, err)
	})
}
