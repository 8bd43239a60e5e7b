package emulator_test

import (
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/emulator"
	"github.com/onflow/ton-emulator/phase/mocks"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/utils/unittest"
	"github.com/onflow/ton-emulator/vm"
)

// draftTransaction serializes a draft record with an empty state update. It
// can be emulated but never verifies.
func draftTransaction(t *testing.T, kind types.TransactionKind, acc *block.Account, lt uint64, inMsg *cell.Cell) *cell.Cell {
	record := draftRecord(t, kind, acc, lt, inMsg)
	record.TotalFees = block.NewCurrencyCollection(0)
	record.StateUpdate = block.HashUpdate{}.ToCell()

	c, err := record.ToCell()
	require.NoError(t, err)
	return c
}

type seedRecorder struct {
	mu    sync.Mutex
	seeds []types.Seed
}

func (r *seedRecorder) executor(gasUsed uint64) vm.ExecutorFunc {
	return func(req *vm.Request) (*vm.Result, error) {
		r.mu.Lock()
		r.seeds = append(r.seeds, req.Seed)
		r.mu.Unlock()
		return succeeding(gasUsed)(req)
	}
}

func TestEmulateTransaction(t *testing.T) {

	t.Parallel()

	t.Run("should reproduce an internal message transaction", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, false, nil)
		ref := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1_100)))
		require.NoError(t, err)

		res, err := emu.EmulateTransaction(acc, ref, &pinnedSeed)
		require.NoError(t, err)

		assert.Equal(t, ref.Hash(), res.Transaction.Hash())
		assert.Equal(t, uint64(1_999_560_000), res.Account.Balance.Grams.Uint64())
		assert.Equal(t, unittest.FixtureLT, res.Account.LastTransLT)
		assert.Equal(t, ref.Hash(), res.Account.LastTransHash[:])

		// the caller's account is not modified
		assert.Equal(t, uint64(1_000_000_000), acc.Balance.Grams.Uint64())
		assert.Equal(t, unittest.FixtureLT-2, acc.LastTransLT)
	})

	t.Run("should be idempotent under a pinned seed", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, true, nil)
		ref := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)

		recorder := &seedRecorder{}
		emu, err := emulator.New(config, emulator.WithExecutor(recorder.executor(1_100)))
		require.NoError(t, err)

		first, err := emu.EmulateTransaction(acc, ref, &pinnedSeed)
		require.NoError(t, err)
		second, err := emu.EmulateTransaction(acc, ref, &pinnedSeed)
		require.NoError(t, err)

		assert.Equal(t, first.Transaction.Hash(), second.Transaction.Hash())
		assert.Equal(t, first.Account.StateHash(), second.Account.StateHash())
		assert.Equal(t, []types.Seed{pinnedSeed, pinnedSeed}, recorder.seeds)
	})

	t.Run("should draw a seed from the provider when none is pinned", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, false, nil)
		ref := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)

		provided := types.Seed{0x42}
		recorder := &seedRecorder{}
		emu, err := emulator.New(config,
			emulator.WithExecutor(recorder.executor(1_100)),
			emulator.WithSeedProvider(emulator.FixedSeedProvider(provided)),
		)
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, ref, nil)
		require.NoError(t, err)
		assert.Equal(t, []types.Seed{provided}, recorder.seeds)
	})

	t.Run("should reproduce a tock transaction of a special account", func(t *testing.T) {

		t.Parallel()

		configAddr := unittest.AddressFixture(block.MasterchainID, 0x55)
		config := unittest.ConfigFixture(t, func(params map[uint32]*cell.Cell) {
			params[block.ConfigParamConfigAddress] = cell.BeginCell().
				MustStoreSlice(configAddr.Data[:], 256).
				EndCell()
		})
		acc := unittest.AccountFixture(t, configAddr, 1_000_000_000, func(acc *block.Account) {
			acc.Special = &block.TickTock{Tick: true, Tock: true}
		})
		ref := referenceTransaction(t, config, succeeding(5_000), types.TransactionTock, acc, unittest.FixtureLT, nil)

		var requests []*vm.Request
		executor := vm.ExecutorFunc(func(req *vm.Request) (*vm.Result, error) {
			requests = append(requests, req)
			return succeeding(5_000)(req)
		})

		emu, err := emulator.New(config, emulator.WithExecutor(executor))
		require.NoError(t, err)

		res, err := emu.EmulateTransaction(acc, ref, &pinnedSeed)
		require.NoError(t, err)

		require.Len(t, requests, 1)
		assert.Equal(t, vm.SelectorTickTock, requests[0].Selector)
		assert.True(t, requests[0].IsTock)
		assert.Equal(t, unittest.MasterchainGasPrices.SpecialGasLimit, requests[0].GasLimit)

		// special accounts pay neither gas nor storage
		assert.Equal(t, uint64(1_000_000_000), res.Account.Balance.Grams.Uint64())
	})

	t.Run("should detect a transaction hash mismatch", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, false, nil)
		ref := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1_200)))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, ref, &pinnedSeed)
		var integrityErr *emulator.IntegrityError
		require.ErrorAs(t, err, &integrityErr)
		assert.Equal(t, "transaction hash mismatch", err.Error())
		assert.Equal(t, ref.Hash(), integrityErr.Expected)
	})

	t.Run("should reject an external message the contract does not accept", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.ExternalMessageFixture(t, accountAddr, nil)
		txCell := draftTransaction(t, types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)
		stateHash := acc.StateHash()

		executor := vm.ExecutorFunc(func(req *vm.Request) (*vm.Result, error) {
			return &vm.Result{ExitCode: 35, GasUsed: 700}, nil
		})
		emu, err := emulator.New(config, emulator.WithExecutor(executor))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)
		unittest.AssertErrorCode(t, emulator.CodeRejected, err)
		assert.Contains(t, err.Error(), "cannot run message on account "+accountAddr.String())
		assert.Contains(t, err.Error(), "inbound external message rejected by transaction")

		assert.Equal(t, stateHash, acc.StateHash())
		assert.Equal(t, uint64(1_000_000_000), acc.Balance.Grams.Uint64())
	})

	t.Run("should reject an external message that cannot pay for import", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000)
		inMsg := unittest.ExternalMessageFixture(t, accountAddr, nil)
		txCell := draftTransaction(t, types.TransactionOrdinary, acc, unittest.FixtureLT, inMsg)

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1)))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)
		unittest.AssertErrorCode(t, emulator.CodeRejected, err)
		assert.Contains(t, err.Error(), "before smart-contract execution")
	})

	t.Run("should fail on missing configuration before running any phase", func(t *testing.T) {

		t.Parallel()

		mockCtrl := gomock.NewController(t)
		defer mockCtrl.Finish()

		config := unittest.ConfigFixture(t, func(params map[uint32]*cell.Cell) {
			delete(params, block.ConfigParamMsgPrices)
		})
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		txCell := draftTransaction(t, types.TransactionOrdinary, acc, unittest.FixtureLT,
			unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000, false, nil))

		emu, err := emulator.New(config, emulator.WithPhaseEngine(mocks.NewMockEngine(mockCtrl)))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)
		unittest.AssertErrorCode(t, emulator.CodeConfig, err)
		assert.Contains(t, err.Error(), "cannot fetch config params")
	})

	t.Run("should fail on a malformed state update before running any phase", func(t *testing.T) {

		t.Parallel()

		mockCtrl := gomock.NewController(t)
		defer mockCtrl.Finish()

		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		record := draftRecord(t, types.TransactionOrdinary, acc, unittest.FixtureLT,
			unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000, false, nil))
		record.TotalFees = block.NewCurrencyCollection(0)
		record.StateUpdate = cell.BeginCell().MustStoreUInt(0x13, 8).EndCell()
		txCell, err := record.ToCell()
		require.NoError(t, err)

		emu, err := emulator.New(unittest.ConfigFixture(t), emulator.WithPhaseEngine(mocks.NewMockEngine(mockCtrl)))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)

		var decodeErr *emulator.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "transaction state update", decodeErr.What)
	})

	t.Run("should fail on an undecodable transaction", func(t *testing.T) {

		t.Parallel()

		emu, err := emulator.New(unittest.ConfigFixture(t), emulator.WithExecutor(succeeding(1)))
		require.NoError(t, err)

		acc := unittest.AccountFixture(t, accountAddr, 1_000)
		_, err = emu.EmulateTransaction(acc, cell.BeginCell().MustStoreUInt(0, 4).EndCell(), &pinnedSeed)

		var decodeErr *emulator.DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("should fail when the session does not commit", func(t *testing.T) {

		t.Parallel()

		mockCtrl := gomock.NewController(t)
		defer mockCtrl.Finish()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		txCell := draftTransaction(t, types.TransactionStorage, acc, unittest.FixtureLT, nil)

		engine := mocks.NewMockEngine(mockCtrl)
		session := mocks.NewMockSession(mockCtrl)
		expectStorageTransaction(engine, session, txCell)
		session.EXPECT().Commit(gomock.Any()).Return(nil, nil)

		emu, err := emulator.New(config, emulator.WithPhaseEngine(engine))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)
		unittest.AssertErrorCode(t, emulator.CodePhase, err)
		assert.Contains(t, err.Error(), "cannot commit new transaction for smart contract")
	})

	t.Run("should detect an account hash mismatch", func(t *testing.T) {

		t.Parallel()

		mockCtrl := gomock.NewController(t)
		defer mockCtrl.Finish()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		txCell := draftTransaction(t, types.TransactionStorage, acc, unittest.FixtureLT, nil)

		engine := mocks.NewMockEngine(mockCtrl)
		session := mocks.NewMockSession(mockCtrl)
		expectStorageTransaction(engine, session, txCell)
		session.EXPECT().Commit(gomock.Any()).Return(txCell, nil)

		emu, err := emulator.New(config, emulator.WithPhaseEngine(engine))
		require.NoError(t, err)

		_, err = emu.EmulateTransaction(acc, txCell, &pinnedSeed)
		var integrityErr *emulator.IntegrityError
		require.ErrorAs(t, err, &integrityErr)
		assert.Equal(t, "account hash mismatch", err.Error())
	})
}

// expectStorageTransaction sets up a storage transaction whose serialization
// reproduces txCell exactly.
func expectStorageTransaction(engine *mocks.MockEngine, session *mocks.MockSession, txCell *cell.Cell) {
	gomock.InOrder(
		engine.EXPECT().
			Begin(gomock.Any(), types.TransactionStorage, unittest.FixtureLT, unittest.FixtureNow, gomock.Nil()).
			Return(session, nil),
		session.EXPECT().
			StoragePhase(gomock.Any(), true, false).
			Return(&types.StoragePhase{}, nil),
		session.EXPECT().
			ComputePhase(gomock.Any()).
			Return(&types.ComputePhase{SkipReason: types.SkipNoState}, nil),
		session.EXPECT().
			Serialize(gomock.Any()).
			Return(txCell, nil),
	)
}

func TestEmulateTransactions(t *testing.T) {

	t.Parallel()

	// chain builds two consecutive reference transactions on acc.
	chain := func(t *testing.T, config *block.Config, acc *block.Account) (*cell.Cell, *cell.Cell, *block.Account) {
		first := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, acc, unittest.FixtureLT,
			unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, false, nil))

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1_100)))
		require.NoError(t, err)
		res, err := emu.EmulateTransaction(acc, first, &pinnedSeed)
		require.NoError(t, err)

		second := referenceTransaction(t, config, succeeding(1_100), types.TransactionOrdinary, res.Account, unittest.FixtureLT+10,
			unittest.InternalMessageFixture(t, senderAddr, accountAddr, 500_000_000, true, nil))
		return first, second, res.Account
	}

	t.Run("should thread the account and skip missing entries", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		first, second, afterFirst := chain(t, config, acc)

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1_100)))
		require.NoError(t, err)

		sequential, err := emu.EmulateTransaction(afterFirst, second, &pinnedSeed)
		require.NoError(t, err)

		batch, err := emu.EmulateTransactions(acc, []*cell.Cell{first, nil, second}, &pinnedSeed)
		require.NoError(t, err)

		require.Len(t, batch.Transactions, 2)
		assert.Equal(t, first.Hash(), batch.Transactions[0].Hash())
		assert.Equal(t, second.Hash(), batch.Transactions[1].Hash())
		assert.Equal(t, sequential.Account.StateHash(), batch.Account.StateHash())
		assert.Equal(t, second.Hash(), batch.Last().Transaction.Hash())
	})

	t.Run("should draw a fresh seed for every transaction", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		first, second, _ := chain(t, config, acc)

		calls := 0
		provider := emulator.SeedProviderFunc(func() (types.Seed, error) {
			calls++
			return types.Seed{byte(calls)}, nil
		})

		recorder := &seedRecorder{}
		emu, err := emulator.New(config,
			emulator.WithExecutor(recorder.executor(1_100)),
			emulator.WithSeedProvider(provider),
		)
		require.NoError(t, err)

		_, err = emu.EmulateTransactions(acc, []*cell.Cell{first, second}, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
		assert.Equal(t, []types.Seed{{1}, {2}}, recorder.seeds)
	})

	t.Run("should abort on the first failure", func(t *testing.T) {

		t.Parallel()

		config := unittest.ConfigFixture(t)
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		first, _, _ := chain(t, config, acc)

		emu, err := emulator.New(config, emulator.WithExecutor(succeeding(1_100)))
		require.NoError(t, err)

		// the first transaction cannot be replayed on top of itself
		res, err := emu.EmulateTransactions(acc, []*cell.Cell{first, first}, &pinnedSeed)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Contains(t, err.Error(), "cannot emulate transaction #1")
	})

	t.Run("should return the account unchanged for an empty batch", func(t *testing.T) {

		t.Parallel()

		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		emu, err := emulator.New(unittest.ConfigFixture(t), emulator.WithExecutor(succeeding(1)))
		require.NoError(t, err)

		res, err := emu.EmulateTransactions(acc, []*cell.Cell{nil}, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Transactions)
		assert.Nil(t, res.Last())
		assert.Equal(t, acc.StateHash(), res.Account.StateHash())
	})
}
