package phase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/utils/unittest"
)

type action func(b *cell.Builder)

func sendMsg(mode uint8, msg *cell.Cell) action {
	return func(b *cell.Builder) {
		b.MustStoreUInt(0x0ec3c86d, 32).MustStoreUInt(uint64(mode), 8).MustStoreRef(msg)
	}
}

func reserve(mode uint8, amount uint64) action {
	return func(b *cell.Builder) {
		b.MustStoreUInt(0x36e6b809, 32).MustStoreUInt(uint64(mode), 8)
		if err := block.StoreCurrencyCollection(b, block.NewCurrencyCollection(amount)); err != nil {
			panic(err)
		}
	}
}

func setCode(code *cell.Cell) action {
	return func(b *cell.Builder) {
		b.MustStoreUInt(0xad4de08e, 32).MustStoreRef(code)
	}
}

// actionList links the actions into an output action list, first action deepest.
func actionList(actions ...action) *cell.Cell {
	list := cell.BeginCell().EndCell()
	for _, a := range actions {
		b := cell.BeginCell().MustStoreRef(list)
		a(b)
		list = b.EndCell()
	}
	return list
}

func outMessage(t *testing.T, dest block.Address, value uint64) *cell.Cell {
	msg := &block.Message{
		Info: block.MsgInfo{
			Kind:        block.InternalMessage,
			IHRDisabled: true,
			Bounce:      true,
			Dest:        dest,
			Value:       block.NewCurrencyCollection(value),
		},
	}

	c, err := msg.ToCell()
	require.NoError(t, err)
	return c
}

// runActions executes an ordinary transaction whose contract leaves the given
// action list. The account and the inbound message both hold 1 TON and
// compute costs 440000 nanotons, leaving 1_999_560_000 for the actions.
func runActions(t *testing.T, actions *cell.Cell) (*types.ActionPhase, *block.TransactionRecord, *block.Account) {
	t.Helper()

	acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
	inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, false, nil)

	session, tx := ordinary(t, succeeding(1_100, acc.Data, actions), acc, inMsg)
	require.True(t, tx.Compute.Success)

	var err error
	tx.Action, err = session.ActionPhase(actionConfig())
	require.NoError(t, err)

	record, committed := commit(t, session, tx, acc)
	return tx.Action, record, committed
}

func TestActionPhase(t *testing.T) {

	t.Parallel()

	dest := unittest.AddressFixture(block.BasechainID, 50)

	t.Run("should pay forwarding fees from the message value", func(t *testing.T) {

		t.Parallel()

		ap, record, committed := runActions(t, actionList(sendMsg(0, outMessage(t, dest, 100_000_000))))

		require.True(t, ap.Success)
		assert.Equal(t, uint16(1), ap.TotActions)
		assert.Equal(t, uint16(1), ap.MsgsCreated)
		assert.Equal(t, uint64(400_000), ap.TotalFwdFees.Uint64())
		assert.Equal(t, uint64(133_331), ap.TotalActionFees.Uint64())

		assert.Equal(t, uint64(1_899_560_000), committed.Balance.Grams.Uint64())
		assert.Equal(t, uint64(440_000+133_331), record.TotalFees.Grams.Uint64())

		require.Len(t, record.OutMsgs, 1)
		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)

		require.NotNil(t, out.Info.Src)
		assert.Equal(t, accountAddr, *out.Info.Src)
		assert.Equal(t, dest, out.Info.Dest)
		assert.Equal(t, uint64(99_600_000), out.Info.Value.Grams.Uint64())
		assert.Equal(t, uint64(266_669), out.Info.FwdFee.Uint64())
		assert.Equal(t, unittest.FixtureLT+1, out.Info.CreatedLT)
		assert.Equal(t, unittest.FixtureNow, out.Info.CreatedAt)

		// the account storage records the end lt of the transaction
		assert.Equal(t, unittest.FixtureLT+2, committed.StorageLT)
	})

	t.Run("should pay forwarding fees separately", func(t *testing.T) {

		t.Parallel()

		ap, record, committed := runActions(t, actionList(sendMsg(1, outMessage(t, dest, 100_000_000))))

		require.True(t, ap.Success)
		assert.Equal(t, uint64(1_899_160_000), committed.Balance.Grams.Uint64())

		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)
		assert.Equal(t, uint64(100_000_000), out.Info.Value.Grams.Uint64())
	})

	t.Run("should carry the whole balance and destroy the account", func(t *testing.T) {

		t.Parallel()

		ap, record, committed := runActions(t, actionList(sendMsg(128+32, outMessage(t, dest, 0))))

		require.True(t, ap.Success)
		assert.Equal(t, types.StatusDeleted, ap.StatusChange)
		assert.True(t, committed.Balance.Grams.IsZero())
		assert.Equal(t, block.StatusNonexist, record.EndStatus)

		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)
		assert.Equal(t, uint64(1_999_160_000), out.Info.Value.Grams.Uint64())
	})

	t.Run("should carry what is left after a reservation", func(t *testing.T) {

		t.Parallel()

		ap, record, committed := runActions(t, actionList(
			reserve(0, 1_000_000_000),
			sendMsg(128, outMessage(t, dest, 0)),
		))

		require.True(t, ap.Success)
		assert.Equal(t, uint16(2), ap.TotActions)
		assert.Equal(t, uint64(1_000_000_000), committed.Balance.Grams.Uint64())

		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)
		assert.Equal(t, uint64(999_160_000), out.Info.Value.Grams.Uint64())
	})

	t.Run("should fail without funds and keep the balance", func(t *testing.T) {

		t.Parallel()

		ap, record, committed := runActions(t, actionList(
			sendMsg(0, outMessage(t, dest, 100_000_000)),
			sendMsg(1, outMessage(t, dest, 5_000_000_000)),
		))

		assert.False(t, ap.Success)
		assert.True(t, ap.Valid)
		assert.True(t, ap.NoFunds)
		assert.Equal(t, int32(37), ap.ResultCode)
		require.NotNil(t, ap.ResultArg)
		assert.Equal(t, int32(1), *ap.ResultArg)

		assert.Empty(t, record.OutMsgs)
		assert.Equal(t, uint64(1_999_560_000), committed.Balance.Grams.Uint64())
	})

	t.Run("should skip failing messages sent with mode 2", func(t *testing.T) {

		t.Parallel()

		ap, record, _ := runActions(t, actionList(
			sendMsg(1+2, outMessage(t, dest, 5_000_000_000)),
			sendMsg(1, outMessage(t, dest, 100_000_000)),
		))

		require.True(t, ap.Success)
		assert.Equal(t, uint16(1), ap.SkippedActions)
		assert.Equal(t, uint16(1), ap.MsgsCreated)
		assert.Len(t, record.OutMsgs, 1)
	})

	t.Run("should reject messages to unknown workchains", func(t *testing.T) {

		t.Parallel()

		ap, _, _ := runActions(t, actionList(sendMsg(0, outMessage(t, unittest.AddressFixture(7, 1), 1_000))))

		assert.False(t, ap.Success)
		assert.Equal(t, int32(36), ap.ResultCode)
	})

	t.Run("should reject unknown actions", func(t *testing.T) {

		t.Parallel()

		ap, _, _ := runActions(t, actionList(func(b *cell.Builder) {
			b.MustStoreUInt(0xdeadbeef, 32)
		}))

		assert.False(t, ap.Success)
		assert.False(t, ap.Valid)
		assert.Equal(t, int32(34), ap.ResultCode)
	})

	t.Run("should install new code", func(t *testing.T) {

		t.Parallel()

		code := cell.BeginCell().MustStoreUInt(0xabcd, 16).EndCell()
		ap, _, committed := runActions(t, actionList(setCode(code)))

		require.True(t, ap.Success)
		assert.Equal(t, uint16(1), ap.SpecActions)
		assert.Equal(t, code.Hash(), committed.Code.Hash())
	})

	t.Run("should hash the action list", func(t *testing.T) {

		t.Parallel()

		list := actionList(setCode(cell.BeginCell().EndCell()))
		ap, _, _ := runActions(t, list)
		assert.Equal(t, list.Hash(), ap.ActionListHash[:])
	})
}

func TestBouncePhase(t *testing.T) {

	t.Parallel()

	body := cell.BeginCell().MustStoreUInt(0x12345678, 32).EndCell()

	bounce := func(t *testing.T, value, gasUsed uint64) (*types.BouncePhase, *block.TransactionRecord, *block.Account) {
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, value, true, body)

		session, tx := ordinary(t, failing(gasUsed, 100), acc, inMsg)
		require.True(t, tx.BounceEnabled)
		require.False(t, tx.Compute.Success)

		var err error
		tx.Bounce, err = session.BouncePhase(actionConfig())
		require.NoError(t, err)

		record, committed := commit(t, session, tx, acc)
		return tx.Bounce, record, committed
	}

	t.Run("should return the remaining value", func(t *testing.T) {

		t.Parallel()

		bp, record, committed := bounce(t, 1_000_000_000, 1_100)

		require.Equal(t, types.BounceOk, bp.Kind)
		assert.Equal(t, uint64(0), bp.MsgSize.Cells)
		assert.Equal(t, uint64(0), bp.MsgSize.Bits)
		assert.Equal(t, uint64(133_331), bp.MsgFees.Uint64())
		assert.Equal(t, uint64(266_669), bp.FwdFees.Uint64())

		assert.Equal(t, uint64(1_000_000_000), committed.Balance.Grams.Uint64())
		assert.Equal(t, uint64(440_000+133_331), record.TotalFees.Grams.Uint64())

		require.Len(t, record.OutMsgs, 1)
		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)

		assert.True(t, out.Info.Bounced)
		assert.False(t, out.Info.Bounce)
		assert.Equal(t, senderAddr, out.Info.Dest)
		assert.Equal(t, uint64(999_160_000), out.Info.Value.Grams.Uint64())
		assert.False(t, out.BodyRef)

		s := out.Body.BeginParse()
		prefix, err := s.LoadUInt(32)
		require.NoError(t, err)
		assert.Equal(t, uint64(0xffffffff), prefix)
		op, err := s.LoadUInt(32)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x12345678), op)
	})

	t.Run("should move a long body into a reference", func(t *testing.T) {

		t.Parallel()

		long := cell.BeginCell().
			MustStoreUInt(0x12345678, 32).
			MustStoreSlice(make([]byte, 60), 480).
			EndCell()
		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000_000_000, true, long)

		session, tx := ordinary(t, failing(1_100, 100), acc, inMsg)
		cfg := actionConfig()
		cfg.BounceMsgBody = 512

		var err error
		tx.Bounce, err = session.BouncePhase(cfg)
		require.NoError(t, err)
		bp := tx.Bounce

		require.Equal(t, types.BounceOk, bp.Kind)
		assert.Equal(t, uint64(1), bp.MsgSize.Cells)
		assert.Equal(t, uint64(544), bp.MsgSize.Bits)
		assert.Equal(t, uint64(219_196), bp.MsgFees.Uint64())
		assert.Equal(t, uint64(438_404), bp.FwdFees.Uint64())

		record, _ := commit(t, session, tx, acc)
		require.Len(t, record.OutMsgs, 1)
		out, err := block.LoadMessage(record.OutMsgs[0])
		require.NoError(t, err)

		assert.True(t, out.BodyRef)
		assert.Equal(t, uint(544), out.Body.BitsSize())
		assert.Equal(t, uint64(1_000_000_000-440_000-657_600), out.Info.Value.Grams.Uint64())
	})

	t.Run("should report missing funds for forwarding", func(t *testing.T) {

		t.Parallel()

		bp, record, _ := bounce(t, 500_000, 1_100)

		assert.Equal(t, types.BounceNoFunds, bp.Kind)
		assert.Equal(t, uint64(400_000), bp.ReqFwdFees.Uint64())
		assert.Empty(t, record.OutMsgs)
	})

	t.Run("should report negative funds when gas exceeds the value", func(t *testing.T) {

		t.Parallel()

		bp, _, _ := bounce(t, 500_000, 1_300)
		assert.Equal(t, types.BounceNegFunds, bp.Kind)
	})

	t.Run("should not bounce non-bounceable messages", func(t *testing.T) {

		t.Parallel()

		acc := unittest.AccountFixture(t, accountAddr, 1_000_000_000)
		inMsg := unittest.InternalMessageFixture(t, senderAddr, accountAddr, 1_000, false, body)

		session, _ := ordinary(t, failing(1_100, 100), acc, inMsg)
		_, err := session.BouncePhase(actionConfig())
		require.Error(t, err)
	})
}
