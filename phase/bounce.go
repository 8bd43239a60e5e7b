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

package phase

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/types"
)

const bouncePrefix = 0xffffffff

// BouncePhase returns what is left of the inbound value to the sender of the
// inbound message.
func (t *transaction) BouncePhase(cfg *types.ActionPhaseConfig) (*types.BouncePhase, error) {
	if t.msg == nil || t.msg.Info.Kind != block.InternalMessage || !t.bounceEnabled || t.msg.Info.Src == nil {
		return nil, fmt.Errorf("inbound message of %s cannot be bounced", t.address())
	}
	info := t.msg.Info

	body, err := t.bounceBody(cfg.BounceMsgBody)
	if err != nil {
		return nil, fmt.Errorf("cannot build bounce message body: %w", err)
	}

	addr := t.address()
	prices := cfg.FwdPrices(addr.Workchain, info.Src.Workchain)

	remain := new(uint256.Int).Set(t.msgBalance)
	if t.compute != nil && t.compute.GasFees != nil && !sub(remain, t.compute.GasFees) {
		return t.bounced(&types.BouncePhase{Kind: types.BounceNegFunds}), nil
	}
	if remain.Gt(t.balance.Grams) {
		return t.bounced(&types.BouncePhase{Kind: types.BounceNegFunds}), nil
	}

	// The body stays in the message root while it fits. Only cells outside
	// the root count towards the forwarding fee.
	var (
		out   *cell.Cell
		size  block.StorageUsed
		fwd   *uint256.Int
		first *uint256.Int
	)
	for _, asRef := range []bool{false, true} {
		size = block.ComputeStorageUsed(body, asRef)
		fwd = prices.ComputeFwdFees(size.Cells, size.Bits)
		if remain.Lt(fwd) {
			return t.bounced(&types.BouncePhase{
				Kind:       types.BounceNoFunds,
				MsgSize:    size,
				ReqFwdFees: fwd,
			}), nil
		}

		first = prices.FirstPart(fwd)
		var inline bool
		out, inline, err = t.bounceMessage(addr, remain, fwd, first, body, asRef)
		if err != nil {
			return nil, fmt.Errorf("cannot serialize bounced message: %w", err)
		}
		if inline || asRef {
			break
		}
	}

	t.balance.Grams.Sub(t.balance.Grams, remain)
	if t.msgExtra != nil {
		t.balance.Extra = nil
	}
	t.totalFees.Add(t.totalFees, first)
	t.outMsgs = append(t.outMsgs, out)
	t.endLT++

	return t.bounced(&types.BouncePhase{
		Kind:    types.BounceOk,
		MsgSize: size,
		MsgFees: first,
		FwdFees: new(uint256.Int).Sub(fwd, first),
	}), nil
}

// bounceMessage serializes the bounced message and reports whether its body
// ended up in the root cell.
func (t *transaction) bounceMessage(addr block.Address, remain, fwd, first *uint256.Int, body *cell.Cell, asRef bool) (*cell.Cell, bool, error) {
	msg := &block.Message{
		Info: block.MsgInfo{
			Kind:        block.InternalMessage,
			IHRDisabled: true,
			Bounced:     true,
			Src:         &addr,
			Dest:        *t.msg.Info.Src,
			Value: block.CurrencyCollection{
				Grams: new(uint256.Int).Sub(remain, fwd),
				Extra: t.msgExtra,
			},
			IHRFee:    new(uint256.Int),
			FwdFee:    new(uint256.Int).Sub(fwd, first),
			CreatedLT: t.endLT,
			CreatedAt: t.now,
		},
		Body:    body,
		BodyRef: asRef,
	}
	out, err := msg.ToCell()
	if err != nil {
		return nil, false, err
	}

	written, err := block.LoadMessage(out)
	if err != nil {
		return nil, false, err
	}
	return out, !written.BodyRef, nil
}

func (t *transaction) bounced(bp *types.BouncePhase) *types.BouncePhase {
	t.logger.Debug().Stringer("kind", bp.Kind).Msg("bounce phase")
	return bp
}

// bounceBody echoes up to maxBits of the original body after a 0xffffffff
// prefix. It returns nil when bounced messages carry no body.
func (t *transaction) bounceBody(maxBits uint) (*cell.Cell, error) {
	if maxBits == 0 {
		return nil, nil
	}

	b := cell.BeginCell()
	if err := b.StoreUInt(bouncePrefix, 32); err != nil {
		return nil, err
	}
	if t.msg.Body == nil {
		return b.EndCell(), nil
	}

	n := t.msg.Body.BitsSize()
	if n > maxBits {
		n = maxBits
	}
	if n > 0 {
		data, err := t.msg.Body.BeginParse().LoadSlice(n)
		if err != nil {
			return nil, err
		}
		if err := b.StoreSlice(data, n); err != nil {
			return nil, err
		}
	}
	return b.EndCell(), nil
}
