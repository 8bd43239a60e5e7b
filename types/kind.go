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

import "fmt"

// TransactionKind is the closed set of transaction description variants.
type TransactionKind uint8

const (
	TransactionOrdinary TransactionKind = iota
	TransactionStorage
	TransactionTick
	TransactionTock
	TransactionSplitPrepare
	TransactionSplitInstall
	TransactionMergePrepare
	TransactionMergeInstall
)

var kindNames = map[TransactionKind]string{
	TransactionOrdinary:     "ordinary",
	TransactionStorage:      "storage",
	TransactionTick:         "tick",
	TransactionTock:         "tock",
	TransactionSplitPrepare: "split-prepare",
	TransactionSplitInstall: "split-install",
	TransactionMergePrepare: "merge-prepare",
	TransactionMergeInstall: "merge-install",
}

func (k TransactionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TransactionKind(%d)", uint8(k))
}

// IsTickTock reports whether k is a tick or tock transaction.
func (k TransactionKind) IsTickTock() bool {
	return k == TransactionTick || k == TransactionTock
}

// NeedsCreditPhase reports whether a transaction of kind k with an inbound
// message of the given direction runs a credit phase.
func (k TransactionKind) NeedsCreditPhase(external bool) bool {
	return (k == TransactionOrdinary && !external) || k == TransactionMergeInstall
}
