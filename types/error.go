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

// DescriptionError is returned when a transaction description cannot be decoded.
type DescriptionError struct {
	Kind TransactionKind
	Err  error
}

func (e *DescriptionError) Error() string {
	if e.Kind.IsTickTock() {
		return fmt.Sprintf("Failed to unpack tick tock transaction description: %s", e.Err)
	}
	return fmt.Sprintf("Failed to unpack transaction description: %s", e.Err)
}

func (e *DescriptionError) Unwrap() error {
	return e.Err
}

// UnsupportedKindError is returned for descriptions that carry no phases this
// package can decode or serialize.
type UnsupportedKindError struct {
	Kind TransactionKind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("%s transactions are not supported", e.Kind)
}

type SeedLengthError struct {
	Length int
}

func (e *SeedLengthError) Error() string {
	return fmt.Sprintf("random seed must be 32 bytes, got %d", e.Length)
}
