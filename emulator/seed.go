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

package emulator

import (
	"crypto/rand"

	"github.com/onflow/ton-emulator/types"
)

// SeedProvider supplies the random seed contract code observes when the
// caller does not pin one.
type SeedProvider interface {
	Seed() (types.Seed, error)
}

// SeedProviderFunc adapts a function to the SeedProvider interface.
type SeedProviderFunc func() (types.Seed, error)

func (f SeedProviderFunc) Seed() (types.Seed, error) {
	return f()
}

// RandomSeedProvider draws seeds from the operating system's secure random source.
func RandomSeedProvider() SeedProvider {
	return SeedProviderFunc(func() (types.Seed, error) {
		var seed types.Seed
		_, err := rand.Read(seed[:])
		return seed, err
	})
}

// FixedSeedProvider always returns seed.
func FixedSeedProvider(seed types.Seed) SeedProvider {
	return SeedProviderFunc(func() (types.Seed, error) {
		return seed, nil
	})
}
