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

// Package emulator re-executes committed transactions of a single account
// and verifies that the reproduction matches the original bit for bit.
package emulator

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/onflow/ton-emulator/block"
	"github.com/onflow/ton-emulator/phase"
	"github.com/onflow/ton-emulator/vm"
)

// ChainConfig is the view of the blockchain configuration the emulator reads.
type ChainConfig interface {
	GetParam(id uint32) *cell.Cell
	GetStoragePrices() ([]block.StoragePrices, error)
	WorkchainList() (block.WorkchainSet, error)
	HasCapability(flag uint64) bool
	IsSpecialAccount(addr block.Address) bool
	RootCell() *cell.Cell
}

var _ ChainConfig = &block.Config{}

// Emulator reproduces transactions against a fixed chain configuration. It
// keeps no per-account state and may be shared between goroutines as long
// as every call works on its own account.
type Emulator struct {
	chain   ChainConfig
	engine  phase.Engine
	seeds   SeedProvider
	logger  zerolog.Logger
	metrics *Metrics
	conf    config
}

// config is a set of configuration options for an emulator.
type config struct {
	Logger       zerolog.Logger
	Libraries    *cell.Cell
	Executor     vm.Executor
	Engine       phase.Engine
	SeedProvider SeedProvider
	Metrics      *Metrics
}

// defaultConfig is the default configuration for an emulator.
var defaultConfig = func() config {
	return config{
		Logger:       zerolog.Nop(),
		SeedProvider: RandomSeedProvider(),
	}
}()

// Option is a function applying a change to the emulator config.
type Option func(*config)

// WithLogger sets the logger.
func WithLogger(
	logger zerolog.Logger,
) Option {
	return func(c *config) {
		c.Logger = logger
	}
}

// WithLibraries sets the shared libraries dictionary made available to contract code.
func WithLibraries(libraries *cell.Cell) Option {
	return func(c *config) {
		c.Libraries = libraries
	}
}

// WithExecutor sets the execution engine the default phase engine runs contract code with.
func WithExecutor(executor vm.Executor) Option {
	return func(c *config) {
		c.Executor = executor
	}
}

// WithPhaseEngine replaces the phase engine. The executor is ignored when one is set.
func WithPhaseEngine(engine phase.Engine) Option {
	return func(c *config) {
		c.Engine = engine
	}
}

// WithSeedProvider sets where random seeds come from when the caller does not pin one.
func WithSeedProvider(seeds SeedProvider) Option {
	return func(c *config) {
		c.SeedProvider = seeds
	}
}

// WithMetrics enables reporting to the given metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *config) {
		c.Metrics = metrics
	}
}

// New instantiates an emulator over the given chain configuration.
func New(chain ChainConfig, opts ...Option) (*Emulator, error) {
	if chain == nil {
		return nil, fmt.Errorf("chain configuration is required")
	}

	// apply options to the default config
	conf := defaultConfig
	for _, opt := range opts {
		opt(&conf)
	}

	engine := conf.Engine
	if engine == nil {
		if conf.Executor == nil {
			return nil, fmt.Errorf("either an executor or a phase engine is required")
		}
		engine = phase.NewProcessor(conf.Executor, phase.WithProcessorLogger(conf.Logger))
	}

	return &Emulator{
		chain:   chain,
		engine:  engine,
		seeds:   conf.SeedProvider,
		logger:  conf.Logger,
		metrics: conf.Metrics,
		conf:    conf,
	}, nil
}
