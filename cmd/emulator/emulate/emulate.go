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

package emulate

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/psiemens/sconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/onflow/ton-emulator/convert"
	"github.com/onflow/ton-emulator/emulator"
	"github.com/onflow/ton-emulator/types"
	"github.com/onflow/ton-emulator/utils"
	"github.com/onflow/ton-emulator/vm"
)

type Config struct {
	Config       string `flag:"config,c" info:"path to the masterchain configuration BOC (ConfigParams dictionary root)"`
	Account      string `flag:"account,a" info:"path to the ShardAccount BOC the transactions start from"`
	Transactions string `flag:"transactions,t" info:"comma-separated paths to transaction BOCs, in order"`
	Libraries    string `flag:"libraries" info:"path to a shared libraries dictionary BOC"`
	Seed         string `flag:"seed" info:"hex-encoded 32-byte random seed to use for every transaction"`
	Output       string `flag:"output,o" info:"path to write the emulation report to"`
	OutputFormat string `default:"json" flag:"output-format" info:"report format. Valid values (json, cbor, msgpack)"`
	Verbose      bool   `default:"false" flag:"verbose,v" info:"enable verbose logging"`
	LogFormat    string `default:"text" flag:"log-format" info:"logging output format. Valid values (text, JSON)"`
}

const EnvPrefix = "TONEMU"

var conf Config

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emulate [transaction BOC...]",
		Short: "Reproduces transactions against an account and verifies their hashes",
		Run: func(cmd *cobra.Command, args []string) {
			logger := initLogger(conf.Verbose)

			if err := run(logger, args); err != nil {
				utils.PrintEmulationError(logger, "", err)
				Exit(1, failureMessage(err))
			}
		},
	}

	initConfig(cmd)

	return cmd
}

func failureMessage(err error) string {
	kind := emulator.ErrorKind(err)
	if code := emulator.ErrorCode(err); code != 0 {
		return fmt.Sprintf("❗  Emulation failed: %s error (code %d)", kind, code)
	}
	return fmt.Sprintf("❗  Emulation failed: %s error", kind)
}

func run(logger *zerolog.Logger, args []string) error {
	if conf.Config == "" || conf.Account == "" {
		return fmt.Errorf("both --config and --account must be provided")
	}

	format, err := convert.ParseFormat(conf.OutputFormat)
	if err != nil {
		return err
	}

	chain, err := LoadConfig(conf.Config)
	if err != nil {
		return err
	}

	acc, err := LoadAccount(conf.Account)
	if err != nil {
		return err
	}

	txs, err := LoadTransactions(transactionPaths(conf.Transactions, args))
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return fmt.Errorf("no transactions to emulate")
	}

	executor, err := vm.NewReplayExecutor(txs...)
	if err != nil {
		return err
	}

	opts := []emulator.Option{
		emulator.WithLogger(*logger),
		emulator.WithExecutor(executor),
	}
	if conf.Libraries != "" {
		libs, err := LoadCell(conf.Libraries)
		if err != nil {
			return err
		}
		opts = append(opts, emulator.WithLibraries(libs))
	}

	var seed *types.Seed
	if conf.Seed != "" {
		s, err := types.ParseSeed(conf.Seed)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		seed = &s
	}

	emu, err := emulator.New(chain, opts...)
	if err != nil {
		return err
	}

	logger.Info().
		Str("account", acc.Address.String()).
		Int("transactions", len(txs)).
		Msg("⚙️  Emulating transactions")

	results, err := emu.EmulateTransactions(acc, txs, seed)
	if err != nil {
		return err
	}

	report, err := convert.ToBatchReport(results)
	if err != nil {
		return err
	}
	utils.PrintEmulationReport(logger, report)

	if conf.Output == "" {
		return nil
	}

	data, err := convert.Encode(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(conf.Output, data, 0o644); err != nil {
		return err
	}
	logger.Info().Str("path", conf.Output).Str("format", string(format)).Msg("📝  Report written")
	return nil
}

func transactionPaths(flag string, args []string) []string {
	var paths []string
	for _, p := range strings.Split(flag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return append(paths, args...)
}

func initLogger(verbose bool) *zerolog.Logger {

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.MessageFieldName = "msg"

	switch strings.ToLower(conf.LogFormat) {
	case "json":
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
		return &logger
	default:
		writer := zerolog.ConsoleWriter{Out: os.Stdout}
		writer.FormatMessage = func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%-44s", i)
		}
		logger := zerolog.New(writer).With().Timestamp().Logger().Level(level)
		return &logger
	}

}

func initConfig(cmd *cobra.Command) {
	err := sconfig.New(&conf).
		FromEnvironment(EnvPrefix).
		BindFlags(cmd.PersistentFlags()).
		Parse()
	if err != nil {
		log.Fatal(err)
	}
}

func Exit(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
