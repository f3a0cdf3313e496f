// Command voucherctl is the operator tool for the lazy-mint collection:
// key management, offline voucher signing and checking, dry-run redemption
// against the in-memory contract model, and catalog import.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/lazymint/internal/config"
	"github.com/fairyhunter13/lazymint/internal/voucher"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	key string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "voucherctl",
		Short:         "Operator tool for lazy-mint vouchers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.key, "key", "", "signer private key in hex (default: $SIGNER_PRIVATE_KEY)")

	root.AddCommand(
		newKeygenCmd(),
		newAddressCmd(&flags),
		newSignCmd(&flags),
		newVerifyCmd(&flags),
		newSimulateCmd(&flags),
		newImportCmd(),
	)
	return root
}

// signer resolves the signing key from --key or the environment.
func (f *globalFlags) signer() (*voucher.Signer, error) {
	key := f.key
	if key == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		key = cfg.Signer.PrivateKey
	}
	return voucher.NewSignerFromHex(key)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func readVoucher(cmd *cobra.Command, path string) (voucher.Voucher, error) {
	var v voucher.Voucher
	raw, err := readInput(cmd, path)
	if err != nil {
		return v, fmt.Errorf("read voucher: %w", err)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &v); err != nil {
		return v, fmt.Errorf("decode voucher: %w", err)
	}
	return v, nil
}
