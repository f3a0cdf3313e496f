package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signer key",
		Long: `Generate a secp256k1 key for voucher signing.

The private key is printed once. Store it in SIGNER_PRIVATE_KEY and
register the address on the contract with setSignerAddress.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"address":    crypto.PubkeyToAddress(key.PublicKey).Hex(),
				"privateKey": hexutil.Encode(crypto.FromECDSA(key)),
			})
		},
	}
}

func newAddressCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the signer address for the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.signer()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Address().Hex())
			return err
		},
	}
}
