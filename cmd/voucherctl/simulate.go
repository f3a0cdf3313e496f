package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/lazymint/internal/contract"
	"github.com/fairyhunter13/lazymint/internal/price"
	"github.com/fairyhunter13/lazymint/internal/voucher"
)

// defaultBuyer is a well-known development account.
const defaultBuyer = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

type simulateOptions struct {
	signer    string
	buyer     string
	value     string
	mintPrice string
	maxSupply uint64
	replay    bool
}

type simulateAttempt struct {
	OK      bool   `json:"ok"`
	TokenID uint64 `json:"tokenId,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Paid    string `json:"paidWei,omitempty"`
	Refund  string `json:"refundWei,omitempty"`
	Error   string `json:"error,omitempty"`
}

type simulateResult struct {
	Attempts     []simulateAttempt `json:"attempts"`
	TotalMinted  uint64            `json:"totalMinted"`
	VoucherUsed  bool              `json:"voucherUsed"`
	ContractWei  string            `json:"contractBalanceWei"`
	BuyerWei     string            `json:"buyerBalanceWei"`
	EventsByKind map[string]int    `json:"events"`
}

func newSimulateCmd(flags *globalFlags) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate <voucher.json|->",
		Short: "Dry-run a redemption against a fresh collection",
		Long: `Deploy an in-memory collection, fund the buyer with exactly --value,
and redeem the voucher. With --replay the voucher is redeemed a second
time to show that it is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readVoucher(cmd, args[0])
			if err != nil {
				return err
			}
			signer, err := expectedSigner(flags, opts.signer)
			if err != nil {
				return err
			}
			if !common.IsHexAddress(opts.buyer) {
				return fmt.Errorf("invalid buyer address %q", opts.buyer)
			}
			buyer := common.HexToAddress(opts.buyer)

			value := v.Price
			if opts.value != "" {
				if value, err = price.NormalizePriceWei(opts.value); err != nil {
					return fmt.Errorf("invalid value %q: %w", opts.value, err)
				}
			}
			mintPrice, err := price.NormalizePriceWei(opts.mintPrice)
			if err != nil {
				return fmt.Errorf("invalid mint price %q: %w", opts.mintPrice, err)
			}

			res, err := simulate(signer, buyer, value, mintPrice, opts.maxSupply, opts.replay, v)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&opts.signer, "signer", "", "authorized signer address (default: address of the configured key)")
	cmd.Flags().StringVar(&opts.buyer, "buyer", defaultBuyer, "redeeming account")
	cmd.Flags().StringVar(&opts.value, "value", "", "attached value, wei or ETH (default: voucher price)")
	cmd.Flags().StringVar(&opts.mintPrice, "mint-price", "50000000000000000", "collection mint price, wei or ETH")
	cmd.Flags().Uint64Var(&opts.maxSupply, "max-supply", 10000, "collection max supply")
	cmd.Flags().BoolVar(&opts.replay, "replay", false, "redeem the voucher a second time")
	return cmd
}

func simulate(signer, buyer common.Address, value, mintPrice *big.Int, maxSupply uint64, replay bool, v voucher.Voucher) (*simulateResult, error) {
	ledger := contract.NewMemoryLedger()
	attempts := 1
	if replay {
		attempts = 2
	}
	ledger.Credit(buyer, new(big.Int).Mul(value, big.NewInt(int64(attempts))))

	nft, err := contract.New(contract.Config{
		Address:   common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Name:      "Simulation",
		Symbol:    "SIM",
		Owner:     signer,
		MintPrice: mintPrice,
		MaxSupply: maxSupply,
		Signer:    signer,
	}, ledger)
	if err != nil {
		return nil, err
	}

	res := &simulateResult{EventsByKind: map[string]int{}}
	for i := 0; i < attempts; i++ {
		receipt, err := nft.LazyMint(contract.Msg{From: buyer, Value: value}, v)
		if err != nil {
			res.Attempts = append(res.Attempts, simulateAttempt{Error: err.Error()})
			continue
		}
		res.Attempts = append(res.Attempts, simulateAttempt{
			OK:      true,
			TokenID: receipt.TokenID,
			Owner:   receipt.Owner.Hex(),
			Paid:    receipt.PricePaid.String(),
			Refund:  receipt.Refund.String(),
		})
	}

	res.TotalMinted = nft.TotalMinted()
	res.VoucherUsed = nft.IsVoucherUsed(v)
	res.ContractWei = nft.Balance().String()
	res.BuyerWei = ledger.BalanceOf(buyer).String()
	for _, e := range nft.Events() {
		res.EventsByKind[string(e.Kind)]++
	}
	return res, nil
}
