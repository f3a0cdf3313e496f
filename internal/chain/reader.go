// Package chain reads mint status from a deployed collection over JSON-RPC.
// Reads are advisory: the contract's own checks decide every redemption.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const ownerOfABI = `[{"type":"function","name":"ownerOf","stateMutability":"view",
	"inputs":[{"name":"tokenId","type":"uint256"}],
	"outputs":[{"name":"","type":"address"}]}]`

// ErrInvalidContractAddress is returned when the collection address is not a hex address.
var ErrInvalidContractAddress = errors.New("invalid contract address")

// Caller is the subset of ethclient.Client used for read-only calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader answers "is this token minted?" by calling ownerOf on the collection.
type Reader struct {
	caller   Caller
	contract common.Address
	abi      abi.ABI
	timeout  time.Duration
	closeFn  func()
}

// Dial connects to rpcURL and returns a Reader for the collection at contract.
func Dial(ctx context.Context, rpcURL, contract string, timeout time.Duration) (*Reader, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContractAddress, contract)
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	r, err := NewReader(client, common.HexToAddress(contract), timeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closeFn = client.Close
	return r, nil
}

// NewReader creates a Reader over an existing Caller.
func NewReader(caller Caller, contract common.Address, timeout time.Duration) (*Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(ownerOfABI))
	if err != nil {
		return nil, fmt.Errorf("parse ownerOf abi: %w", err)
	}
	return &Reader{
		caller:   caller,
		contract: contract,
		abi:      parsed,
		timeout:  timeout,
	}, nil
}

// OwnerOf returns the on-chain owner of tokenID.
// A reverted call (nonexistent token) yields the zero address and no error.
func (r *Reader) OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error) {
	data, err := r.abi.Pack("ownerOf", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack ownerOf: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		if isRevert(err) {
			return common.Address{}, nil
		}
		return common.Address{}, fmt.Errorf("call ownerOf(%d): %w", tokenID, err)
	}

	values, err := r.abi.Unpack("ownerOf", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack ownerOf(%d): %w", tokenID, err)
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unpack ownerOf(%d): unexpected type %T", tokenID, values[0])
	}
	return owner, nil
}

// IsMinted reports whether tokenID has a non-zero owner on chain.
func (r *Reader) IsMinted(ctx context.Context, tokenID uint64) (bool, error) {
	owner, err := r.OwnerOf(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return owner != (common.Address{}), nil
}

// Close releases the RPC connection opened by Dial.
func (r *Reader) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}

func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}
