// Package chain holds the thin glue between idpack and a JSON-RPC node:
// proxy implementation lookups and transaction revert reasons.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"xdao.co/idpack/codec"
)

// ImplementationSlot is the EIP-1967 storage slot holding a proxy's
// implementation address: keccak256("eip1967.proxy.implementation") - 1.
var ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// ImplementationSlotFor computes an EIP-1967 style slot for label.
func ImplementationSlotFor(label string) common.Hash {
	sum := codec.Keccak256([]byte(label))
	v := new(big.Int).SetBytes(sum[:])
	v.Sub(v, big.NewInt(1))
	return common.BigToHash(v)
}

// StorageReader reads contract storage. *ethclient.Client implements it.
type StorageReader interface {
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// Backend is what GetRevertReason needs from a node. *ethclient.Client
// implements it.
type Backend interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var addressArgs = abi.Arguments{{Type: mustType("address")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// GetImplementationAddress returns the implementation behind an EIP-1967
// proxy at the latest block.
func GetImplementationAddress(ctx context.Context, r StorageReader, proxy common.Address) (common.Address, error) {
	raw, err := r.StorageAt(ctx, proxy, ImplementationSlot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("read implementation slot: %w", err)
	}
	vals, err := addressArgs.Unpack(raw)
	if err != nil {
		return common.Address{}, codec.WrapError(codec.KindABI, "IDP-ABI-020", "decode implementation slot", err)
	}
	return vals[0].(common.Address), nil
}

// GetRevertReason replays a mined transaction against its block and reports
// why it reverted. A call that succeeds yields "No revert reason. Result: 0x…".
// Only failures to load the transaction are returned as errors.
func GetRevertReason(ctx context.Context, b Backend, txHash common.Hash) (string, error) {
	tx, pending, err := b.TransactionByHash(ctx, txHash)
	if err != nil {
		return "", fmt.Errorf("load transaction %s: %w", txHash.Hex(), err)
	}
	if pending {
		return "", fmt.Errorf("transaction %s is pending", txHash.Hex())
	}
	receipt, err := b.TransactionReceipt(ctx, txHash)
	if err != nil {
		return "", fmt.Errorf("load receipt %s: %w", txHash.Hex(), err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return "", fmt.Errorf("recover sender: %w", err)
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		msg.GasPrice = tx.GasPrice()
	default:
		msg.GasFeeCap = tx.GasFeeCap()
		msg.GasTipCap = tx.GasTipCap()
	}
	msg.AccessList = tx.AccessList()

	result, err := b.CallContract(ctx, msg, receipt.BlockNumber)
	if err != nil {
		return revertMessage(err), nil
	}
	return "No revert reason. Result: " + hexutil.Encode(result), nil
}

func revertMessage(err error) string {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return reason
				}
			}
		}
	}
	return err.Error()
}

// Dial connects to an http(s) or ws(s) JSON-RPC endpoint.
func Dial(ctx context.Context, rawurl string) (*ethclient.Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid rpc url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("chain: unsupported rpc url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("chain: rpc url has no host")
	}
	return ethclient.DialContext(ctx, rawurl)
}
