package gateway

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	pkgerrors "github.com/pkg/errors"

	"airdrop-service/internal/domain"
	"airdrop-service/internal/usecase"
)

const erc20TransferABI = `[{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

// EvmTransferGateway submits ERC-20 token transfers and reports their
// finality. Initiate returns as soon as the transaction is accepted by the
// node; confirmation is the caller's concern.
type EvmTransferGateway struct {
	client   *ethclient.Client
	token    common.Address
	key      *ecdsa.PrivateKey
	sender   common.Address
	chainID  *big.Int
	transfer abi.ABI
	decimals int
}

func NewEvmTransferGateway(ctx context.Context, rpcURL string, tokenAddress string, senderKeyHex string) (*EvmTransferGateway, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to dial rpc endpoint")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(senderKeyHex, "0x"))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse sender private key")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to resolve chain id")
	}

	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse transfer abi")
	}

	return &EvmTransferGateway{
		client:   client,
		token:    common.HexToAddress(tokenAddress),
		key:      key,
		sender:   crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		transfer: parsed,
		decimals: 18,
	}, nil
}

func (g *EvmTransferGateway) Initiate(ctx context.Context, destination string, amount float64) (string, error) {
	data, err := g.transfer.Pack("transfer", common.HexToAddress(destination), g.toWei(amount))
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to pack transfer calldata")
	}

	nonce, err := g.client.PendingNonceAt(ctx, g.sender)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to fetch pending nonce")
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to fetch gas price")
	}

	gasLimit, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: g.sender,
		To:   &g.token,
		Data: data,
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to estimate gas")
	}

	tx := types.NewTransaction(nonce, g.token, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to sign transaction")
	}

	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return "", pkgerrors.Wrap(err, "failed to send transaction")
	}

	return signed.Hash().Hex(), nil
}

// IsFinal reports whether the transaction has been mined. A missing receipt
// means still pending, not an error; a reverted receipt is a hard failure.
func (g *EvmTransferGateway) IsFinal(ctx context.Context, txHash string) (bool, error) {
	receipt, err := g.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(err, "failed to fetch transaction receipt")
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return false, domain.Technical(domain.CodeTransferFailure, "token transfer transaction reverted", nil)
	}
	return true, nil
}

func (g *EvmTransferGateway) toWei(amount float64) *big.Int {
	scaled := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18))
	wei, _ := scaled.Int(nil)
	return wei
}

var _ usecase.TransferGateway = (*EvmTransferGateway)(nil)
