package airdrop

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// IsEvmAddress reports whether s is a well-formed 20-byte hex address.
func IsEvmAddress(s string) bool {
	return common.IsHexAddress(s)
}

// IsVeridaDID reports whether s looks like a Verida DID
// (did:vda:<network>:<address>).
func IsVeridaDID(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return false
	}
	return parts[0] == "did" && parts[1] == "vda" && common.IsHexAddress(parts[3])
}

// IsIdentity reports whether s is acceptable as an airdrop identity:
// either a DID or a bare wallet address.
func IsIdentity(s string) bool {
	return IsVeridaDID(s) || IsEvmAddress(s)
}

// VerifyAddressOwnership checks that signedMessage is a valid EIP-191
// personal signature of clearMessage by the holder of address. The address
// must also be well-formed; both checks must pass. Comparison is
// case-insensitive as hex addresses carry no canonical casing on the wire.
func VerifyAddressOwnership(address, signedMessage, clearMessage string) bool {
	if !common.IsHexAddress(address) {
		return false
	}

	raw, err := hexutil.Decode(signedMessage)
	if err != nil || len(raw) != crypto.SignatureLength {
		return false
	}

	// Wallets emit V as 27/28; crypto.SigToPub wants 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(clearMessage))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return recovered == common.HexToAddress(address)
}
