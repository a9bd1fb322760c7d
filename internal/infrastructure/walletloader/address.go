package walletloader

import (
	"errors"
	"fmt"
	"strings"

	"portfolio_dashboard/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for addresses that do not belong to the chain.
var ErrInvalidAddress = errors.New("invalid wallet address")

const solanaPubkeyLen = 32

// NormalizeAddress validates address for chain and returns its canonical form:
// EIP-55 checksummed hex for Ethereum, the unchanged base58 string for Solana.
// An empty address is returned as is; it means "disconnected".
func NormalizeAddress(chain entity.Chain, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", nil
	}

	switch chain {
	case entity.ChainEthereum:
		if !common.IsHexAddress(address) {
			return "", fmt.Errorf("%w: %q is not a hex address", ErrInvalidAddress, address)
		}
		checksummed := common.HexToAddress(address).Hex()
		// Mixed case means the caller supplied a checksum, which has to match.
		hexPart := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
		if hexPart != strings.ToLower(hexPart) && hexPart != strings.ToUpper(hexPart) && address != checksummed {
			return "", fmt.Errorf("%w: %q fails EIP-55 checksum", ErrInvalidAddress, address)
		}
		return checksummed, nil
	case entity.ChainSolana:
		decoded, err := base58.Decode(address)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not base58: %v", ErrInvalidAddress, address, err)
		}
		if len(decoded) != solanaPubkeyLen {
			return "", fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidAddress, address, len(decoded), solanaPubkeyLen)
		}
		return address, nil
	default:
		return "", fmt.Errorf("%w: unsupported chain %q", ErrInvalidAddress, chain)
	}
}

// DetectChain guesses the chain of a bare address.
func DetectChain(address string) (entity.Chain, bool) {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return entity.ChainEthereum, true
	}
	if _, err := NormalizeAddress(entity.ChainSolana, address); err == nil && address != "" {
		return entity.ChainSolana, true
	}
	return "", false
}
