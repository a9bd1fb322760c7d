package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
)

// DefaultWalletFilePath is read by the watch command when no wallets are given on the command line.
const DefaultWalletFilePath = "data/wallets.txt"

// WalletFileLoader implements the port.WalletProvider interface by loading wallets from a file.
//
// Each non-empty line that is not a comment is either "<chain>:<address>" (chain as in
// entity.ParseChain) or a bare address whose chain is detected from its format.
// Only one wallet per chain is tracked; later entries for the same chain are skipped.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) port.WalletProvider {
	if filePath == "" {
		filePath = DefaultWalletFilePath
	}
	return &WalletFileLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// GetWallets reads wallet addresses from the configured file path.
func (l *WalletFileLoader) GetWallets() (map[entity.Chain]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	wallets := make(map[entity.Chain]string, len(entity.Chains))
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		chain, address, err := ParseWalletLine(line)
		if err != nil {
			l.logger.Warn("Skipping invalid wallet entry", "file", l.filePath, "line_number", lineNum, "error", err)
			continue
		}
		if existing, ok := wallets[chain]; ok {
			l.logger.Warn("Only one wallet per chain is tracked, skipping entry",
				"file", l.filePath, "line_number", lineNum, "chain", chain, "kept", existing)
			continue
		}
		wallets[chain] = address
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}

// ParseWalletLine parses "<chain>:<address>" or a bare address and normalizes the address.
func ParseWalletLine(line string) (entity.Chain, string, error) {
	line = strings.TrimSpace(line)

	var chain entity.Chain
	address := line
	if prefix, rest, found := strings.Cut(line, ":"); found {
		c, ok := entity.ParseChain(prefix)
		if !ok {
			return "", "", fmt.Errorf("unknown chain %q", prefix)
		}
		chain, address = c, strings.TrimSpace(rest)
	} else {
		c, ok := DetectChain(line)
		if !ok {
			return "", "", fmt.Errorf("%w: cannot detect chain of %q", ErrInvalidAddress, line)
		}
		chain = c
	}

	if address == "" {
		return "", "", fmt.Errorf("%w: empty address for %s", ErrInvalidAddress, chain)
	}
	normalized, err := NormalizeAddress(chain, address)
	if err != nil {
		return "", "", err
	}
	return chain, normalized, nil
}
