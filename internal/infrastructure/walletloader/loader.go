package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// LoadWallets reads one wallet address per line from filePath.
// Blank lines and lines starting with '#' are ignored; malformed addresses are logged and skipped.
func LoadWallets(filePath string, logger port.Logger) ([]entity.Wallet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !IsWalletAddress(line) {
			logger.Warn("Skipping invalid wallet address format", "file", filePath, "line_number", lineNum, "address", line)
			continue
		}
		key := strings.ToLower(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wallets = append(wallets, entity.Wallet{Address: key})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", filePath, err)
	}
	return wallets, nil
}

// IsWalletAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsWalletAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) == 42 && common.IsHexAddress(s)
}
