package tokencatalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// tokenFileEntry mirrors one element of a per-chain token JSON file.
type tokenFileEntry struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// FileCatalog implements port.TokenCatalog by scanning a directory of
// per-chain JSON files. A file named "<chain identifier>.json" holds the
// tokens for that chain; files for unknown identifiers are skipped with a
// warning.
type FileCatalog struct {
	logger port.Logger
	tokens map[entity.ChainType][]entity.TokenInfo
}

// NewFileCatalog loads every token file under dirPath eagerly. The scan
// fails only when the directory itself is unreadable; individual malformed
// files are skipped with a warning.
func NewFileCatalog(dirPath string, logger port.Logger) (*FileCatalog, error) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token directory %s: %w", dirPath, err)
	}

	c := &FileCatalog{
		logger: logger,
		tokens: make(map[entity.ChainType][]entity.TokenInfo),
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}

		identifier := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		chain, err := entity.ParseChainType(identifier)
		if err != nil {
			logger.Warn("Token file found for an unknown chain identifier, skipping.",
				"file", file.Name(), "identifier", identifier)
			continue
		}

		path := filepath.Join(dirPath, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read token file, skipping.", "path", path, "error", err)
			continue
		}

		var entries []tokenFileEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			logger.Warn("Failed to parse token file, skipping.", "path", path, "error", err)
			continue
		}

		infos := make([]entity.TokenInfo, 0, len(entries))
		for _, e := range entries {
			if e.Symbol == "" {
				logger.Warn("Token entry without symbol, skipping.", "path", path, "address", e.Address)
				continue
			}
			infos = append(infos, entity.TokenInfo{
				Address:  e.Address,
				Symbol:   e.Symbol,
				Name:     e.Name,
				Decimals: e.Decimals,
				Chain:    chain,
			})
		}
		c.tokens[chain] = infos
		logger.Info("Loaded token file", "chain", identifier, "tokens", len(infos))
	}

	return c, nil
}

// TokensByChain returns the catalog entries for chain, failing closed for
// identifiers outside the enumeration.
func (c *FileCatalog) TokensByChain(chain entity.ChainType) ([]entity.TokenInfo, error) {
	if !chain.Valid() {
		return nil, &entity.UnknownChainError{Value: chain.String()}
	}
	return c.tokens[chain], nil
}

// FindBySymbol performs a case-insensitive symbol lookup on one chain.
func (c *FileCatalog) FindBySymbol(chain entity.ChainType, symbol string) (entity.TokenInfo, bool) {
	for _, t := range c.tokens[chain] {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return entity.TokenInfo{}, false
}
