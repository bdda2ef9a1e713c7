package networkdefinition

import (
	"strings"

	"portfolio_valuator/internal/domain/entity"
)

// Predefined network definitions. RPC URLs are public fallbacks; production deployments
// are expected to configure their own node.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:                   1,
		Name:                      "Ethereum Mainnet",
		Identifier:                "ethereum",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		RPCURL:                    "https://ethereum-rpc.publicnode.com",
		BlockExplorerURL:          "https://etherscan.io",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
	}
	BSC = entity.NetworkDefinition{
		ChainID:                   56,
		Name:                      "BNB Smart Chain",
		Identifier:                "bsc",
		NativeSymbol:              "BNB",
		Decimals:                  18,
		RPCURL:                    "https://bsc.publicnode.com",
		BlockExplorerURL:          "https://bscscan.com",
		WrappedNativeTokenAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
	}
	Polygon = entity.NetworkDefinition{
		ChainID:                   137,
		Name:                      "Polygon PoS",
		Identifier:                "polygon",
		NativeSymbol:              "POL",
		Decimals:                  18,
		RPCURL:                    "https://polygon-rpc.com/",
		BlockExplorerURL:          "https://polygonscan.com",
		WrappedNativeTokenAddress: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", // WMATIC
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:                   42161,
		Name:                      "Arbitrum One",
		Identifier:                "arbitrum",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		RPCURL:                    "https://arb1.arbitrum.io/rpc",
		BlockExplorerURL:          "https://arbiscan.io",
		WrappedNativeTokenAddress: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", // WETH on Arbitrum
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:                   43114,
		Name:                      "Avalanche C-Chain",
		Identifier:                "avalanche",
		NativeSymbol:              "AVAX",
		Decimals:                  18,
		RPCURL:                    "https://api.avax.network/ext/bc/C/rpc",
		BlockExplorerURL:          "https://snowtrace.io",
		WrappedNativeTokenAddress: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", // WAVAX
	}
	Base = entity.NetworkDefinition{
		ChainID:                   8453,
		Name:                      "Base Mainnet",
		Identifier:                "base",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		RPCURL:                    "https://base.publicnode.com",
		BlockExplorerURL:          "https://basescan.org",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Base
	}
	Optimism = entity.NetworkDefinition{
		ChainID:                   10,
		Name:                      "OP Mainnet",
		Identifier:                "optimism",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		RPCURL:                    "https://optimism.publicnode.com",
		BlockExplorerURL:          "https://optimistic.etherscan.io",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Optimism
	}
	Ink = entity.NetworkDefinition{
		ChainID:                   57073,
		Name:                      "Ink",
		Identifier:                "ink",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		RPCURL:                    "https://rpc-gel.inkonchain.com",
		BlockExplorerURL:          "https://explorer.inkonchain.com",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Ink
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier:  Ethereum,
	BSC.Identifier:       BSC,
	Polygon.Identifier:   Polygon,
	Arbitrum.Identifier:  Arbitrum,
	Avalanche.Identifier: Avalanche,
	Base.Identifier:      Base,
	Optimism.Identifier:  Optimism,
	Ink.Identifier:       Ink,
}

// Lookup returns the preset for an identifier (case-insensitive) or chain ID.
func Lookup(identifier string, chainID uint64) (entity.NetworkDefinition, bool) {
	if def, ok := allKnownDefinitions[strings.ToLower(strings.TrimSpace(identifier))]; ok {
		return def, true
	}
	if chainID == 0 {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range allKnownDefinitions {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// WithPreset fills the zero-valued fields of def from the matching preset. Explicitly
// configured values always win.
func WithPreset(def entity.NetworkDefinition) entity.NetworkDefinition {
	preset, ok := Lookup(def.Identifier, def.ChainID)
	if ok {
		if def.ChainID == 0 {
			def.ChainID = preset.ChainID
		}
		def.Identifier = preset.Identifier
		if def.Name == "" || strings.EqualFold(def.Name, preset.Identifier) {
			def.Name = preset.Name
		}
		if def.NativeSymbol == "" {
			def.NativeSymbol = preset.NativeSymbol
		}
		if def.RPCURL == "" {
			def.RPCURL = preset.RPCURL
		}
		if def.BlockExplorerURL == "" {
			def.BlockExplorerURL = preset.BlockExplorerURL
		}
		if def.WrappedNativeTokenAddress == "" {
			def.WrappedNativeTokenAddress = preset.WrappedNativeTokenAddress
		}
	}
	if def.NativeSymbol == "" {
		def.NativeSymbol = "ETH"
	}
	if def.Decimals == 0 {
		def.Decimals = 18
	}
	return def
}
