package entity

// NetworkDefinition holds the configuration of the single EVM chain the engine values wallets on.
type NetworkDefinition struct {
	ChainID                   uint64 `json:"chainId" yaml:"chainId"`
	Name                      string `json:"name" yaml:"name"`
	Identifier                string `json:"identifier" yaml:"identifier"` // Уникальный идентификатор сети (например, "ethereum", "base")
	NativeSymbol              string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals                  int32  `json:"decimals" yaml:"decimals"` // Количество десятичных знаков для нативного токена
	RPCURL                    string `json:"rpcUrl" yaml:"rpcUrl"`
	BlockExplorerURL          string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	WrappedNativeTokenAddress string `json:"wrappedNativeTokenAddress" yaml:"wrappedNativeTokenAddress"`
}
