package entity

// IndexerToken is token metadata as served by the Blockscout-style indexer.
// Decimals arrive as a string and may be null for broken contracts.
type IndexerToken struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals *string `json:"decimals"`
	IconURL  *string `json:"icon_url"`
	Type     string  `json:"type"`
}

// IndexerTokenBalance is one entry of GET /addresses/{address}/tokens.
type IndexerTokenBalance struct {
	Token IndexerToken `json:"token"`
	Value string       `json:"value"`
}

// IndexerTokenBalancesPage is the paginated wrapper some indexer deployments return.
type IndexerTokenBalancesPage struct {
	Items []IndexerTokenBalance `json:"items"`
}
