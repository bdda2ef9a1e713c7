package entity

// MarginQueryRequest is the body of an engine query against the margin protocol.
type MarginQueryRequest struct {
	Type       string `json:"type"`
	Subaccount string `json:"subaccount"`
}

// MarginHealth holds x18 fixed-point figures of one health group.
type MarginHealth struct {
	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	Health      string `json:"health"`
}

// MarginSubaccountInfo is the data part of a subaccount_info response.
type MarginSubaccountInfo struct {
	Subaccount string         `json:"subaccount"`
	Exists     bool           `json:"exists"`
	Healths    []MarginHealth `json:"healths"`
}

// MarginQueryResponse is the envelope returned by the margin protocol engine.
type MarginQueryResponse struct {
	Status string               `json:"status"`
	Data   MarginSubaccountInfo `json:"data"`
	Error  string               `json:"error,omitempty"`
}
