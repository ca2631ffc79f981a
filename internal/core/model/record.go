package model

// UsageRecord is one accepted row of an activity export. Values are never
// mutated after parsing.
type UsageRecord struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	AppName          string  `json:"appName"`
	Model            string  `json:"model"`
	Cost             float64 `json:"cost"`
}

// TotalTokens returns prompt plus completion tokens.
func (r UsageRecord) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// HasCost reports whether the record carries a positive cost.
func (r UsageRecord) HasCost() bool {
	return r.Cost > 0
}

// Valid reports whether both token counts are positive. Cancelled rows never
// become records, so this is the whole validity predicate for a record.
func (r UsageRecord) Valid() bool {
	return r.PromptTokens > 0 && r.CompletionTokens > 0
}
