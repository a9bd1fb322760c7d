package entity

// Transaction type values reported by the transaction service.
const (
	TxTypeSend     = "send"
	TxTypeTransfer = "transfer"
	TxTypeReceive  = "receive"
)

// Transaction status values.
const (
	TxStatusSuccess = "success"
	TxStatusFailed  = "failed"
)

// Transaction is an immutable history entry for one address.
type Transaction struct {
	Hash        string  `json:"hash"`
	Timestamp   int64   `json:"timestamp"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	TokenSymbol string  `json:"tokenSymbol"`
	Chain       string  `json:"chain,omitempty"`
	Status      string  `json:"status"`
	From        string  `json:"from"`
	To          string  `json:"to"`
}

// IsOutgoing reports whether the transaction moved funds out of the tracked address.
func (t Transaction) IsOutgoing() bool {
	return t.Type == TxTypeSend || t.Type == TxTypeTransfer
}

// Succeeded reports whether the transaction status is success.
func (t Transaction) Succeeded() bool {
	return t.Status == TxStatusSuccess
}
