package entity

// Fetch operations of the balance/transaction service.
const (
	OpBalances     = "balances"
	OpTransactions = "transactions"
)

// FetchError represents a failed request to the balance/transaction service.
// Message is either the upstream-provided error text or the chain's fallback message,
// and is what gets surfaced to the user.
type FetchError struct {
	Chain      Chain
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
