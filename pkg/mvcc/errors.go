package mvcc

import "errors"

var (
	// ErrConflict is returned by Commit when validation finds at least one
	// read-set entry whose key has a newer version in the store than the
	// one the transaction observed. The caller is expected to retry the
	// transaction from scratch.
	ErrConflict = errors.New("mvcc: commit validation failed: read set conflict")

	// ErrUnknownTransaction is returned when an operation names a tx_id
	// that this manager never issued.
	ErrUnknownTransaction = errors.New("mvcc: unknown transaction")

	// ErrTransactionNotActive is returned when an operation names a tx_id
	// that this manager issued but that already reached a terminal state
	// (committed or aborted) — it has been removed from the live set, but
	// its id is still within the range this manager has handed out.
	ErrTransactionNotActive = errors.New("mvcc: transaction not active")

	// ErrMaxLiveTransactions is returned by Begin when the manager was
	// configured with WithMaxLiveTransactions and the live set is full.
	ErrMaxLiveTransactions = errors.New("mvcc: maximum live transactions reached")
)
