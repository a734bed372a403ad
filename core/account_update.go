package core

// account_update.go - the Account Update Aggregator: merges
// per-transaction account updates into one chained update per account,
// enforcing that the final commitment of update i equals the initial
// commitment of update i+1. Grounded on
// original_source/.../proposed_batch.rs's BatchAccountUpdate::merge_proven_tx
// and core/consensus_validator_management.go's struct-plus-mutation-method
// state-transition bookkeeping style.

import "fmt"

// AccountUpdateDetails is the domain-specific payload of an account state
// transition. Private accounts never reveal their delta (folding two
// private updates stays private); public accounts concatenate their
// deltas in transaction order and sum nonce deltas.
type AccountUpdateDetails struct {
	Private     bool
	PublicDelta []byte
	NonceDelta  uint64
}

func (d AccountUpdateDetails) merge(next AccountUpdateDetails) AccountUpdateDetails {
	if d.Private || next.Private {
		return AccountUpdateDetails{Private: true}
	}
	merged := make([]byte, 0, len(d.PublicDelta)+len(next.PublicDelta))
	merged = append(merged, d.PublicDelta...)
	merged = append(merged, next.PublicDelta...)
	return AccountUpdateDetails{
		PublicDelta: merged,
		NonceDelta:  d.NonceDelta + next.NonceDelta,
	}
}

// AccountUpdate is the state transition a single transaction applies to
// the account it touches.
type AccountUpdate struct {
	AccountId              AccountId
	InitialStateCommitment Hash
	FinalStateCommitment   Hash
	Details                AccountUpdateDetails
}

// BatchAccountUpdate is the chained aggregation of one or more
// transactions' updates to the same account, as carried by a
// ProposedBatch (and, one tier up, a ProposedBlock aggregating
// BatchAccountUpdates instead).
type BatchAccountUpdate struct {
	AccountId              AccountId
	InitialStateCommitment Hash
	FinalStateCommitment   Hash
	Details                AccountUpdateDetails
	Transactions           []TransactionId
}

// newBatchAccountUpdate seeds an aggregation from the first transaction
// touching an account.
func newBatchAccountUpdate(update AccountUpdate, txId TransactionId) *BatchAccountUpdate {
	return &BatchAccountUpdate{
		AccountId:              update.AccountId,
		InitialStateCommitment: update.InitialStateCommitment,
		FinalStateCommitment:   update.FinalStateCommitment,
		Details:                update.Details,
		Transactions:           []TransactionId{txId},
	}
}

// accountChainOrderError is the ordering-violation cause wrapped by
// AccountUpdateError/BlockAccountUpdateError.
type accountChainOrderError struct {
	Expected Hash
	Actual   Hash
}

func (e *accountChainOrderError) Error() string {
	return fmt.Sprintf("state commitment chain broken: expected initial commitment %s, got %s",
		e.Expected, e.Actual)
}

// merge folds a subsequent transaction's update into this aggregation. The
// transaction's initial state commitment must equal the aggregation's
// current final commitment; any other value means the caller presented
// transactions touching this account out of chain order.
func (u *BatchAccountUpdate) merge(update AccountUpdate, txId TransactionId) error {
	if u.FinalStateCommitment != update.InitialStateCommitment {
		return &accountChainOrderError{Expected: u.FinalStateCommitment, Actual: update.InitialStateCommitment}
	}
	u.FinalStateCommitment = update.FinalStateCommitment
	u.Details = u.Details.merge(update.Details)
	u.Transactions = append(u.Transactions, txId)
	return nil
}

// mergeBatch folds a subsequent batch's aggregated update into a
// block-level aggregation, using the same chaining rule one tier up.
func (u *BatchAccountUpdate) mergeBatch(next *BatchAccountUpdate) error {
	if u.FinalStateCommitment != next.InitialStateCommitment {
		return &accountChainOrderError{Expected: u.FinalStateCommitment, Actual: next.InitialStateCommitment}
	}
	u.FinalStateCommitment = next.FinalStateCommitment
	u.Details = u.Details.merge(next.Details)
	u.Transactions = append(u.Transactions, next.Transactions...)
	return nil
}
