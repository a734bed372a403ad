package core

// errors.go - the structured error catalog for both construction tiers.
// The teacher's ~600 non-test files never define a structured domain-error
// type (everything is errors.New/fmt.Errorf sentinels); this catalog
// instead follows the standard library's named-struct convention
// (*os.PathError, *net.OpError): one type per kind, each implementing
// Error() and, where there's an underlying cause, Unwrap(), so callers use
// errors.As to recover the structured fields spec §7 requires.

import "fmt"

// EmptyTransactionBatchError is returned when propose_batch is called with
// no transactions.
type EmptyTransactionBatchError struct{}

func (e *EmptyTransactionBatchError) Error() string {
	return "proposed batch must contain at least one transaction"
}

// DuplicateTransactionError is returned when the same transaction id
// appears more than once in the input.
type DuplicateTransactionError struct {
	TransactionId TransactionId
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction %s in batch", e.TransactionId)
}

// InconsistentChainLengthError is returned when the chain MMR's length
// does not match the reference block header's number.
type InconsistentChainLengthError struct {
	Expected BlockNumber
	Actual   BlockNumber
}

func (e *InconsistentChainLengthError) Error() string {
	return fmt.Sprintf("inconsistent chain length: expected %s, got %s", e.Expected, e.Actual)
}

// InconsistentChainRootError is returned when hash_peaks(chain_mmr.peaks)
// does not match the reference block header's chain root.
type InconsistentChainRootError struct {
	Expected Hash
	Actual   Hash
}

func (e *InconsistentChainRootError) Error() string {
	return fmt.Sprintf("inconsistent chain root: expected %s, got %s", e.Expected, e.Actual)
}

// ReferenceBlockTooNewError is the explicit, clearer variant of a
// transaction referencing a block more recent than the batch's own
// reference block header, resolved per spec §9's open question.
type ReferenceBlockTooNewError struct {
	BlockNumber   BlockNumber
	TransactionId TransactionId
}

func (e *ReferenceBlockTooNewError) Error() string {
	return fmt.Sprintf("transaction %s references block %s newer than the batch reference block",
		e.TransactionId, e.BlockNumber)
}

// MissingTransactionBlockReferenceError is returned when a transaction's
// block_ref hash matches no header in the chain MMR nor the reference
// block header itself.
type MissingTransactionBlockReferenceError struct {
	BlockReference Hash
	TransactionId  TransactionId
}

func (e *MissingTransactionBlockReferenceError) Error() string {
	return fmt.Sprintf("transaction %s references block %s which is not in the chain mmr",
		e.TransactionId, e.BlockReference)
}

// AccountUpdateError wraps a chaining-order failure from the account
// update aggregator, naming the offending account.
type AccountUpdateError struct {
	AccountId AccountId
	Source    error
}

func (e *AccountUpdateError) Error() string {
	return fmt.Sprintf("account update error for account %s: %v", e.AccountId, e.Source)
}

func (e *AccountUpdateError) Unwrap() error { return e.Source }

// TooManyAccountUpdatesError is returned when a batch or block would
// aggregate more distinct accounts than its tier's limit.
type TooManyAccountUpdatesError struct {
	Count int
}

func (e *TooManyAccountUpdatesError) Error() string {
	return fmt.Sprintf("too many account updates: %d", e.Count)
}

// TooManyInputNotesError is returned when a batch or block's input-note
// list would exceed its tier's limit.
type TooManyInputNotesError struct {
	Count int
}

func (e *TooManyInputNotesError) Error() string {
	return fmt.Sprintf("too many input notes: %d", e.Count)
}

// TooManyOutputNotesError is returned when a batch or block's output-note
// list would exceed its tier's limit, including the tree-capacity check
// performed at output-note tree construction time.
type TooManyOutputNotesError struct {
	Count int
}

func (e *TooManyOutputNotesError) Error() string {
	return fmt.Sprintf("too many output notes: %d", e.Count)
}

// DuplicateInputNoteError is returned when the same nullifier appears in
// the input notes of two different transactions within the same batch.
type DuplicateInputNoteError struct {
	Nullifier           Nullifier
	FirstTransactionId  TransactionId
	SecondTransactionId TransactionId
}

func (e *DuplicateInputNoteError) Error() string {
	return fmt.Sprintf("duplicate input note nullifier %s in transactions %s and %s",
		e.Nullifier, e.FirstTransactionId, e.SecondTransactionId)
}

// DuplicateOutputNoteError is returned when the same note id is produced
// as an output note by two different transactions within the same batch.
type DuplicateOutputNoteError struct {
	NoteId              NoteId
	FirstTransactionId  TransactionId
	SecondTransactionId TransactionId
}

func (e *DuplicateOutputNoteError) Error() string {
	return fmt.Sprintf("duplicate output note %s in transactions %s and %s",
		e.NoteId, e.FirstTransactionId, e.SecondTransactionId)
}

// NoteHashesMismatchError is returned when an input note's header and a
// same-batch output note it matches by id carry different metadata hashes,
// indicating corruption rather than a legitimate same-batch note.
type NoteHashesMismatchError struct {
	Id         NoteId
	InputHash  Hash
	OutputHash Hash
}

func (e *NoteHashesMismatchError) Error() string {
	return fmt.Sprintf("note %s hash mismatch: input commitment %s != output commitment %s",
		e.Id, e.InputHash, e.OutputHash)
}

// UnauthenticatedInputNoteBlockNotInChainMmrError is returned when an
// unauthenticated note's inclusion proof references a block not present in
// the chain MMR.
type UnauthenticatedInputNoteBlockNotInChainMmrError struct {
	BlockNumber BlockNumber
	NoteId      NoteId
}

func (e *UnauthenticatedInputNoteBlockNotInChainMmrError) Error() string {
	return fmt.Sprintf("note %s proof references block %s which is not in the chain mmr",
		e.NoteId, e.BlockNumber)
}

// UnauthenticatedNoteAuthenticationFailedError is returned when a supplied
// inclusion proof fails to verify against the referenced block's note root.
type UnauthenticatedNoteAuthenticationFailedError struct {
	NoteId   NoteId
	BlockNum BlockNumber
	Source   error
}

func (e *UnauthenticatedNoteAuthenticationFailedError) Error() string {
	return fmt.Sprintf("note %s authentication failed against block %s: %v",
		e.NoteId, e.BlockNum, e.Source)
}

func (e *UnauthenticatedNoteAuthenticationFailedError) Unwrap() error { return e.Source }

// --- block-tier additions (spec SPEC_FULL.md §4.7) ---

// BatchExpiredError is returned when a batch's expiration block number is
// already behind the block under construction.
type BatchExpiredError struct {
	BatchId                 BatchId
	BatchExpirationBlockNum BlockNumber
	NextBlockNum            BlockNumber
}

func (e *BatchExpiredError) Error() string {
	return fmt.Sprintf("batch %s expired at block %s, block under construction is %s",
		e.BatchId, e.BatchExpirationBlockNum, e.NextBlockNum)
}

// DuplicateBatchError is returned when the same batch id is supplied twice
// to propose_block.
type DuplicateBatchError struct {
	BatchId BatchId
}

func (e *DuplicateBatchError) Error() string {
	return fmt.Sprintf("duplicate batch %s in block", e.BatchId)
}

// BlockAccountUpdateError wraps a chaining-order failure encountered while
// aggregating batch account updates into block-level updates.
type BlockAccountUpdateError struct {
	AccountId AccountId
	Source    error
}

func (e *BlockAccountUpdateError) Error() string {
	return fmt.Sprintf("block account update error for account %s: %v", e.AccountId, e.Source)
}

func (e *BlockAccountUpdateError) Unwrap() error { return e.Source }

// DuplicateNullifierError is returned when the same nullifier is created by
// input notes in two different batches within the same block.
type DuplicateNullifierError struct {
	Nullifier      Nullifier
	FirstBatchId   BatchId
	SecondBatchId  BatchId
}

func (e *DuplicateNullifierError) Error() string {
	return fmt.Sprintf("duplicate nullifier %s in batches %s and %s",
		e.Nullifier, e.FirstBatchId, e.SecondBatchId)
}

// MissingNullifierWitnessError is returned when a nullifier created in this
// block has no corresponding non-membership witness supplied in
// BlockInputs.
type MissingNullifierWitnessError struct {
	Nullifier Nullifier
}

func (e *MissingNullifierWitnessError) Error() string {
	return fmt.Sprintf("missing nullifier witness for %s", e.Nullifier)
}

// InconsistentAccountStateTransitionError is returned when an account
// witness's on-chain state commitment disagrees with the block-level
// aggregated update's initial state commitment for the same account.
type InconsistentAccountStateTransitionError struct {
	AccountId AccountId
	Expected  Hash
	Actual    Hash
}

func (e *InconsistentAccountStateTransitionError) Error() string {
	return fmt.Sprintf("account %s state transition inconsistent: witness has %s, update expects %s",
		e.AccountId, e.Actual, e.Expected)
}
