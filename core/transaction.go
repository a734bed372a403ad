package core

// transaction.go - ProvenTransaction, the unit of input to the batch
// constructor. Adapted from core/transactions.go's Transaction struct and
// accessor style to the proven-transaction accessor contract of spec §6;
// unlike the teacher's mutable pool entry, this is an immutable value
// shared by pointer (see SPEC_FULL.md §3 on shared-ownership handles).

// ProvenTransaction is a transaction that has already been executed and
// proven; the batch constructor only validates and aggregates, it never
// re-executes.
type ProvenTransaction struct {
	id                 TransactionId
	accountId          AccountId
	blockRef           Hash
	expirationBlockNum BlockNumber
	inputNotes         InputNotes
	outputNotes        []OutputNote
	accountUpdate      AccountUpdate
}

// NewProvenTransaction builds a ProvenTransaction from its constituent
// fields. Callers (typically internal/testutil fixtures or a prover's
// output deserializer) are responsible for the fields being internally
// consistent; the batch constructor is what actually checks cross-
// transaction invariants.
func NewProvenTransaction(
	id TransactionId,
	accountId AccountId,
	blockRef Hash,
	expirationBlockNum BlockNumber,
	inputNotes InputNotes,
	outputNotes []OutputNote,
	accountUpdate AccountUpdate,
) *ProvenTransaction {
	return &ProvenTransaction{
		id:                 id,
		accountId:          accountId,
		blockRef:           blockRef,
		expirationBlockNum: expirationBlockNum,
		inputNotes:         append(InputNotes{}, inputNotes...),
		outputNotes:        append([]OutputNote{}, outputNotes...),
		accountUpdate:      accountUpdate,
	}
}

func (tx *ProvenTransaction) Id() TransactionId                 { return tx.id }
func (tx *ProvenTransaction) AccountId() AccountId               { return tx.accountId }
func (tx *ProvenTransaction) BlockRef() Hash                     { return tx.blockRef }
func (tx *ProvenTransaction) ExpirationBlockNum() BlockNumber     { return tx.expirationBlockNum }
func (tx *ProvenTransaction) AccountUpdate() AccountUpdate        { return tx.accountUpdate }

// InputNotes returns the transaction's input note commitments in order.
func (tx *ProvenTransaction) InputNotes() InputNotes {
	out := make(InputNotes, len(tx.inputNotes))
	copy(out, tx.inputNotes)
	return out
}

// OutputNotes returns the transaction's output notes in order.
func (tx *ProvenTransaction) OutputNotes() []OutputNote {
	out := make([]OutputNote, len(tx.outputNotes))
	copy(out, tx.outputNotes)
	return out
}
