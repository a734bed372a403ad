package testutil

import "github.com/synnergy-labs/rollup-core/core"

// NoteBuilder assembles NoteHeader/OutputNote/InputNoteCommitment values
// for test fixtures without forcing every test to spell out NoteMetadata
// by hand.
type NoteBuilder struct {
	id       core.NoteId
	sender   core.AccountId
	tag      uint32
}

// NewNote starts a note fixture with a fresh synthetic id.
func NewNote(sender core.AccountId) *NoteBuilder {
	return &NoteBuilder{id: NewNoteId(), sender: sender, tag: 0}
}

// WithTag overrides the note's routing tag.
func (b *NoteBuilder) WithTag(tag uint32) *NoteBuilder {
	b.tag = tag
	return b
}

func (b *NoteBuilder) header() core.NoteHeader {
	return core.NoteHeader{
		Id: b.id,
		Metadata: core.NoteMetadata{
			Sender: b.sender,
			Tag:    b.tag,
		},
	}
}

// Output builds this note as an OutputNote.
func (b *NoteBuilder) Output() core.OutputNote {
	return core.OutputNote{Header: b.header()}
}

// Unauthenticated builds this note as an input commitment still carrying
// its header (authentication deferred).
func (b *NoteBuilder) Unauthenticated() core.InputNoteCommitment {
	h := b.header()
	nullifier := core.Nullifier(h.Hash())
	return core.InputNoteCommitment{Nullifier: nullifier, Header: &h}
}

// Authenticated builds this note as an input commitment already
// authenticated at execution time (header erased).
func (b *NoteBuilder) Authenticated() core.InputNoteCommitment {
	h := b.header()
	nullifier := core.Nullifier(h.Hash())
	return core.InputNoteCommitment{Nullifier: nullifier}
}

// Id returns the note's synthetic id.
func (b *NoteBuilder) Id() core.NoteId { return b.id }

// TxBuilder assembles ProvenTransaction fixtures.
type TxBuilder struct {
	id                 core.TransactionId
	accountId          core.AccountId
	blockRef           core.Hash
	expirationBlockNum core.BlockNumber
	inputNotes         core.InputNotes
	outputNotes        []core.OutputNote
	initialCommitment  core.Hash
	finalCommitment    core.Hash
	details            core.AccountUpdateDetails
}

// NewTx starts a transaction fixture touching the given account, chaining
// from initialCommitment to finalCommitment.
func NewTx(accountId core.AccountId, blockRef core.Hash, initialCommitment, finalCommitment core.Hash) *TxBuilder {
	return &TxBuilder{
		id:                 NewTransactionId(),
		accountId:          accountId,
		blockRef:           blockRef,
		expirationBlockNum: core.MaxBlockNumber,
		initialCommitment:  initialCommitment,
		finalCommitment:    finalCommitment,
	}
}

// WithExpiration overrides the transaction's expiration block number.
func (b *TxBuilder) WithExpiration(num core.BlockNumber) *TxBuilder {
	b.expirationBlockNum = num
	return b
}

// WithInputNotes attaches input note commitments.
func (b *TxBuilder) WithInputNotes(notes ...core.InputNoteCommitment) *TxBuilder {
	b.inputNotes = append(b.inputNotes, notes...)
	return b
}

// WithOutputNotes attaches output notes.
func (b *TxBuilder) WithOutputNotes(notes ...core.OutputNote) *TxBuilder {
	b.outputNotes = append(b.outputNotes, notes...)
	return b
}

// Id returns the transaction's synthetic id.
func (b *TxBuilder) Id() core.TransactionId { return b.id }

// Build finalizes the ProvenTransaction.
func (b *TxBuilder) Build() *core.ProvenTransaction {
	update := core.AccountUpdate{
		AccountId:              b.accountId,
		InitialStateCommitment: b.initialCommitment,
		FinalStateCommitment:   b.finalCommitment,
		Details:                b.details,
	}
	return core.NewProvenTransaction(
		b.id,
		b.accountId,
		b.blockRef,
		b.expirationBlockNum,
		b.inputNotes,
		b.outputNotes,
		update,
	)
}
