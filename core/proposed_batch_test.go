package core_test

import (
	"testing"

	"github.com/synnergy-labs/rollup-core/core"
	"github.com/synnergy-labs/rollup-core/internal/testutil"
)

func genesisInputs() (core.BlockHeader, core.ChainMmr) {
	chain := testutil.NewMockChain()
	header := chain.Header(0)
	return header, chain.ChainMmrUpTo(0)
}

func TestProposeBatchRejectsEmptyInput(t *testing.T) {
	header, mmr := genesisInputs()
	_, err := core.ProposeBatch(nil, header, mmr, nil)
	if err == nil {
		t.Fatalf("expected error for empty transaction batch")
	}
	if _, ok := err.(*core.EmptyTransactionBatchError); !ok {
		t.Fatalf("expected EmptyTransactionBatchError, got %T: %v", err, err)
	}
}

func TestProposeBatchSingleTransaction(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	initial := testutil.NewStateCommitment(1)
	final := testutil.NewStateCommitment(2)

	tx := testutil.NewTx(account, header.Hash(), initial, final).
		WithExpiration(10).
		Build()

	batch, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.BatchExpirationBlockNum() != 10 {
		t.Fatalf("expected expiration 10, got %s", batch.BatchExpirationBlockNum())
	}
	updates := batch.AccountUpdates()
	update, ok := updates[account]
	if !ok {
		t.Fatalf("expected account update for %s", account)
	}
	if update.InitialStateCommitment != initial || update.FinalStateCommitment != final {
		t.Fatalf("account update commitments not preserved")
	}
	if len(update.Transactions) != 1 || update.Transactions[0] != tx.Id() {
		t.Fatalf("expected single source transaction %s, got %v", tx.Id(), update.Transactions)
	}
}

func TestProposeBatchDuplicateTransaction(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	initial := testutil.NewStateCommitment(1)
	final := testutil.NewStateCommitment(2)

	tx := testutil.NewTx(account, header.Hash(), initial, final).Build()
	dup := core.NewProvenTransaction(tx.Id(), account, header.Hash(), core.MaxBlockNumber, nil, nil, tx.AccountUpdate())

	_, err := core.ProposeBatch([]*core.ProvenTransaction{tx, dup}, header, mmr, nil)
	if _, ok := err.(*core.DuplicateTransactionError); !ok {
		t.Fatalf("expected DuplicateTransactionError, got %T: %v", err, err)
	}
}

func TestProposeBatchAccountChainingOrder(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()

	tx0 := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).Build()
	// tx1's initial commitment does not match tx0's final: chain broken.
	tx1 := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(99), testutil.NewStateCommitment(100)).Build()

	_, err := core.ProposeBatch([]*core.ProvenTransaction{tx0, tx1}, header, mmr, nil)
	var accErr *core.AccountUpdateError
	if err == nil {
		t.Fatalf("expected account update error")
	}
	if e, ok := err.(*core.AccountUpdateError); !ok {
		t.Fatalf("expected AccountUpdateError, got %T: %v", err, err)
	} else {
		accErr = e
	}
	if accErr.AccountId != account {
		t.Fatalf("expected account %s in error, got %s", account, accErr.AccountId)
	}
}

func TestProposeBatchAccountChainingSuccess(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()

	c0, c1, c2 := testutil.NewStateCommitment(1), testutil.NewStateCommitment(2), testutil.NewStateCommitment(3)
	tx0 := testutil.NewTx(account, header.Hash(), c0, c1).Build()
	tx1 := testutil.NewTx(account, header.Hash(), c1, c2).Build()

	batch, err := core.ProposeBatch([]*core.ProvenTransaction{tx0, tx1}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	update := batch.AccountUpdates()[account]
	if update.InitialStateCommitment != c0 || update.FinalStateCommitment != c2 {
		t.Fatalf("expected chained commitments c0->c2, got %s -> %s", update.InitialStateCommitment, update.FinalStateCommitment)
	}
	if len(update.Transactions) != 2 || update.Transactions[0] != tx0.Id() || update.Transactions[1] != tx1.Id() {
		t.Fatalf("expected source transactions [tx0, tx1] in order, got %v", update.Transactions)
	}
}

func TestProposeBatchDuplicateInputNote(t *testing.T) {
	header, mmr := genesisInputs()
	accountA := testutil.NewAccountId()
	accountB := testutil.NewAccountId()

	note := testutil.NewNote(accountA)
	tx0 := testutil.NewTx(accountA, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithInputNotes(note.Authenticated()).
		Build()
	tx1 := testutil.NewTx(accountB, header.Hash(), testutil.NewStateCommitment(3), testutil.NewStateCommitment(4)).
		WithInputNotes(note.Authenticated()).
		Build()

	_, err := core.ProposeBatch([]*core.ProvenTransaction{tx0, tx1}, header, mmr, nil)
	dupErr, ok := err.(*core.DuplicateInputNoteError)
	if !ok {
		t.Fatalf("expected DuplicateInputNoteError, got %T: %v", err, err)
	}
	if dupErr.FirstTransactionId != tx0.Id() || dupErr.SecondTransactionId != tx1.Id() {
		t.Fatalf("expected first=%s second=%s, got first=%s second=%s",
			tx0.Id(), tx1.Id(), dupErr.FirstTransactionId, dupErr.SecondTransactionId)
	}
}

func TestProposeBatchSameBatchNoteReconciliation(t *testing.T) {
	header, mmr := genesisInputs()
	accountA := testutil.NewAccountId()
	accountB := testutil.NewAccountId()

	note := testutil.NewNote(accountA)
	producer := testutil.NewTx(accountA, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithOutputNotes(note.Output()).
		Build()
	consumer := testutil.NewTx(accountB, header.Hash(), testutil.NewStateCommitment(3), testutil.NewStateCommitment(4)).
		WithInputNotes(note.Unauthenticated()).
		Build()

	batch, err := core.ProposeBatch([]*core.ProvenTransaction{producer, consumer}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.InputNotes()) != 0 {
		t.Fatalf("expected the same-batch note to be invisible in input notes, got %d", len(batch.InputNotes()))
	}
	if len(batch.OutputNotes()) != 0 {
		t.Fatalf("expected the same-batch note to be invisible in output notes, got %d", len(batch.OutputNotes()))
	}
}

func TestProposeBatchDeterministicId(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	tx := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).Build()

	b1, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b2, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b1.Id() != b2.Id() {
		t.Fatalf("expected identical batch ids for identical inputs, got %s != %s", b1.Id(), b2.Id())
	}
}

func TestProposeBatchUnauthenticatedNotePromotion(t *testing.T) {
	chain := testutil.NewMockChain()
	producer := testutil.NewAccountId()
	noteA := testutil.NewNote(producer)
	noteB := testutil.NewNote(producer)

	tree, err := core.WithContiguousLeaves(1, []core.OutputNote{noteA.Output(), noteB.Output()})
	if err != nil {
		t.Fatalf("unexpected error building note tree: %v", err)
	}
	block1 := chain.Seal(tree.Root())
	block2 := chain.Seal(core.Hash{})

	blockHeader := block2
	chainMmr := chain.ChainMmrUpTo(block2.BlockNum)

	proof := core.NoteInclusionProof{
		Location: core.NoteLocation{BlockNum: block1.BlockNum, NodeIndexInBlock: 0},
		Path:     core.MerklePath{noteB.Output().Header.Hash()},
	}

	consumerAccount := testutil.NewAccountId()
	tx := testutil.NewTx(consumerAccount, blockHeader.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithInputNotes(noteA.Unauthenticated()).
		Build()

	batch, err := core.ProposeBatch(
		[]*core.ProvenTransaction{tx},
		blockHeader,
		chainMmr,
		map[core.NoteId]core.NoteInclusionProof{noteA.Id(): proof},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.InputNotes()) != 1 {
		t.Fatalf("expected one input note, got %d", len(batch.InputNotes()))
	}
	if batch.InputNotes()[0].Header != nil {
		t.Fatalf("expected authenticated note header to be erased")
	}
}

func TestProposeBatchUnauthenticatedNoteAuthenticationFailure(t *testing.T) {
	chain := testutil.NewMockChain()
	producer := testutil.NewAccountId()
	noteA := testutil.NewNote(producer)
	noteB := testutil.NewNote(producer)

	tree, err := core.WithContiguousLeaves(1, []core.OutputNote{noteA.Output(), noteB.Output()})
	if err != nil {
		t.Fatalf("unexpected error building note tree: %v", err)
	}
	block1 := chain.Seal(tree.Root())
	block2 := chain.Seal(core.Hash{})

	blockHeader := block2
	chainMmr := chain.ChainMmrUpTo(block2.BlockNum)

	// Wrong sibling: does not reach the real root.
	badProof := core.NoteInclusionProof{
		Location: core.NoteLocation{BlockNum: block1.BlockNum, NodeIndexInBlock: 0},
		Path:     core.MerklePath{noteA.Output().Header.Hash()},
	}

	consumerAccount := testutil.NewAccountId()
	tx := testutil.NewTx(consumerAccount, blockHeader.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithInputNotes(noteA.Unauthenticated()).
		Build()

	_, err = core.ProposeBatch(
		[]*core.ProvenTransaction{tx},
		blockHeader,
		chainMmr,
		map[core.NoteId]core.NoteInclusionProof{noteA.Id(): badProof},
	)
	if _, ok := err.(*core.UnauthenticatedNoteAuthenticationFailedError); !ok {
		t.Fatalf("expected UnauthenticatedNoteAuthenticationFailedError, got %T: %v", err, err)
	}
}

func TestProposeBatchMissingBlockReference(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	var bogusRef core.Hash
	bogusRef[0] = 0xFF

	tx := testutil.NewTx(account, bogusRef, testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).Build()
	_, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if _, ok := err.(*core.MissingTransactionBlockReferenceError); !ok {
		t.Fatalf("expected MissingTransactionBlockReferenceError, got %T: %v", err, err)
	}
}
