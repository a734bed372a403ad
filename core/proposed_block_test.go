package core_test

import (
	"testing"

	"github.com/synnergy-labs/rollup-core/core"
	"github.com/synnergy-labs/rollup-core/internal/testutil"
)

func TestProposeBlockEmptyBatches(t *testing.T) {
	header, mmr := genesisInputs()
	inputs := core.BlockInputs{PrevBlockHeader: header, ChainMmr: mmr}

	block, err := core.ProposeBlock(inputs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.AffectedAccounts()) != 0 {
		t.Fatalf("expected zero affected accounts, got %d", len(block.AffectedAccounts()))
	}
	if len(block.OutputNoteBatches()) != 0 {
		t.Fatalf("expected zero output note batches, got %d", len(block.OutputNoteBatches()))
	}
	if len(block.CreatedNullifiers()) != 0 {
		t.Fatalf("expected zero created nullifiers, got %d", len(block.CreatedNullifiers()))
	}
	if len(block.Batches()) != 0 {
		t.Fatalf("expected zero batches, got %d", len(block.Batches()))
	}
	if block.BlockNum() != header.BlockNum+1 {
		t.Fatalf("expected block num %s, got %s", header.BlockNum+1, block.BlockNum())
	}
}

func TestProposeBlockTwoSingleTransactionBatches(t *testing.T) {
	header, mmr := genesisInputs()
	a0, a1 := testutil.NewAccountId(), testutil.NewAccountId()

	note0 := testutil.NewNote(a0)
	note1 := testutil.NewNote(a1)

	t0 := testutil.NewTx(a0, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithInputNotes(note0.Authenticated()).
		Build()
	t1 := testutil.NewTx(a1, header.Hash(), testutil.NewStateCommitment(3), testutil.NewStateCommitment(4)).
		WithInputNotes(note1.Authenticated()).
		Build()

	b0, err := core.ProposeBatch([]*core.ProvenTransaction{t0}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building batch0: %v", err)
	}
	b1, err := core.ProposeBatch([]*core.ProvenTransaction{t1}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building batch1: %v", err)
	}

	nullifier0 := b0.InputNotes()[0].Nullifier
	nullifier1 := b1.InputNotes()[0].Nullifier

	inputs := core.BlockInputs{
		PrevBlockHeader: header,
		ChainMmr:        mmr,
		NullifierWitnesses: map[core.Nullifier]core.NullifierWitness{
			nullifier0: {Nullifier: nullifier0},
			nullifier1: {Nullifier: nullifier1},
		},
	}

	block, err := core.ProposeBlock(inputs, []*core.ProposedBatch{b0, b1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.UpdatedAccounts()) != 2 {
		t.Fatalf("expected 2 account updates, got %d", len(block.UpdatedAccounts()))
	}
	if len(block.CreatedNullifiers()) != 2 {
		t.Fatalf("expected 2 created nullifiers, got %d", len(block.CreatedNullifiers()))
	}
	if len(block.OutputNoteBatches()) != 2 {
		t.Fatalf("expected 2 output note batch groups, got %d", len(block.OutputNoteBatches()))
	}
	for i, group := range block.OutputNoteBatches() {
		if len(group) != 0 {
			t.Fatalf("expected batch %d output notes empty, got %d", i, len(group))
		}
	}
}

func TestProposeBlockAccountAggregationAcrossBatchesOutOfOrder(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()

	c0, c1, c2, c3 := testutil.NewStateCommitment(1), testutil.NewStateCommitment(2),
		testutil.NewStateCommitment(3), testutil.NewStateCommitment(4)

	t0 := testutil.NewTx(account, header.Hash(), c0, c1).Build()
	t1 := testutil.NewTx(account, header.Hash(), c1, c2).Build()
	t2 := testutil.NewTx(account, header.Hash(), c2, c3).Build()

	// T2 alone in batch B0; T0,T1 chained in batch B1. B0 is listed first,
	// out of chronological order.
	bB0, err := core.ProposeBatch([]*core.ProvenTransaction{t2}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building B0: %v", err)
	}
	bB1, err := core.ProposeBatch([]*core.ProvenTransaction{t0, t1}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building B1: %v", err)
	}

	inputs := core.BlockInputs{PrevBlockHeader: header, ChainMmr: mmr}
	block, err := core.ProposeBlock(inputs, []*core.ProposedBatch{bB0, bB1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	update := block.UpdatedAccounts()[account]
	if update.InitialStateCommitment != c0 {
		t.Fatalf("expected initial commitment c0, got %s", update.InitialStateCommitment)
	}
	if update.FinalStateCommitment != c3 {
		t.Fatalf("expected final commitment c3, got %s", update.FinalStateCommitment)
	}
	want := []core.TransactionId{t0.Id(), t1.Id(), t2.Id()}
	if len(update.Transactions) != len(want) {
		t.Fatalf("expected %d source transactions, got %d", len(want), len(update.Transactions))
	}
	for i, id := range want {
		if update.Transactions[i] != id {
			t.Fatalf("expected chronological order %v, got %v", want, update.Transactions)
		}
	}
}

func TestProposeBlockExpirationBoundary(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()

	// Block under construction will be block_num = header.BlockNum + 1.
	nextBlockNum := header.BlockNum + 1

	txOk := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithExpiration(nextBlockNum).
		Build()
	batchOk, err := core.ProposeBatch([]*core.ProvenTransaction{txOk}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building batchOk: %v", err)
	}

	inputs := core.BlockInputs{PrevBlockHeader: header, ChainMmr: mmr}
	if _, err := core.ProposeBlock(inputs, []*core.ProposedBatch{batchOk}); err != nil {
		t.Fatalf("expected batch expiring exactly at next block to be accepted, got %v", err)
	}

	account2 := testutil.NewAccountId()
	txExpired := testutil.NewTx(account2, header.Hash(), testutil.NewStateCommitment(3), testutil.NewStateCommitment(4)).
		WithExpiration(nextBlockNum - 1).
		Build()
	batchExpired, err := core.ProposeBatch([]*core.ProvenTransaction{txExpired}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error building batchExpired: %v", err)
	}
	_, err = core.ProposeBlock(inputs, []*core.ProposedBatch{batchExpired})
	if _, ok := err.(*core.BatchExpiredError); !ok {
		t.Fatalf("expected BatchExpiredError for one-less-than-boundary batch, got %T: %v", err, err)
	}
}

func TestProposeBlockMissingNullifierWitness(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	note := testutil.NewNote(account)

	tx := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).
		WithInputNotes(note.Authenticated()).
		Build()
	batch, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inputs := core.BlockInputs{PrevBlockHeader: header, ChainMmr: mmr}
	_, err = core.ProposeBlock(inputs, []*core.ProposedBatch{batch})
	if _, ok := err.(*core.MissingNullifierWitnessError); !ok {
		t.Fatalf("expected MissingNullifierWitnessError, got %T: %v", err, err)
	}
}

func TestProposeBlockDuplicateBatch(t *testing.T) {
	header, mmr := genesisInputs()
	account := testutil.NewAccountId()
	tx := testutil.NewTx(account, header.Hash(), testutil.NewStateCommitment(1), testutil.NewStateCommitment(2)).Build()
	batch, err := core.ProposeBatch([]*core.ProvenTransaction{tx}, header, mmr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inputs := core.BlockInputs{PrevBlockHeader: header, ChainMmr: mmr}
	_, err = core.ProposeBlock(inputs, []*core.ProposedBatch{batch, batch})
	if _, ok := err.(*core.DuplicateBatchError); !ok {
		t.Fatalf("expected DuplicateBatchError, got %T: %v", err, err)
	}
}
