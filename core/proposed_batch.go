package core

// proposed_batch.go - the Proposed Batch Constructor. Grounded directly on
// original_source/crates/miden-objects/src/batch/proposed_batch.rs
// (ProposedBatch::new), translated phase-by-phase into the ordered
// function described by spec §4.1, using the teacher's file-banner-comment
// section style (core/common_structs.go).

import (
	"time"
)

//-----------------------------------------------------------------------------
// ProposedBatch
//-----------------------------------------------------------------------------

// ProposedBatch is the immutable result of validating and aggregating a
// group of proven transactions. Once constructed it is never mutated; it
// is either consumed by the block-tier constructor or destructured for the
// proving kernel.
type ProposedBatch struct {
	id                      BatchId
	transactions            []*ProvenTransaction
	blockHeader             BlockHeader
	chainMmr                ChainMmr
	unauthenticatedNoteProofs map[NoteId]NoteInclusionProof
	accountUpdates          map[AccountId]*BatchAccountUpdate
	batchExpirationBlockNum BlockNumber
	inputNotes              InputNotes
	outputNotes             []OutputNote
	outputNotesTree         *NoteTree
}

func (b *ProposedBatch) Id() BatchId                                { return b.id }
func (b *ProposedBatch) Transactions() []*ProvenTransaction           { return b.transactions }
func (b *ProposedBatch) BlockHeader() BlockHeader                     { return b.blockHeader }
func (b *ProposedBatch) ChainMmr() ChainMmr                           { return b.chainMmr }
func (b *ProposedBatch) BatchExpirationBlockNum() BlockNumber         { return b.batchExpirationBlockNum }
func (b *ProposedBatch) InputNotes() InputNotes                       { return b.inputNotes }
func (b *ProposedBatch) OutputNotes() []OutputNote                    { return b.outputNotes }
func (b *ProposedBatch) OutputNotesTree() *NoteTree                   { return b.outputNotesTree }

// AccountUpdates returns the aggregated per-account updates, keyed by the
// account each one touches.
func (b *ProposedBatch) AccountUpdates() map[AccountId]*BatchAccountUpdate {
	out := make(map[AccountId]*BatchAccountUpdate, len(b.accountUpdates))
	for k, v := range b.accountUpdates {
		out[k] = v
	}
	return out
}

// ProposedBatchParts is the full field set returned by IntoParts, mirroring
// the Rust into_parts destructuring consumer in spirit (Go cannot usefully
// consume a pointer receiver by value, so the caller discards the original
// *ProposedBatch by convention after calling this).
type ProposedBatchParts struct {
	Id                        BatchId
	Transactions              []*ProvenTransaction
	BlockHeader               BlockHeader
	ChainMmr                  ChainMmr
	UnauthenticatedNoteProofs map[NoteId]NoteInclusionProof
	AccountUpdates            map[AccountId]*BatchAccountUpdate
	BatchExpirationBlockNum   BlockNumber
	InputNotes                InputNotes
	OutputNotes               []OutputNote
	OutputNotesTree           *NoteTree
}

// IntoParts destructures the batch into every field it owns.
func (b *ProposedBatch) IntoParts() ProposedBatchParts {
	return ProposedBatchParts{
		Id:                        b.id,
		Transactions:              b.transactions,
		BlockHeader:               b.blockHeader,
		ChainMmr:                  b.chainMmr,
		UnauthenticatedNoteProofs: b.unauthenticatedNoteProofs,
		AccountUpdates:            b.AccountUpdates(),
		BatchExpirationBlockNum:   b.batchExpirationBlockNum,
		InputNotes:                b.inputNotes,
		OutputNotes:               b.outputNotes,
		OutputNotesTree:           b.outputNotesTree,
	}
}

//-----------------------------------------------------------------------------
// ProposeBatch
//-----------------------------------------------------------------------------

// ProposeBatch validates and aggregates a set of proven transactions into
// a ProposedBatch, in a single synchronous pass. See spec §4.1 for the
// full algorithm; phases below are numbered to match.
func ProposeBatch(
	transactions []*ProvenTransaction,
	blockHeader BlockHeader,
	chainMmr ChainMmr,
	unauthenticatedNoteProofs map[NoteId]NoteInclusionProof,
) (batch *ProposedBatch, err error) {
	start := time.Now()
	defer func() {
		m := PackageMetrics()
		m.BatchConstructionSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			m.BatchRejections.WithLabelValues(errorKind(err)).Inc()
			logger().WithField("error", err.Error()).Warn("proposed batch rejected")
		} else {
			logger().WithField("batch_id", batch.id.String()).Debug("proposed batch constructed")
		}
	}()

	// 1. Duplicate / emptiness check.
	if len(transactions) == 0 {
		return nil, &EmptyTransactionBatchError{}
	}
	seenTxIds := make(map[TransactionId]struct{}, len(transactions))
	for _, tx := range transactions {
		if _, ok := seenTxIds[tx.Id()]; ok {
			return nil, &DuplicateTransactionError{TransactionId: tx.Id()}
		}
		seenTxIds[tx.Id()] = struct{}{}
	}

	// 2. Chain consistency check.
	if chainMmr.ChainLength() != blockHeader.BlockNum {
		return nil, &InconsistentChainLengthError{Expected: blockHeader.BlockNum, Actual: chainMmr.ChainLength()}
	}
	expectedRoot := HashPeaks(chainMmr.PeaksSlice())
	if expectedRoot != blockHeader.ChainRoot {
		return nil, &InconsistentChainRootError{Expected: blockHeader.ChainRoot, Actual: expectedRoot}
	}

	// 3. Block-reference authentication. The reference block is
	// deliberately not yet a member of chain_mmr (the kernel appends it),
	// so its hash is folded into the authentication set explicitly.
	referenceSet := make(map[Hash]BlockNumber, len(chainMmr.BlockHeaders())+1)
	for _, h := range chainMmr.BlockHeaders() {
		referenceSet[h.Hash()] = h.BlockNum
	}
	referenceSet[blockHeader.Hash()] = blockHeader.BlockNum

	for _, tx := range transactions {
		refNum, ok := referenceSet[tx.BlockRef()]
		if !ok {
			return nil, &MissingTransactionBlockReferenceError{BlockReference: tx.BlockRef(), TransactionId: tx.Id()}
		}
		if refNum > blockHeader.BlockNum {
			return nil, &ReferenceBlockTooNewError{BlockNumber: refNum, TransactionId: tx.Id()}
		}
	}

	// 4. Account-update aggregation & expiration reduction.
	accountUpdates := make(map[AccountId]*BatchAccountUpdate)
	batchExpiration := MaxBlockNumber
	for _, tx := range transactions {
		update := tx.AccountUpdate()
		if agg, ok := accountUpdates[tx.AccountId()]; ok {
			if mergeErr := agg.merge(update, tx.Id()); mergeErr != nil {
				return nil, &AccountUpdateError{AccountId: tx.AccountId(), Source: mergeErr}
			}
		} else {
			accountUpdates[tx.AccountId()] = newBatchAccountUpdate(update, tx.Id())
		}
		if tx.ExpirationBlockNum() < batchExpiration {
			batchExpiration = tx.ExpirationBlockNum()
		}
	}
	if len(accountUpdates) > CurrentLimits().MaxAccountsPerBatch {
		return nil, &TooManyAccountUpdatesError{Count: len(accountUpdates)}
	}

	// 5. Input-note uniqueness.
	nullifierOwners := make(map[Nullifier]TransactionId)
	for _, tx := range transactions {
		for _, commitment := range tx.InputNotes() {
			if firstTx, ok := nullifierOwners[commitment.Nullifier]; ok {
				return nil, &DuplicateInputNoteError{
					Nullifier:           commitment.Nullifier,
					FirstTransactionId:  firstTx,
					SecondTransactionId: tx.Id(),
				}
			}
			nullifierOwners[commitment.Nullifier] = tx.Id()
		}
	}

	// 6. Output-note collection. Must happen before input reconciliation:
	// an unauthenticated input note may match an output note produced by
	// a later transaction in the batch (SPEC_FULL.md / spec §9).
	tracker, err := newBatchOutputNoteTracker(transactions)
	if err != nil {
		return nil, err
	}

	// 7. Input-note reconciliation and authentication.
	inputNotes := make(InputNotes, 0, len(nullifierOwners))
	for _, tx := range transactions {
		for _, commitment := range tx.InputNotes() {
			if commitment.Header != nil {
				removed, removeErr := tracker.removeNote(*commitment.Header)
				if removeErr != nil {
					return nil, removeErr
				}
				if removed {
					// Produced and consumed within this batch: invisible
					// at the batch boundary.
					continue
				}

				if proof, ok := unauthenticatedNoteProofs[commitment.Header.Id]; ok {
					proofBlock, ok := chainMmr.GetBlock(proof.Location.BlockNum)
					if !ok {
						return nil, &UnauthenticatedInputNoteBlockNotInChainMmrError{
							BlockNumber: proof.Location.BlockNum,
							NoteId:      commitment.Header.Id,
						}
					}
					if authErr := authenticateUnauthenticatedNote(*commitment.Header, proof, proofBlock); authErr != nil {
						return nil, authErr
					}
					// Authentication succeeded: erase the header so the
					// commitment becomes indistinguishable from one
					// authenticated at execution time.
					inputNotes = append(inputNotes, InputNoteCommitment{Nullifier: commitment.Nullifier})
					continue
				}

				// Authentication deferred to the proving kernel.
				inputNotes = append(inputNotes, commitment)
				continue
			}
			// Already authenticated at execution time.
			inputNotes = append(inputNotes, commitment)
		}
	}

	// 8. Size checks. Output notes are produced sorted by NoteId (tracker
	// drains in key order).
	if len(inputNotes) > CurrentLimits().MaxInputNotesPerBatch {
		return nil, &TooManyInputNotesError{Count: len(inputNotes)}
	}
	outputNotes := tracker.intoNotes()
	if len(outputNotes) > CurrentLimits().MaxOutputNotesPerBatch {
		return nil, &TooManyOutputNotesError{Count: len(outputNotes)}
	}

	// 9. Output-note SMT. Duplicate freedom and bounded count were
	// pre-established above. With the default limits the tree has room for
	// MaxOutputNotesPerBatch notes; a configured BatchNoteTreeDepth too small
	// for the configured bound makes this return TooManyOutputNotesError.
	outputNotesTree, treeErr := WithContiguousLeaves(CurrentLimits().BatchNoteTreeDepth, outputNotes)
	if treeErr != nil {
		return nil, treeErr
	}

	// 10. Batch ID: a deterministic commitment over the ordered
	// transaction ids.
	id := batchIdFromTransactions(transactions)

	// 11. Assemble and return.
	return &ProposedBatch{
		id:                        id,
		transactions:              transactions,
		blockHeader:               blockHeader,
		chainMmr:                  chainMmr,
		unauthenticatedNoteProofs: unauthenticatedNoteProofs,
		accountUpdates:            accountUpdates,
		batchExpirationBlockNum:   batchExpiration,
		inputNotes:                inputNotes,
		outputNotes:               outputNotes,
		outputNotesTree:           outputNotesTree,
	}, nil
}

func batchIdFromTransactions(transactions []*ProvenTransaction) BatchId {
	h := blake3New()
	for _, tx := range transactions {
		id := tx.Id()
		h.Write(id[:])
	}
	var out BatchId
	copy(out[:], h.Sum(nil))
	return out
}
