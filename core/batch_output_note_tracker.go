package core

// batch_output_note_tracker.go - the Batch Output-Note Tracker: a
// transient index collecting every transaction's output notes, rejecting
// duplicates, and supporting single-note removal during input-note
// reconciliation. Grounded on original_source's BatchOutputNoteTracker
// (an ordered map keyed by note id); Go maps have no deterministic
// iteration order, so drain order is recovered by sorting keys at
// intoNotes time, mirroring the Rust BTreeMap's sorted iteration.

import "sort"

type trackedOutputNote struct {
	creator TransactionId
	note    OutputNote
}

// batchOutputNoteTracker collects output notes across a batch's
// transactions, keyed by NoteId.
type batchOutputNoteTracker struct {
	notes map[NoteId]trackedOutputNote
}

// newBatchOutputNoteTracker indexes every output note of every given
// transaction, in order, rejecting any note id produced by more than one
// transaction.
func newBatchOutputNoteTracker(transactions []*ProvenTransaction) (*batchOutputNoteTracker, error) {
	t := &batchOutputNoteTracker{notes: make(map[NoteId]trackedOutputNote)}
	for _, tx := range transactions {
		for _, note := range tx.OutputNotes() {
			id := note.Id()
			if existing, ok := t.notes[id]; ok {
				return nil, &DuplicateOutputNoteError{
					NoteId:              id,
					FirstTransactionId:  existing.creator,
					SecondTransactionId: tx.Id(),
				}
			}
			t.notes[id] = trackedOutputNote{creator: tx.Id(), note: note}
		}
	}
	return t, nil
}

// removeNote looks up the note identified by header.Id. If absent, it
// reports false with no error: the input note is not produced within this
// batch and authentication proceeds normally. If present, it cross-checks
// the stored note's commitment hash against the input header's; a mismatch
// means two notes share an id but disagree on metadata, which is
// corruption rather than a legitimate same-batch match. On a match, the
// note is removed (it is fully consumed within the batch boundary) and
// true is reported.
func (t *batchOutputNoteTracker) removeNote(header NoteHeader) (bool, error) {
	existing, ok := t.notes[header.Id]
	if !ok {
		return false, nil
	}
	inputHash := header.Hash()
	outputHash := existing.note.Header.Hash()
	if inputHash != outputHash {
		return false, &NoteHashesMismatchError{
			Id:         header.Id,
			InputHash:  inputHash,
			OutputHash: outputHash,
		}
	}
	delete(t.notes, header.Id)
	return true, nil
}

// intoNotes drains the tracker, returning the remaining output notes
// sorted by NoteId ascending (the batch's committed output-note order).
func (t *batchOutputNoteTracker) intoNotes() []OutputNote {
	ids := make([]NoteId, 0, len(t.notes))
	for id := range t.notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessHash(Hash(ids[i]), Hash(ids[j]))
	})
	out := make([]OutputNote, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.notes[id].note)
	}
	return out
}

func lessHash(a, b Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
