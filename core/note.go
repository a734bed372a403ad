package core

// note.go - note-related value types: headers, metadata, output notes, the
// input-note commitment carried on a transaction, and note inclusion
// proofs. All shapes are plain immutable data, following
// original_source's proposed_batch.rs data model translated to Go values.

import "encoding/binary"

// NoteMetadata carries the note attributes committed alongside its id in
// the output-note tree leaf. Asset details are out of scope (proving the
// note correct is the kernel's job); only what downstream consumers need to
// identify and route the note is kept.
type NoteMetadata struct {
	Sender          AccountId
	Tag             uint32
	NoteType        uint8
	AssetCommitment Hash
}

func (m NoteMetadata) bytes() []byte {
	buf := make([]byte, 0, len(m.Sender)+4+1+len(m.AssetCommitment))
	buf = append(buf, m.Sender[:]...)
	var tagBuf [4]byte
	binary.BigEndian.PutUint32(tagBuf[:], m.Tag)
	buf = append(buf, tagBuf[:]...)
	buf = append(buf, m.NoteType)
	buf = append(buf, m.AssetCommitment[:]...)
	return buf
}

// NoteHeader identifies a note and commits to its metadata. Hash is the
// leaf value the output-note tree and note inclusion proofs both verify
// against.
type NoteHeader struct {
	Id       NoteId
	Metadata NoteMetadata
}

// Hash returns the commitment hash(id, metadata) describing this note.
func (h NoteHeader) Hash() Hash { return leafHash(h.Id, h.Metadata) }

// OutputNote is a note produced by a transaction, as it appears in a
// batch's or block's ordered output-note list and output-note tree.
type OutputNote struct {
	Header NoteHeader
}

func (n OutputNote) Id() NoteId             { return n.Header.Id }
func (n OutputNote) Metadata() NoteMetadata { return n.Header.Metadata }

// InputNoteCommitment is the form an input note takes inside a
// ProvenTransaction and, after batch reconciliation, inside a
// ProposedBatch's input-note list. Header is non-nil exactly when the note
// was unauthenticated and has not yet been resolved; its erasure (set to
// nil) is the sole marker that a note has been authenticated by a verified
// inclusion proof. A note produced and consumed within the same batch is
// dropped from the batch's list instead.
type InputNoteCommitment struct {
	Nullifier Nullifier
	Header    *NoteHeader
}

// IsUnauthenticated reports whether this commitment still carries its
// header, i.e. authentication has been deferred past this tier.
func (c InputNoteCommitment) IsUnauthenticated() bool { return c.Header != nil }

// InputNotes is the ordered, nullifier-unique list of input note
// commitments carried by a ProvenTransaction or ProposedBatch.
type InputNotes []InputNoteCommitment

// NoteLocation pins a note to its position within a specific block: the
// block that produced it, and the leaf index in that block's note tree.
type NoteLocation struct {
	BlockNum        BlockNumber
	NodeIndexInBlock uint32
}

// MerklePath is the sibling hash list from a leaf up to (but excluding) the
// root, ordered leaf-to-root.
type MerklePath []Hash

// Verify recomputes the root reached by the given leaf and index through
// this sibling path, returning whether it equals the expected root. Index
// bit i selects whether the leaf/intermediate value is the right-hand
// child at depth i (bit set) or the left-hand one (bit clear), matching the
// convention of core/merkle_tree_operations.go's VerifyMerklePath.
func (p MerklePath) Verify(index uint64, leaf Hash, root Hash) bool {
	cur := leaf
	for depth, sibling := range p {
		if index&(1<<uint(depth)) != 0 {
			cur = mimcNode(sibling, cur)
		} else {
			cur = mimcNode(cur, sibling)
		}
	}
	return cur == root
}

// NoteInclusionProof attests a note's presence under a given block's
// note-root: the note's position plus the Merkle path from its leaf to
// that root.
type NoteInclusionProof struct {
	Location NoteLocation
	Path     MerklePath
}
