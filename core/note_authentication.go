package core

// note_authentication.go - the Note Inclusion Verifier: checks a
// (note-id, block-header, Merkle path) triple against a block's note
// root. Generalizes core/merkle_tree_operations.go's VerifyMerklePath to
// the note-inclusion-proof shape of spec §4.4.

import "errors"

var errMerklePathVerificationFailed = errors.New("merkle path does not reach the expected note root")

// authenticateUnauthenticatedNote verifies that the given note header is
// included under the referenced block's note root via the supplied
// inclusion proof. On success it returns nil; on failure it returns an
// UnauthenticatedNoteAuthenticationFailedError naming the note and block.
func authenticateUnauthenticatedNote(header NoteHeader, proof NoteInclusionProof, blockHeader BlockHeader) error {
	leaf := header.Hash()
	index := uint64(proof.Location.NodeIndexInBlock)
	if !proof.Path.Verify(index, leaf, blockHeader.NoteRoot) {
		return &UnauthenticatedNoteAuthenticationFailedError{
			NoteId:   header.Id,
			BlockNum: blockHeader.BlockNum,
			Source:   errMerklePathVerificationFailed,
		}
	}
	return nil
}
