package core

// note_tree.go - the fixed-depth sparse Merkle tree shared by batch and
// block output-note commitments. Generalizes core/merkle_tree_operations.go's
// level-by-level binary tree builder from "hash every leaf present" to a
// fixed-depth tree keyed by position, leaving absent positions at a
// precomputed empty-subtree hash. Node hashing uses gnark-crypto's in-field
// MiMC permutation, the same primitive other_examples' iotaledger rollup
// operator uses for its commitment tree.

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// mimcHash folds the given byte strings through a fresh MiMC sponge and
// returns the 32-byte digest.
func mimcHash(parts ...[]byte) Hash {
	h := mimc.NewMiMC()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

func mimcNode(left, right Hash) Hash {
	return mimcHash(left[:], right[:])
}

// emptySubtreeHashes returns, for a tree of the given depth, the hash of an
// empty subtree at every level from 0 (leaf) to depth (root).
func emptySubtreeHashes(depth int) []Hash {
	levels := make([]Hash, depth+1)
	levels[0] = mimcHash([]byte("empty-note-leaf"))
	for i := 1; i <= depth; i++ {
		levels[i] = mimcNode(levels[i-1], levels[i-1])
	}
	return levels
}

// NoteTree is a fixed-depth sparse Merkle tree over note commitments keyed
// by leaf position. BatchNoteTree and BlockNoteTree are instances of this
// same structure differing only in depth.
type NoteTree struct {
	depth int
	root  Hash
	// levels[0] holds the leaf hashes (dense, contiguous); levels[d] holds
	// the single root hash. NumLeaves reads levels[0]; the constructors
	// only ever need Root().
	levels [][]Hash
}

// Depth returns the tree's fixed depth.
func (t *NoteTree) Depth() int { return t.depth }

// Root returns the tree's root commitment.
func (t *NoteTree) Root() Hash { return t.root }

// NumLeaves reports how many contiguous leaves were supplied at construction.
func (t *NoteTree) NumLeaves() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// leafHash commits to a single note's (id, metadata) pair, the value stored
// at each occupied position of the tree.
func leafHash(id NoteId, metadata NoteMetadata) Hash {
	return mimcHash(id[:], metadata.bytes())
}

// WithContiguousLeaves builds a NoteTree of the given depth from an ordered,
// 0-indexed, contiguous slice of (note id, metadata) pairs. The spec commits
// leaves by position; absent positions past len(leaves) take the empty
// subtree hash for the leaf level.
func WithContiguousLeaves(depth int, leaves []OutputNote) (*NoteTree, error) {
	capacity := 1 << uint(depth)
	if len(leaves) > capacity {
		return nil, &TooManyOutputNotesError{Count: len(leaves)}
	}

	empties := emptySubtreeHashes(depth)

	leafLevel := make([]Hash, len(leaves))
	for i, note := range leaves {
		leafLevel[i] = leafHash(note.Header.Id, note.Header.Metadata)
	}

	levels := make([][]Hash, depth+1)
	levels[0] = leafLevel

	cur := leafLevel
	for d := 0; d < depth; d++ {
		width := (len(cur) + 1) / 2
		if width == 0 && d+1 <= depth {
			// Nothing occupied at this level or above; every higher level
			// collapses to the precomputed empty hash.
			levels[d+1] = nil
			cur = nil
			continue
		}
		next := make([]Hash, 0, width)
		for i := 0; i < len(cur); i += 2 {
			left := cur[i]
			right := empties[d]
			if i+1 < len(cur) {
				right = cur[i+1]
			}
			next = append(next, mimcNode(left, right))
		}
		levels[d+1] = next
		cur = next
	}

	root := empties[depth]
	if len(cur) > 0 {
		root = cur[0]
	}

	return &NoteTree{depth: depth, root: root, levels: levels}, nil
}
