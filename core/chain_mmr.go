package core

// chain_mmr.go - the Chain MMR Facade: an append-only commitment to all
// historical block headers, answering "is this block in the chain?" and
// "give me the header at height h." Peak-bagging uses BLAKE3, a natural
// fit for an MMR-shaped accumulator and already present (indirectly) in
// the teacher's dependency graph.

import (
	"encoding/binary"
	"sort"

	"lukechampine.com/blake3"
)

// BlockHeader is the fixed-size record committed to by the chain MMR and
// referenced by every transaction's block_ref.
type BlockHeader struct {
	BlockNum  BlockNumber
	PrevHash  Hash
	ChainRoot Hash
	NoteRoot  Hash
	TxRoot    Hash
}

// Hash commits to the header's fields. Transactions reference a block by
// this value.
func (h BlockHeader) Hash() Hash {
	var numBuf [4]byte
	binary.BigEndian.PutUint32(numBuf[:], uint32(h.BlockNum))
	return keccak(numBuf[:], h.PrevHash[:], h.ChainRoot[:], h.NoteRoot[:], h.TxRoot[:])
}

// Peaks is the ordered list of MMR peak hashes, highest (oldest/largest
// subtree) first, as produced by the mountain range's current shape.
type Peaks []Hash

// blake3New returns a fresh 32-byte BLAKE3 hasher, shared by HashPeaks and
// the batch/block ID commitments.
func blake3New() *blake3.Hasher { return blake3.New(32, nil) }

// HashPeaks bags the peaks of an MMR into the single chain_root commitment
// carried by a BlockHeader, using a BLAKE3 hash over the peak count (4 bytes,
// big-endian) followed by the peak digests in order.
func HashPeaks(peaks Peaks) Hash {
	h := blake3New()
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(peaks)))
	h.Write(countBuf[:])
	for _, p := range peaks {
		h.Write(p[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// ChainMmr is an append-only commitment to every block header preceding
// the batch/block under construction. The reference block itself is never
// a member: the proving kernel appends it after the fact.
type ChainMmr struct {
	length  BlockNumber
	peaks   Peaks
	headers map[BlockNumber]BlockHeader
}

// NewChainMmr builds a ChainMmr from its peak hashes and the historical
// headers it commits to. The caller is responsible for the peaks being
// consistent with the supplied headers; the constructors only ever check
// hash_peaks(peaks) against a BlockHeader's chain_root, never recompute the
// MMR shape from headers.
func NewChainMmr(length BlockNumber, peaks Peaks, headers map[BlockNumber]BlockHeader) ChainMmr {
	cp := make(Peaks, len(peaks))
	copy(cp, peaks)
	ch := make(map[BlockNumber]BlockHeader, len(headers))
	for k, v := range headers {
		ch[k] = v
	}
	return ChainMmr{length: length, peaks: cp, headers: ch}
}

// ChainLength returns the number of blocks committed to by this MMR.
func (c ChainMmr) ChainLength() BlockNumber { return c.length }

// PeaksSlice returns a copy of the MMR's current peak hashes.
func (c ChainMmr) PeaksSlice() Peaks {
	out := make(Peaks, len(c.peaks))
	copy(out, c.peaks)
	return out
}

// BlockHeaders returns every header committed to by this MMR, in ascending
// block-number order.
func (c ChainMmr) BlockHeaders() []BlockHeader {
	nums := make([]BlockNumber, 0, len(c.headers))
	for n := range c.headers {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	out := make([]BlockHeader, 0, len(nums))
	for _, n := range nums {
		out = append(out, c.headers[n])
	}
	return out
}

// GetBlock returns the header at the given height, if committed.
func (c ChainMmr) GetBlock(num BlockNumber) (BlockHeader, bool) {
	h, ok := c.headers[num]
	return h, ok
}
