// Package testutil hosts shared fixtures for the batch and block
// constructor tests: a small in-memory "mock chain" builder, proven
// transaction builders, and note builders, modeled on miden-base's
// MockChain test harness referenced throughout proposed_block_success.rs.
// Nothing here is exported outside of test code paths; it plays the role
// spec.md §1 assigns to "the host chain simulator ... used only in tests
// to seed inputs."
package testutil

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/synnergy-labs/rollup-core/core"
)

// MockChain accumulates block headers the way a real chain would, letting
// tests build a consistent (chain_mmr, block_header) pair without hand
// deriving MMR peaks.
type MockChain struct {
	headers map[core.BlockNumber]core.BlockHeader
	peaks   core.Peaks
}

// NewMockChain seeds a chain with a genesis header at block 0.
func NewMockChain() *MockChain {
	genesis := core.BlockHeader{
		BlockNum:  0,
		PrevHash:  core.Hash{},
		NoteRoot:  core.Hash{},
		TxRoot:    core.Hash{},
		ChainRoot: core.HashPeaks(nil),
	}
	return &MockChain{
		headers: map[core.BlockNumber]core.BlockHeader{0: genesis},
		// Genesis itself commits to zero prior blocks (chain_length 0);
		// once sealed, its hash becomes the sole peak backing block 1's
		// chain_root.
		peaks: core.Peaks{genesis.Hash()},
	}
}

// Seal appends a new block header committing to the chain's current peaks,
// then appends the sealed header's hash to the peaks (a simplified MMR
// adequate for test fixtures: one peak per sealed header, never merged;
// the production Peaks shape is opaque to callers beyond HashPeaks).
func (c *MockChain) Seal(noteRoot core.Hash) core.BlockHeader {
	lastNum := c.Length() - 1
	last := c.headers[lastNum]
	header := core.BlockHeader{
		BlockNum:  lastNum + 1,
		PrevHash:  last.Hash(),
		NoteRoot:  noteRoot,
		TxRoot:    core.Hash{},
		ChainRoot: core.HashPeaks(c.peaks),
	}
	c.headers[header.BlockNum] = header
	c.peaks = append(c.peaks, header.Hash())
	return header
}

// Length returns the number of headers currently sealed, i.e. the chain
// MMR's chain_length if this chain were used as the reference block's MMR.
func (c *MockChain) Length() core.BlockNumber {
	return core.BlockNumber(len(c.headers))
}

// ChainMmrUpTo returns a ChainMmr consistent with the header at
// referenceBlockNum: it contains every header strictly before
// referenceBlockNum, with peaks matching that header's chain_root.
func (c *MockChain) ChainMmrUpTo(referenceBlockNum core.BlockNumber) core.ChainMmr {
	headers := make(map[core.BlockNumber]core.BlockHeader)
	var peaks core.Peaks
	for num, h := range c.headers {
		if num < referenceBlockNum {
			headers[num] = h
			peaks = append(peaks, h.Hash())
		}
	}
	return core.NewChainMmr(referenceBlockNum, sealOrder(headers), headers)
}

// sealOrder rebuilds a peaks slice in ascending block-number order so
// HashPeaks is deterministic across map iteration.
func sealOrder(headers map[core.BlockNumber]core.BlockHeader) core.Peaks {
	nums := make([]core.BlockNumber, 0, len(headers))
	for n := range headers {
		nums = append(nums, n)
	}
	for i := 1; i < len(nums); i++ {
		for j := i; j > 0 && nums[j-1] > nums[j]; j-- {
			nums[j-1], nums[j] = nums[j], nums[j-1]
		}
	}
	peaks := make(core.Peaks, 0, len(nums))
	for _, n := range nums {
		peaks = append(peaks, headers[n].Hash())
	}
	return peaks
}

// Header returns the sealed header at the given block number.
func (c *MockChain) Header(num core.BlockNumber) core.BlockHeader {
	return c.headers[num]
}

// NewAccountId returns a synthetic, unique account id for test fixtures.
func NewAccountId() core.AccountId {
	var out core.AccountId
	id := uuid.New()
	copy(out[:], id[:])
	return out
}

// NewNoteId returns a synthetic, unique note id for test fixtures.
func NewNoteId() core.NoteId {
	var h core.Hash
	id := uuid.New()
	copy(h[:], id[:])
	return core.NoteId(h)
}

// NewTransactionId returns a synthetic, unique transaction id for test
// fixtures.
func NewTransactionId() core.TransactionId {
	var h core.Hash
	id := uuid.New()
	copy(h[:], id[:])
	return core.TransactionId(h)
}

// NewStateCommitment derives a synthetic state commitment from a counter,
// giving tests a cheap way to produce chainable, distinct commitments.
func NewStateCommitment(counter uint64) core.Hash {
	var h core.Hash
	binary.BigEndian.PutUint64(h[24:], counter)
	return h
}
