package core

// ids.go - identifier types shared by the proposed batch and proposed block
// constructors: addresses, 32-byte digests, and the strongly-typed IDs
// derived from them. The keccak helper here, backed by go-ethereum's
// Keccak256 (the same primitive core/transactions.go used for transaction
// hashing), hashes block headers; batch and block IDs are BLAKE3
// commitments and note hashes use MiMC.

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Address is a 20-byte account identifier.
type Address [20]byte

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// Bytes returns a copy of the digest bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

func keccak(parts ...[]byte) Hash {
	var out Hash
	copy(out[:], crypto.Keccak256(parts...))
	return out
}

// AccountId identifies an account that a transaction mutates.
type AccountId = Address

// BlockNumber indexes the chain MMR and block headers. Block 0 is genesis.
type BlockNumber uint32

// MaxBlockNumber is the sentinel used to seed an expiration-block minimum
// reduction before folding in any transaction's actual expiration height.
const MaxBlockNumber BlockNumber = ^BlockNumber(0)

func (b BlockNumber) String() string { return fmt.Sprintf("%d", uint32(b)) }

// TransactionId uniquely identifies a ProvenTransaction.
type TransactionId Hash

func (t TransactionId) String() string { return Hash(t).String() }

// NoteId uniquely identifies a note by a commitment to its contents.
type NoteId Hash

func (n NoteId) String() string { return Hash(n).String() }

// Nullifier is the one-way derivative of a note proving it has been spent
// without revealing which note it was.
type Nullifier Hash

func (n Nullifier) String() string { return Hash(n).String() }

// BatchId is a cryptographic commitment to the ordered transactions of a
// ProposedBatch.
type BatchId Hash

func (b BatchId) String() string { return Hash(b).String() }

// BlockId is a cryptographic commitment to the ordered batches of a
// ProposedBlock.
type BlockId Hash

func (b BlockId) String() string { return Hash(b).String() }
