package main

// rollupctl is a thin illustrative driver for the batch/block construction
// engine: it reads a fixture file describing transactions, calls
// core.ProposeBatch, and prints the resulting commitments. It is not a
// wire protocol or mempool service - per the spec, CLI/RPC wrappers are
// out of scope as collaborators; this exists only because the teacher
// never ships a domain package without a cmd/ entry point exercising it.

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/synnergy-labs/rollup-core/core"
	"github.com/synnergy-labs/rollup-core/pkg/config"
)

func main() {
	// Load environment variables from a .env file if present, mirroring the
	// teacher's cmd/explorer entry point. Absence is not an error.
	_ = godotenv.Load(".env")

	rootCmd := &cobra.Command{Use: "rollupctl"}
	rootCmd.AddCommand(batchCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "batch"}
	propose := &cobra.Command{
		Use:   "propose [fixture.json]",
		Short: "propose a batch from a transaction fixture file, printing its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if env := os.Getenv("ROLLUP_ENV"); env != "" {
				if _, err := config.Load(env); err != nil {
					fmt.Fprintf(os.Stderr, "warning: config load failed: %v\n", err)
				}
			}
			return runProposeBatch(args[0])
		},
	}
	cmd.AddCommand(propose)
	return cmd
}

// fixture is the on-disk shape of a batch construction fixture: a flat,
// note-free set of account state transitions, one per transaction, all
// referencing a single genesis block header. It is intentionally minimal;
// it exists to exercise ProposeBatch end to end, not to model every field
// of the domain.
type fixture struct {
	Transactions []fixtureTx `json:"transactions"`
}

type fixtureTx struct {
	Id                 string `json:"id"`
	AccountId          string `json:"account_id"`
	InitialCommitment  string `json:"initial_state_commitment"`
	FinalCommitment    string `json:"final_state_commitment"`
	ExpirationBlockNum uint32 `json:"expiration_block_num"`
}

func runProposeBatch(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	genesis := core.BlockHeader{BlockNum: 0, ChainRoot: core.HashPeaks(nil)}
	chainMmr := core.NewChainMmr(0, nil, nil)

	transactions := make([]*core.ProvenTransaction, 0, len(f.Transactions))
	for _, t := range f.Transactions {
		id, err := parseTransactionId(t.Id)
		if err != nil {
			return err
		}
		accountId, err := parseAccountId(t.AccountId)
		if err != nil {
			return err
		}
		initial, err := parseHash(t.InitialCommitment)
		if err != nil {
			return err
		}
		final, err := parseHash(t.FinalCommitment)
		if err != nil {
			return err
		}
		update := core.AccountUpdate{
			AccountId:              accountId,
			InitialStateCommitment: initial,
			FinalStateCommitment:   final,
		}
		expiration := core.BlockNumber(t.ExpirationBlockNum)
		if expiration == 0 {
			expiration = core.MaxBlockNumber
		}
		transactions = append(transactions, core.NewProvenTransaction(
			id, accountId, genesis.Hash(), expiration, nil, nil, update,
		))
	}

	batch, err := core.ProposeBatch(transactions, genesis, chainMmr, nil)
	if err != nil {
		return fmt.Errorf("propose batch: %w", err)
	}

	fmt.Printf("batch id: %s\n", batch.Id())
	fmt.Printf("accounts touched: %d\n", len(batch.AccountUpdates()))
	fmt.Printf("expiration block: %s\n", batch.BatchExpirationBlockNum())
	return nil
}

func parseHash(s string) (core.Hash, error) {
	var h core.Hash
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

func parseAccountId(s string) (core.AccountId, error) {
	var a core.AccountId
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return a, fmt.Errorf("invalid account id %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

func parseTransactionId(s string) (core.TransactionId, error) {
	h, err := parseHash(s)
	return core.TransactionId(h), err
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
