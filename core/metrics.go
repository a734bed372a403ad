package core

// metrics.go - construction metrics, following
// core/system_health_logging.go's prometheus.NewRegistry() + gauge/counter
// wiring. Instruments latency and rejection counts for both construction
// tiers; nothing about proof generation or serialization is touched, per
// SPEC_FULL.md's ambient-stack note.

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the batch/block
// construction engine.
type Metrics struct {
	Registry *prometheus.Registry

	BatchConstructionSeconds prometheus.Histogram
	BatchRejections          *prometheus.CounterVec
	BlockConstructionSeconds prometheus.Histogram
	BlockRejections          *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	pkgMetrics  *Metrics
)

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		BatchConstructionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rollup_core",
			Subsystem: "batch",
			Name:      "construction_seconds",
			Help:      "Time spent constructing a proposed batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		BatchRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollup_core",
			Subsystem: "batch",
			Name:      "rejections_total",
			Help:      "Count of proposed batch constructions rejected, by error kind.",
		}, []string{"kind"}),
		BlockConstructionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rollup_core",
			Subsystem: "block",
			Name:      "construction_seconds",
			Help:      "Time spent constructing a proposed block.",
			Buckets:   prometheus.DefBuckets,
		}),
		BlockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollup_core",
			Subsystem: "block",
			Name:      "rejections_total",
			Help:      "Count of proposed block constructions rejected, by error kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.BatchConstructionSeconds, m.BatchRejections, m.BlockConstructionSeconds, m.BlockRejections)
	return m
}

// PackageMetrics returns the lazily-initialized package-level metrics
// registry used by ProposeBatch and ProposeBlock.
func PackageMetrics() *Metrics {
	metricsOnce.Do(func() { pkgMetrics = newMetrics() })
	return pkgMetrics
}

// errorKind labels a rejection metric with the offending error's concrete
// type, falling back to "unknown" for anything outside the catalog in
// errors.go.
func errorKind(err error) string {
	switch err.(type) {
	case nil:
		return ""
	case *EmptyTransactionBatchError:
		return "empty_transaction_batch"
	case *DuplicateTransactionError:
		return "duplicate_transaction"
	case *InconsistentChainLengthError:
		return "inconsistent_chain_length"
	case *InconsistentChainRootError:
		return "inconsistent_chain_root"
	case *ReferenceBlockTooNewError:
		return "reference_block_too_new"
	case *MissingTransactionBlockReferenceError:
		return "missing_transaction_block_reference"
	case *AccountUpdateError:
		return "account_update_error"
	case *TooManyAccountUpdatesError:
		return "too_many_account_updates"
	case *TooManyInputNotesError:
		return "too_many_input_notes"
	case *TooManyOutputNotesError:
		return "too_many_output_notes"
	case *DuplicateInputNoteError:
		return "duplicate_input_note"
	case *DuplicateOutputNoteError:
		return "duplicate_output_note"
	case *NoteHashesMismatchError:
		return "note_hashes_mismatch"
	case *UnauthenticatedInputNoteBlockNotInChainMmrError:
		return "unauthenticated_input_note_block_not_in_chain_mmr"
	case *UnauthenticatedNoteAuthenticationFailedError:
		return "unauthenticated_note_authentication_failed"
	case *BatchExpiredError:
		return "batch_expired"
	case *DuplicateBatchError:
		return "duplicate_batch"
	case *BlockAccountUpdateError:
		return "block_account_update_error"
	case *DuplicateNullifierError:
		return "duplicate_nullifier"
	case *MissingNullifierWitnessError:
		return "missing_nullifier_witness"
	case *InconsistentAccountStateTransitionError:
		return "inconsistent_account_state_transition"
	default:
		return "unknown"
	}
}
