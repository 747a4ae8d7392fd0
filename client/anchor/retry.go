package anchor

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/atomic"

	"github.com/iotaledger/didanchor/client"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region trackerDecision //////////////////////////////////////////////////////////////////////////////////////////////

const (
	// decisionWait keeps polling without a side effect.
	decisionWait trackerDecision = iota

	// decisionIncluded ends tracking: the Block resolved definitively.
	decisionIncluded

	// decisionPromote re-references the Block to gain confirmation weight.
	decisionPromote

	// decisionReattach wraps the payload into a fresh Block.
	decisionReattach
)

// trackerDecision is the side effect the retry machine picks for one polled Block per tick.
type trackerDecision uint8

// decide is the pure transition function of the retry machine. Only the latest tracked Block may be promoted or
// reattached; older Blocks can still resolve the tracking when they turn final.
func decide(metadata *client.BlockMetadata, isLatest bool) trackerDecision {
	switch {
	case metadata.InclusionState.IsFinal():
		return decisionIncluded
	case !isLatest:
		return decisionWait
	case metadata.ShouldPromote:
		return decisionPromote
	case metadata.ShouldReattach:
		return decisionReattach
	default:
		return decisionWait
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region InclusionTrackerEvents ///////////////////////////////////////////////////////////////////////////////////////

// InclusionTrackerEvents holds the events an InclusionTracker fires while driving a Block to inclusion.
type InclusionTrackerEvents struct {
	// BlockSubmitted is fired when a Block was handed to the network.
	BlockSubmitted *events.Event

	// BlockPromoted is fired when the latest tracked Block was promoted.
	BlockPromoted *events.Event

	// BlockReattached is fired when the payload was reattached; the parameter is the fresh BlockID.
	BlockReattached *events.Event

	// BlockIncluded is fired when a tracked Block was observed as included.
	BlockIncluded *events.Event

	// TimedOut is fired when the retry budget was exhausted; the parameter is the latest tracked BlockID.
	TimedOut *events.Event
}

func newInclusionTrackerEvents() *InclusionTrackerEvents {
	return &InclusionTrackerEvents{
		BlockSubmitted:  events.NewEvent(blockIDEventCaller),
		BlockPromoted:   events.NewEvent(blockIDEventCaller),
		BlockReattached: events.NewEvent(blockIDEventCaller),
		BlockIncluded:   events.NewEvent(blockIDEventCaller),
		TimedOut:        events.NewEvent(blockIDEventCaller),
	}
}

func blockIDEventCaller(handler interface{}, params ...interface{}) {
	handler.(func(ledgerstate.BlockID))(params[0].(ledgerstate.BlockID))
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region InclusionTracker /////////////////////////////////////////////////////////////////////////////////////////////

// InclusionTracker wraps a signed Transaction into a Block, submits it and drives it to inclusion by promoting and
// reattaching until the network reports it as included or the retry budget is exhausted. The transition logic is pure
// (decide); the tracker is only the thin I/O driver around it.
type InclusionTracker struct {
	Events *InclusionTrackerEvents

	connector client.Connector
	metrics   *Metrics
	log       *logger.Logger
	attempts  atomic.Uint32
}

// NewInclusionTracker creates an InclusionTracker submitting through the given Connector. Metrics and logger are
// optional.
func NewInclusionTracker(connector client.Connector, metrics *Metrics, log *logger.Logger) *InclusionTracker {
	return &InclusionTracker{
		Events:    newInclusionTrackerEvents(),
		connector: connector,
		metrics:   metrics,
		log:       log,
	}
}

// Submit wraps the given Transaction into a Block referencing the current tips and submits it. The nonce stays zero;
// proof-of-work, where required, is delegated to the node.
func (t *InclusionTracker) Submit(transaction *ledgerstate.Transaction) (*ledgerstate.Block, ledgerstate.BlockID, error) {
	tips, err := t.connector.Tips()
	if err != nil {
		return nil, ledgerstate.EmptyBlockID, errors.Errorf("failed to fetch tips: %w", err)
	}
	block, err := ledgerstate.NewBlock(tips, transaction, 0)
	if err != nil {
		return nil, ledgerstate.EmptyBlockID, errors.Errorf("failed to build Block: %w", err)
	}

	blockID, err := t.connector.SubmitBlock(block)
	if err != nil {
		return nil, ledgerstate.EmptyBlockID, errors.Errorf("failed to submit Block: %w", err)
	}

	t.debugf("submitted Block %s carrying Transaction %s", blockID, transaction.ID())
	if t.metrics != nil {
		t.metrics.BlocksSubmitted.Inc()
	}
	t.Events.BlockSubmitted.Trigger(blockID)

	return block, blockID, nil
}

// Attempts returns the number of poll ticks spent on the currently or most recently tracked Block.
func (t *InclusionTracker) Attempts() uint32 {
	return t.attempts.Load()
}

// Await polls the submitted Block until it is observed as included. Reattachments append fresh BlockIDs to the
// tracked list; all tracked Blocks are polled every tick but only the latest one is promoted or reattached. The
// returned BlockID is the tracked Block that resolved, or the latest one on timeout or cancellation. Cancelling the
// context abandons observation only; the submitted Block stays valid and may still be included later.
func (t *InclusionTracker) Await(ctx context.Context, blockID ledgerstate.BlockID, interval time.Duration, maxAttempts uint32) (ledgerstate.BlockID, error) {
	tracked := []ledgerstate.BlockID{blockID}
	t.attempts.Store(0)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for t.attempts.Load() < maxAttempts {
		select {
		case <-ctx.Done():
			return latestBlockID(tracked), ctx.Err()
		case <-ticker.C:
			t.attempts.Inc()
		}

		includedBlockID, resolved, err := t.tick(&tracked)
		if err != nil {
			return latestBlockID(tracked), err
		}
		if resolved {
			return includedBlockID, nil
		}
	}

	latest := latestBlockID(tracked)
	t.debugf("gave up on Block %s after %d attempts", latest, t.attempts.Load())
	if t.metrics != nil {
		t.metrics.InclusionTimeouts.Inc()
	}
	t.Events.TimedOut.Trigger(latest)

	return latest, errors.Errorf("block %s was not included after %d attempts: %w", latest, t.attempts.Load(), ErrInclusionTimeout)
}

// tick polls every tracked Block once and executes the decision of the transition function.
func (t *InclusionTracker) tick(tracked *[]ledgerstate.BlockID) (includedBlockID ledgerstate.BlockID, resolved bool, err error) {
	latest := latestBlockID(*tracked)
	for _, trackedBlockID := range *tracked {
		metadata, metadataErr := t.connector.BlockMetadata(trackedBlockID)
		if metadataErr != nil {
			t.debugf("failed to fetch metadata of Block %s: %s", trackedBlockID, metadataErr)
			continue
		}

		switch decide(metadata, trackedBlockID == latest) {
		case decisionIncluded:
			t.debugf("Block %s resolved with inclusion state %s", trackedBlockID, metadata.InclusionState)
			if t.metrics != nil {
				t.metrics.BlocksIncluded.Inc()
			}
			t.Events.BlockIncluded.Trigger(trackedBlockID)

			return trackedBlockID, true, nil

		case decisionPromote:
			if promoteErr := t.connector.Promote(trackedBlockID); promoteErr != nil {
				t.debugf("failed to promote Block %s: %s", trackedBlockID, promoteErr)
				continue
			}
			t.debugf("promoted Block %s", trackedBlockID)
			if t.metrics != nil {
				t.metrics.BlocksPromoted.Inc()
			}
			t.Events.BlockPromoted.Trigger(trackedBlockID)

		case decisionReattach:
			newBlockID, reattachErr := t.connector.Reattach(trackedBlockID)
			if reattachErr != nil {
				t.debugf("failed to reattach Block %s: %s", trackedBlockID, reattachErr)
				continue
			}
			t.debugf("reattached Block %s as %s", trackedBlockID, newBlockID)
			*tracked = append(*tracked, newBlockID)
			if t.metrics != nil {
				t.metrics.BlocksReattached.Inc()
			}
			t.Events.BlockReattached.Trigger(newBlockID)
		}
	}

	return ledgerstate.EmptyBlockID, false, nil
}

func (t *InclusionTracker) debugf(template string, args ...interface{}) {
	if t.log != nil {
		t.log.Debugf(template, args...)
	}
}

func latestBlockID(tracked []ledgerstate.BlockID) ledgerstate.BlockID {
	return tracked[len(tracked)-1]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
