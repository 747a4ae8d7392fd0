package anchor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"

	"github.com/iotaledger/didanchor/client"
	"github.com/iotaledger/didanchor/client/anchor/packages/publishoptions"
	"github.com/iotaledger/didanchor/packages/did"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region Target ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Target describes the desired final state of an Alias Output to anchor. An empty AliasID mints a new alias; a known
// AliasID updates the existing one.
type Target struct {
	// AliasID identifies the alias to update. The empty placeholder mints a new alias.
	AliasID ledgerstate.AliasID

	// Document holds the encoded DID document to carry in the state metadata. Placeholder self-references are
	// resolved against the alias identifier before publication. Ignored for governance transitions.
	Document []byte

	// Amount is the desired final amount of the Alias Output. Zero keeps the current amount for updates and the
	// minimum storage deposit for mints, raised to the minimum where the document outgrew it.
	Amount uint64

	// StateController replaces the state controller address. Mandatory for mints, optional for updates.
	StateController ledgerstate.Address

	// Governor replaces the governor address. Mandatory for mints, optional for updates.
	Governor ledgerstate.Address

	// GovernanceTransition keeps the state index unchanged so the governor authorizes the update. It is used for
	// controller changes and deactivation.
	GovernanceTransition bool
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region PublishedDocument ////////////////////////////////////////////////////////////////////////////////////////////

// PublishedDocument is the confirmation read-back of a publish operation: the anchored document as reconstructed from
// the submitted Block.
type PublishedDocument struct {
	// Document is the anchored document with its derived DID.
	Document *did.Document

	// BlockID identifies the Block that carried the transaction (the included one when inclusion was awaited).
	BlockID ledgerstate.BlockID

	// TransactionID identifies the anchoring transaction.
	TransactionID ledgerstate.TransactionID
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Publisher ////////////////////////////////////////////////////////////////////////////////////////////////////

// Publisher is the top level component of the anchoring pipeline: it plans the consumption, resolves the unlock
// addresses, signs the transaction, submits it and drives it to inclusion. Publish operations for different aliases
// may run concurrently; updates of the same alias must be serialized by the caller, as concurrent plans would consume
// the same current output.
type Publisher struct {
	connector client.Connector
	planner   *Planner
	signer    *Signer
	tracker   *InclusionTracker
	log       *logger.Logger
}

// NewPublisher creates a Publisher funding its transactions from the given wallet address and signing with the given
// KeyStore. Metrics and logger are optional.
func NewPublisher(connector client.Connector, keyStore KeyStore, walletAddress ledgerstate.Address, metrics *Metrics, log *logger.Logger) *Publisher {
	return &Publisher{
		connector: connector,
		planner:   NewPlanner(connector, walletAddress),
		signer:    NewSigner(keyStore, connector),
		tracker:   NewInclusionTracker(connector, metrics, log),
		log:       log,
	}
}

// Tracker returns the InclusionTracker of the Publisher, exposing its events and attempt counter.
func (p *Publisher) Tracker() *InclusionTracker {
	return p.tracker
}

// PlanAndPublish anchors the given target state: it assembles and signs the transaction, submits it and, unless
// disabled via the options, waits for its inclusion. It returns the anchored document reconstructed from the
// submitted Block. Any failure before submission leaves no on-ledger trace; after submission the ledger state must be
// re-resolved before retrying.
func (p *Publisher) PlanAndPublish(ctx context.Context, target *Target, options ...publishoptions.PublishOption) (*PublishedDocument, error) {
	publishOptions, err := publishoptions.Build(options...)
	if err != nil {
		return nil, err
	}
	networkHRP, err := p.connector.NetworkHRP()
	if err != nil {
		return nil, errors.Errorf("failed to determine network HRP: %w", err)
	}

	plan, err := p.plan(target, networkHRP)
	if err != nil {
		return nil, err
	}
	transaction, err := p.sign(plan)
	if err != nil {
		return nil, err
	}

	block, blockID, err := p.submit(ctx, transaction, publishOptions)
	if err != nil {
		return nil, err
	}

	documents, err := ExtractDocuments(block, networkHRP)
	if err != nil {
		return nil, err
	}
	document, err := documentOfAlias(documents, target.AliasID)
	if err != nil {
		return nil, err
	}

	return &PublishedDocument{
		Document:      document,
		BlockID:       blockID,
		TransactionID: transaction.ID(),
	}, nil
}

// DeleteAliasOutput destroys the Alias Output of the given alias, returning its deposit to the destination address.
// The destruction is a governance transition: the governor authorizes it.
func (p *Publisher) DeleteAliasOutput(ctx context.Context, aliasID ledgerstate.AliasID, destination ledgerstate.Address, options ...publishoptions.PublishOption) error {
	publishOptions, err := publishoptions.Build(options...)
	if err != nil {
		return err
	}

	outputID, current, err := p.connector.AliasOutputByAliasID(aliasID)
	if err != nil {
		return errors.Errorf("failed to fetch current Alias Output of %s: %w", aliasID.Base58(), err)
	}
	current.SetID(outputID)

	plan, err := p.planner.PlanDestroy(current, destination)
	if err != nil {
		return err
	}
	transaction, err := p.sign(plan)
	if err != nil {
		return err
	}

	_, _, err = p.submit(ctx, transaction, publishOptions)

	return err
}

// plan builds the successor Alias Output of the target and assembles the consumption plan around it.
func (p *Publisher) plan(target *Target, networkHRP string) (*Plan, error) {
	if target.AliasID.IsEmpty() {
		aliasOutput, err := ledgerstate.NewAliasOutputMint(target.Amount, target.Document, target.StateController, target.Governor)
		if err != nil {
			return nil, errors.Errorf("failed to build minting Alias Output: %w", err)
		}

		return p.planner.PlanMint(aliasOutput)
	}

	outputID, current, err := p.connector.AliasOutputByAliasID(target.AliasID)
	if err != nil {
		return nil, errors.Errorf("failed to fetch current Alias Output of %s: %w", target.AliasID.Base58(), err)
	}
	current.SetID(outputID)

	next := current.NewAliasOutputNext(target.GovernanceTransition)
	if !target.GovernanceTransition {
		if err = next.SetStateMetadata(did.ReplacePlaceholder(target.Document, target.AliasID, networkHRP)); err != nil {
			return nil, errors.Errorf("failed to set state metadata: %w", err)
		}
	}
	if target.StateController != nil {
		next.SetStateController(target.StateController)
	}
	if target.Governor != nil {
		next.SetGovernor(target.Governor)
	}

	amount := target.Amount
	if amount == 0 {
		amount = current.Amount()
		minimumDeposit, depositErr := p.connector.MinimumStorageDeposit(next)
		if depositErr != nil {
			return nil, errors.Errorf("failed to determine minimum storage deposit: %w", depositErr)
		}
		if amount < minimumDeposit {
			amount = minimumDeposit
		}
	}
	next.SetAmount(amount)

	return p.planner.PlanUpdate(current, next)
}

// sign resolves the unlock addresses of the plan, signs the transaction and re-validates balances and unlocks before
// anything leaves the process.
func (p *Publisher) sign(plan *Plan) (*ledgerstate.Transaction, error) {
	networkID, err := p.connector.NetworkID()
	if err != nil {
		return nil, errors.Errorf("failed to determine network ID: %w", err)
	}

	consumed, err := ResolveConsumedOutputs(plan.Consumed, plan.Produced)
	if err != nil {
		return nil, err
	}
	transaction, ordered, err := p.signer.Sign(networkID, consumed, plan.Produced)
	if err != nil {
		return nil, err
	}
	if err = checkBalancesAndUnlocks(transaction, ordered); err != nil {
		return nil, err
	}

	return transaction, nil
}

// submit hands the transaction to the tracker and optionally awaits its inclusion.
func (p *Publisher) submit(ctx context.Context, transaction *ledgerstate.Transaction, publishOptions *publishoptions.PublishOptions) (*ledgerstate.Block, ledgerstate.BlockID, error) {
	block, blockID, err := p.tracker.Submit(transaction)
	if err != nil {
		return nil, ledgerstate.EmptyBlockID, err
	}
	if p.log != nil {
		p.log.Infof("submitted Transaction %s in Block %s", transaction.ID(), blockID)
	}

	if publishOptions.WaitForInclusion {
		if blockID, err = p.tracker.Await(ctx, blockID, publishOptions.RetryInterval, publishOptions.MaxAttempts); err != nil {
			return nil, ledgerstate.EmptyBlockID, err
		}
	}

	return block, blockID, nil
}

// checkBalancesAndUnlocks re-validates the signed transaction against its consumed Outputs.
func checkBalancesAndUnlocks(transaction *ledgerstate.Transaction, consumed []*ConsumedOutput) error {
	consumedOutputs := make(ledgerstate.Outputs, len(consumed))
	unlockAddresses := make([]ledgerstate.Address, len(consumed))
	for i, consumedOutput := range consumed {
		consumedOutputs[i] = consumedOutput.Output
		unlockAddresses[i] = consumedOutput.UnlockAddress
	}

	if !ledgerstate.TransactionBalancesValid(consumedOutputs, transaction.Essence().Outputs()) {
		return errors.Errorf("balances of Transaction %s are invalid: %w", transaction.ID(), ErrUnbalancedTransaction)
	}
	if valid, err := ledgerstate.UnlocksValidWithError(consumedOutputs, unlockAddresses, transaction); !valid {
		return errors.Errorf("unlocks of Transaction %s are invalid: %v", transaction.ID(), err)
	}

	return nil
}

// documentOfAlias picks the document of the given alias from the extracted documents. The placeholder AliasID of a
// mint matches the single freshly derived document.
func documentOfAlias(documents []*did.Document, aliasID ledgerstate.AliasID) (*did.Document, error) {
	if aliasID.IsEmpty() {
		return documents[0], nil
	}
	for _, document := range documents {
		if document.AliasID == aliasID {
			return document, nil
		}
	}

	return nil, errors.Errorf("no document anchored for alias %s: %w", aliasID.Base58(), ErrNoAnchoredDocument)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
