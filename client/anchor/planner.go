package anchor

import (
	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/client"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region Plan /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Plan is the full input/output set of a balanced transaction assembled by the Planner.
type Plan struct {
	// Consumed holds the Outputs the transaction spends.
	Consumed ledgerstate.Outputs

	// Produced holds the Outputs the transaction creates, in deterministic order.
	Produced ledgerstate.Outputs
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Planner //////////////////////////////////////////////////////////////////////////////////////////////////////

// Planner decides which existing Outputs must be consumed to fund a new or updated Alias Output, synthesizes remainder
// Outputs for excess value and validates storage deposits and balance of the assembled plan.
type Planner struct {
	connector     client.Connector
	walletAddress ledgerstate.Address
}

// NewPlanner creates a Planner funding its transactions from the Basic Outputs owned by the given wallet address.
// Remainders are returned to the same address.
func NewPlanner(connector client.Connector, walletAddress ledgerstate.Address) *Planner {
	return &Planner{
		connector:     connector,
		walletAddress: walletAddress,
	}
}

// PlanMint assembles the plan creating the given Alias Output. The full amount is drawn from the wallet; an amount of
// zero is raised to the minimum storage deposit of the Output.
func (p *Planner) PlanMint(aliasOutput *ledgerstate.AliasOutput) (*Plan, error) {
	minimumDeposit, err := p.connector.MinimumStorageDeposit(aliasOutput)
	if err != nil {
		return nil, errors.Errorf("failed to determine minimum storage deposit: %w", err)
	}
	if aliasOutput.Amount() == 0 {
		aliasOutput.SetAmount(minimumDeposit)
	}

	fundingOutput, err := p.fundingOutput(aliasOutput.Amount())
	if err != nil {
		return nil, err
	}

	consumed := ledgerstate.Outputs{fundingOutput}
	produced := []ledgerstate.Output{aliasOutput}
	if surplus := fundingOutput.Amount() - aliasOutput.Amount(); surplus > 0 {
		produced = append(produced, ledgerstate.NewBasicOutput(surplus, p.walletAddress))
	}

	return p.validatedPlan(consumed, ledgerstate.NewOutputs(produced...))
}

// PlanUpdate assembles the plan replacing the current on-ledger Alias Output with the given successor. A deficit is
// drawn from the wallet; a surplus is returned as a remainder Basic Output, topped up from the wallet when it would
// fall below the minimum storage deposit.
func (p *Planner) PlanUpdate(current, next *ledgerstate.AliasOutput) (*Plan, error) {
	consumed := ledgerstate.Outputs{current}
	produced := []ledgerstate.Output{next}

	switch {
	case next.Amount() > current.Amount():
		deficit := next.Amount() - current.Amount()
		fundingOutput, err := p.fundingOutput(deficit)
		if err != nil {
			return nil, err
		}
		consumed = append(consumed, fundingOutput)
		if surplus := fundingOutput.Amount() - deficit; surplus > 0 {
			produced = append(produced, ledgerstate.NewBasicOutput(surplus, p.walletAddress))
		}

	case next.Amount() < current.Amount():
		surplus := current.Amount() - next.Amount()
		remainder := ledgerstate.NewBasicOutput(surplus, p.walletAddress)
		minimumDeposit, err := p.connector.MinimumStorageDeposit(remainder)
		if err != nil {
			return nil, errors.Errorf("failed to determine minimum storage deposit: %w", err)
		}
		if surplus < minimumDeposit {
			topUpOutput, topUpErr := p.topUpOutput(minimumDeposit - surplus)
			if topUpErr != nil {
				return nil, topUpErr
			}
			consumed = append(consumed, topUpOutput)
			remainder = ledgerstate.NewBasicOutput(surplus+topUpOutput.Amount(), p.walletAddress)
		}
		produced = append(produced, remainder)
	}

	return p.validatedPlan(consumed, ledgerstate.NewOutputs(produced...))
}

// PlanDestroy assembles the plan consuming the given Alias Output without a successor, returning its deposit to the
// destination address.
func (p *Planner) PlanDestroy(current *ledgerstate.AliasOutput, destination ledgerstate.Address) (*Plan, error) {
	consumed := ledgerstate.Outputs{current}
	produced := ledgerstate.NewOutputs(ledgerstate.NewBasicOutput(current.Amount(), destination))

	return p.validatedPlan(consumed, produced)
}

// fundingOutput selects the wallet Output that covers the required amount: an exact match if one exists, otherwise
// the largest qualifying Output. Ties are broken by the smallest OutputID.
func (p *Planner) fundingOutput(required uint64) (*ledgerstate.BasicOutput, error) {
	candidates, err := p.walletOutputs()
	if err != nil {
		return nil, err
	}

	var selected *ledgerstate.BasicOutput
	for _, candidate := range candidates {
		if candidate.Amount() < required {
			continue
		}
		if selected == nil || betterFunding(candidate, selected, required) {
			selected = candidate
		}
	}
	if selected == nil {
		return nil, errors.Errorf("no wallet output of address %s covers the required amount %d: %w", p.walletAddress.Base58(), required, ErrInsufficientFunds)
	}

	return selected, nil
}

// betterFunding ranks qualifying funding candidates: an exact match beats everything, otherwise larger amounts beat
// smaller ones.
func betterFunding(candidate, selected *ledgerstate.BasicOutput, required uint64) bool {
	candidateExact := candidate.Amount() == required
	selectedExact := selected.Amount() == required

	switch {
	case candidateExact != selectedExact:
		return candidateExact
	case candidate.Amount() != selected.Amount():
		return candidate.Amount() > selected.Amount()
	default:
		return candidate.ID().Compare(selected.ID()) < 0
	}
}

// topUpOutput selects the wallet Output that lifts a remainder above the minimum storage deposit: an exact match if
// one exists, otherwise the smallest qualifying Output, otherwise the largest available one. Ties are broken by the
// smallest OutputID.
func (p *Planner) topUpOutput(required uint64) (*ledgerstate.BasicOutput, error) {
	candidates, err := p.walletOutputs()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.Errorf("no wallet output of address %s available to top up the remainder by %d: %w", p.walletAddress.Base58(), required, ErrInsufficientFunds)
	}

	selected := candidates[0]
	for _, candidate := range candidates[1:] {
		if betterTopUp(candidate, selected, required) {
			selected = candidate
		}
	}

	return selected, nil
}

// betterTopUp ranks top-up candidates: exact match beats qualifying, qualifying beats insufficient, smaller qualifying
// amounts beat larger ones, larger insufficient amounts beat smaller ones.
func betterTopUp(candidate, selected *ledgerstate.BasicOutput, required uint64) bool {
	candidateQualifies := candidate.Amount() >= required
	selectedQualifies := selected.Amount() >= required

	switch {
	case candidateQualifies != selectedQualifies:
		return candidateQualifies
	case candidate.Amount() != selected.Amount() && candidateQualifies:
		return candidate.Amount() < selected.Amount()
	case candidate.Amount() != selected.Amount():
		return candidate.Amount() > selected.Amount()
	default:
		return candidate.ID().Compare(selected.ID()) < 0
	}
}

// walletOutputs fetches the unspent Basic Outputs of the wallet address.
func (p *Planner) walletOutputs() (outputs []*ledgerstate.BasicOutput, err error) {
	outputIDs, err := p.connector.UnspentBasicOutputIDs(p.walletAddress)
	if err != nil {
		return nil, errors.Errorf("failed to fetch unspent outputs of wallet address %s: %w", p.walletAddress.Base58(), err)
	}

	for _, outputID := range outputIDs {
		output, outputErr := p.connector.Output(outputID)
		if outputErr != nil {
			return nil, errors.Errorf("failed to fetch output %s: %w", outputID, outputErr)
		}
		if basicOutput, ok := output.(*ledgerstate.BasicOutput); ok {
			outputs = append(outputs, basicOutput)
		}
	}

	return outputs, nil
}

// validatedPlan checks the storage deposit of every produced Output and the exact balance of the plan.
func (p *Planner) validatedPlan(consumed, produced ledgerstate.Outputs) (*Plan, error) {
	for _, output := range produced {
		minimumDeposit, err := p.connector.MinimumStorageDeposit(output)
		if err != nil {
			return nil, errors.Errorf("failed to determine minimum storage deposit: %w", err)
		}
		if output.Amount() < minimumDeposit {
			return nil, errors.Errorf("produced %s output holding %d is below its minimum storage deposit %d: %w", output.Type(), output.Amount(), minimumDeposit, ErrInsufficientStorageDeposit)
		}
	}

	if consumedTotal, producedTotal := consumed.TotalAmount(), produced.TotalAmount(); consumedTotal != producedTotal {
		return nil, errors.Errorf("consumed amount %d does not match produced amount %d: %w", consumedTotal, producedTotal, ErrUnbalancedTransaction)
	}

	return &Plan{
		Consumed: consumed,
		Produced: produced,
	}, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
