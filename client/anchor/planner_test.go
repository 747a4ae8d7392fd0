package anchor

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

func TestPlanner_PlanMint(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	aliasOutput, err := ledgerstate.NewAliasOutputMint(1000, []byte("document"), walletAddress, walletAddress)
	require.NoError(t, err)
	funding := connector.addBasicOutput(1500, walletAddress)

	plan, err := planner.PlanMint(aliasOutput)
	require.NoError(t, err)

	// exactly one wallet output is consumed and the excess comes back as a remainder
	require.Len(t, plan.Consumed, 1)
	assert.Equal(t, funding.ID(), plan.Consumed[0].ID())
	require.Len(t, plan.Produced, 2)
	assert.EqualValues(t, 1500, plan.Produced.TotalAmount())
	assert.True(t, remainderAmount(plan.Produced) == 500)
}

func TestPlanner_PlanMint_ZeroAmount(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	aliasOutput, err := ledgerstate.NewAliasOutputMint(0, []byte("document"), walletAddress, walletAddress)
	require.NoError(t, err)
	minimumDeposit, err := connector.MinimumStorageDeposit(aliasOutput)
	require.NoError(t, err)
	connector.addBasicOutput(minimumDeposit, walletAddress)

	plan, err := planner.PlanMint(aliasOutput)
	require.NoError(t, err)

	// a zero target amount is raised to the minimum storage deposit; the exact match leaves no remainder
	assert.EqualValues(t, minimumDeposit, aliasOutput.Amount())
	require.Len(t, plan.Produced, 1)
}

func TestPlanner_FundingSelection(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	connector.addBasicOutput(900, walletAddress)
	largest := connector.addBasicOutput(5000, walletAddress)
	connector.addBasicOutput(2000, walletAddress)

	aliasOutput, err := ledgerstate.NewAliasOutputMint(1000, []byte("document"), walletAddress, walletAddress)
	require.NoError(t, err)

	// without an exact match the largest qualifying output wins
	plan, err := planner.PlanMint(aliasOutput)
	require.NoError(t, err)
	require.Len(t, plan.Consumed, 1)
	assert.Equal(t, largest.ID(), plan.Consumed[0].ID())

	// an exact match beats the largest output
	exact := connector.addBasicOutput(1000, walletAddress)
	plan, err = planner.PlanMint(aliasOutput)
	require.NoError(t, err)
	require.Len(t, plan.Consumed, 1)
	assert.Equal(t, exact.ID(), plan.Consumed[0].ID())
}

func TestPlanner_InsufficientFunds(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	connector.addBasicOutput(999, walletAddress)

	aliasOutput, err := ledgerstate.NewAliasOutputMint(1000, []byte("document"), walletAddress, walletAddress)
	require.NoError(t, err)

	_, err = planner.PlanMint(aliasOutput)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
}

func TestPlanner_PlanUpdate_Deficit(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	current := fundedAliasOutput(t, connector, walletAddress, 1000)
	next := current.NewAliasOutputNext(false)
	next.SetAmount(1600)
	connector.addBasicOutput(2000, walletAddress)

	plan, err := planner.PlanUpdate(current, next)
	require.NoError(t, err)

	// the alias plus one funding output are consumed; the funding excess returns to the wallet
	require.Len(t, plan.Consumed, 2)
	assert.EqualValues(t, 3000, plan.Consumed.TotalAmount())
	assert.EqualValues(t, 3000, plan.Produced.TotalAmount())
	assert.EqualValues(t, 1400, remainderAmount(plan.Produced))
}

func TestPlanner_PlanUpdate_Surplus(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	current := fundedAliasOutput(t, connector, walletAddress, 2000)
	next := current.NewAliasOutputNext(false)
	next.SetAmount(1000)

	plan, err := planner.PlanUpdate(current, next)
	require.NoError(t, err)

	// only the alias is consumed; the freed deposit returns as a remainder
	require.Len(t, plan.Consumed, 1)
	assert.EqualValues(t, 1000, remainderAmount(plan.Produced))
}

func TestPlanner_PlanUpdate_DustTopUp(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	remainderMinimum, err := connector.MinimumStorageDeposit(ledgerstate.NewBasicOutput(0, walletAddress))
	require.NoError(t, err)

	current := fundedAliasOutput(t, connector, walletAddress, 2000)
	next := current.NewAliasOutputNext(false)
	next.SetAmount(2000 - remainderMinimum + 1)
	topUp := connector.addBasicOutput(remainderMinimum, walletAddress)

	plan, err := planner.PlanUpdate(current, next)
	require.NoError(t, err)

	// the surplus alone would be dust, so a wallet output tops the remainder up
	require.Len(t, plan.Consumed, 2)
	assert.Contains(t, consumedIDs(plan), topUp.ID())
	assert.EqualValues(t, remainderMinimum-1+topUp.Amount(), remainderAmount(plan.Produced))
	assert.EqualValues(t, plan.Consumed.TotalAmount(), plan.Produced.TotalAmount())
}

func TestPlanner_PlanUpdate_NoWalletTouch(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	current := fundedAliasOutput(t, connector, walletAddress, 2000)
	next := current.NewAliasOutputNext(false)

	plan, err := planner.PlanUpdate(current, next)
	require.NoError(t, err)

	// unchanged amount needs neither funding nor remainder
	require.Len(t, plan.Consumed, 1)
	require.Len(t, plan.Produced, 1)
}

func TestPlanner_PlanDestroy(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	destination, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	current := fundedAliasOutput(t, connector, walletAddress, 2000)

	plan, err := planner.PlanDestroy(current, destination)
	require.NoError(t, err)
	require.Len(t, plan.Consumed, 1)
	require.Len(t, plan.Produced, 1)

	returned, ok := plan.Produced[0].(*ledgerstate.BasicOutput)
	require.True(t, ok)
	assert.True(t, destination.Equals(returned.Address()))
	assert.EqualValues(t, 2000, returned.Amount())
}

func TestPlanner_InsufficientStorageDeposit(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	planner := NewPlanner(connector, walletAddress)

	current := fundedAliasOutput(t, connector, walletAddress, 2000)

	_, err = planner.PlanDestroy(current, walletAddress)
	require.NoError(t, err)

	// a destroyed alias whose deposit cannot carry the destination output must be rejected
	tiny := fundedAliasOutput(t, connector, walletAddress, 0)
	tiny.SetAmount(1)
	_, err = planner.PlanDestroy(tiny, walletAddress)
	assert.True(t, errors.Is(err, ErrInsufficientStorageDeposit))
}

// fundedAliasOutput creates an Alias Output with an assigned identifier, controlled by the given address.
func fundedAliasOutput(t *testing.T, connector *mockConnector, controller ledgerstate.Address, amount uint64) *ledgerstate.AliasOutput {
	t.Helper()

	aliasOutput, err := ledgerstate.NewAliasOutputMint(amount, []byte("document"), controller, controller)
	require.NoError(t, err)

	connector.fundingCounter++
	var transactionID ledgerstate.TransactionID
	transactionID[0] = connector.fundingCounter
	transactionID[1] = 0xaa
	aliasOutput.SetID(ledgerstate.NewOutputID(transactionID, 0))
	aliasOutput.SetAliasID(ledgerstate.AliasIDFromOutputID(aliasOutput.ID()))
	connector.outputs[aliasOutput.ID()] = aliasOutput
	connector.aliasIndex[aliasOutput.AliasID()] = aliasOutput.ID()

	return aliasOutput
}

func consumedIDs(plan *Plan) (outputIDs []ledgerstate.OutputID) {
	for _, output := range plan.Consumed {
		outputIDs = append(outputIDs, output.ID())
	}

	return
}

func remainderAmount(produced ledgerstate.Outputs) uint64 {
	for _, output := range produced {
		if basicOutput, ok := output.(*ledgerstate.BasicOutput); ok {
			return basicOutput.Amount()
		}
	}

	return 0
}
