package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RebalancePlan_Turnover(t *testing.T) {
	plan := RebalancePlan{Actions: []RebalanceAction{
		{Ticker: "AAA", Action: ActionBuy, DeltaPct: 5},
		{Ticker: "BBB", Action: ActionSell, DeltaPct: -3},
		{Ticker: "CCC", Action: ActionReduce, DeltaPct: -2},
	}}
	require.InDelta(t, 5.0, plan.Turnover(), 1e-9)

	require.Zero(t, RebalancePlan{}.Turnover())
}

func Test_RebalancePlan_GroupByAction(t *testing.T) {
	plan := RebalancePlan{Actions: []RebalanceAction{
		{Ticker: "AAA", Action: ActionBuy},
		{Ticker: "BBB", Action: ActionBuy},
		{Ticker: "CCC", Action: ActionSell},
	}}
	groups := plan.GroupByAction()
	require.Len(t, groups[ActionBuy], 2)
	require.Len(t, groups[ActionSell], 1)
	require.NotContains(t, groups, ActionHold)
}

func Test_Portfolio_Position(t *testing.T) {
	portfolio := Portfolio{Positions: []Position{
		{Ticker: "AAA", WeightPct: 60},
		{Ticker: "BBB", WeightPct: 40},
	}}

	require.InDelta(t, 100.0, portfolio.TotalWeightPct(), 1e-9)
	require.Equal(t, []string{"AAA", "BBB"}, portfolio.HeldSymbols())

	pos := portfolio.Position("BBB")
	require.NotNil(t, pos)
	require.InDelta(t, 40.0, pos.WeightPct, 1e-9)
	require.Nil(t, portfolio.Position("ZZZ"))
}
