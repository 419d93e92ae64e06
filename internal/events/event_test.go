package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenhost/internal/currency"
	"tokenhost/internal/membership"
	"tokenhost/pkg/domain"
)

func TestFromEffect(t *testing.T) {
	t.Run("transfer emits move then both balances", func(t *testing.T) {
		effect := currency.Effect{
			Move: currency.Move{From: "alice", To: "bob", Qty: 30},
			Balances: []currency.BalanceFact{
				{Account: "alice", NewBalance: 70},
				{Account: "bob", NewBalance: 30},
			},
		}

		evs := FromEffect(effect)
		require.Len(t, evs, 3)
		assert.Equal(t, KindTokenMoved, evs[0].Kind)
		assert.Equal(t, KindBalanceChanged, evs[1].Kind)
		assert.Equal(t, KindBalanceChanged, evs[2].Kind)

		moved := evs[0].Payload.(TokenMovedPayload)
		assert.Equal(t, "alice", moved.From)
		assert.Equal(t, "bob", moved.To)

		debit := evs[1].Payload.(BalanceChangedPayload)
		assert.Equal(t, "alice", debit.Account)
		assert.EqualValues(t, 70, debit.NewBalance)
	})

	t.Run("mint emits move then supply then balance", func(t *testing.T) {
		effect := currency.Effect{
			Move:           currency.Move{To: "alice", Qty: 100},
			SupplyChanged:  true,
			NewTotalSupply: 100,
			Balances:       []currency.BalanceFact{{Account: "alice", NewBalance: 100}},
		}

		evs := FromEffect(effect)
		require.Len(t, evs, 3)
		assert.Equal(t, KindTokenMoved, evs[0].Kind)
		assert.Equal(t, KindSupplyChanged, evs[1].Kind)
		assert.Equal(t, KindBalanceChanged, evs[2].Kind)
	})

	t.Run("move topics omit the absent side", func(t *testing.T) {
		effect := currency.Effect{
			Move:          currency.Move{To: "alice", Qty: 100},
			SupplyChanged: true,
		}

		evs := FromEffect(effect)
		require.NotEmpty(t, evs)
		require.Len(t, evs[0].Topics, 1)
		assert.Equal(t, "to", evs[0].Topics[0].Name)
		assert.Equal(t, "alice", evs[0].Topics[0].Value)
	})
}

func TestFromChange(t *testing.T) {
	t.Run("issue emits only the status change", func(t *testing.T) {
		evs := FromChange(membership.Change{Account: "carol", NewStatus: membership.StatusIssued})
		require.Len(t, evs, 1)
		assert.Equal(t, KindStatusChanged, evs[0].Kind)
	})

	t.Run("accept emits status then voting power balance", func(t *testing.T) {
		power := uint64(1)
		evs := FromChange(membership.Change{
			Account:     "carol",
			NewStatus:   membership.StatusAccepted,
			VotingPower: &power,
		})
		require.Len(t, evs, 2)
		assert.Equal(t, KindStatusChanged, evs[0].Kind)
		assert.Equal(t, KindBalanceChanged, evs[1].Kind)

		balance := evs[1].Payload.(BalanceChangedPayload)
		assert.EqualValues(t, 1, balance.NewBalance)
	})
}

func TestKindValid(t *testing.T) {
	for _, kind := range Kinds {
		assert.True(t, kind.Valid(), string(kind))
	}
	assert.False(t, Kind("token.exploded").Valid())
}

func TestRoleChanged(t *testing.T) {
	event := RoleChanged("mint", []domain.Account{"admin"}, []domain.Account{"eve"})

	assert.Equal(t, KindRoleChanged, event.Kind)
	payload := event.Payload.(RoleChangedPayload)
	assert.Equal(t, []string{"admin"}, payload.OldAccounts)
	assert.Equal(t, []string{"eve"}, payload.NewAccounts)
}
