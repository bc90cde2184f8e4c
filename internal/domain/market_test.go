package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarket_Pools(t *testing.T) {
	m := Market{YesPool: 700, NoPool: 300}

	winning, losing := m.Pools(true)
	assert.Equal(t, uint64(700), winning)
	assert.Equal(t, uint64(300), losing)

	winning, losing = m.Pools(false)
	assert.Equal(t, uint64(300), winning)
	assert.Equal(t, uint64(700), losing)
}

func TestMarket_Resolved(t *testing.T) {
	m := Market{Status: MarketStatusActive}
	assert.False(t, m.Resolved())

	m.Status = MarketStatusResolved
	assert.True(t, m.Resolved())
}

func TestOracleBinding_Enabled(t *testing.T) {
	assert.False(t, OracleBinding{}.Enabled())
	assert.True(t, OracleBinding{Authority: "0xoracle"}.Enabled())
}
