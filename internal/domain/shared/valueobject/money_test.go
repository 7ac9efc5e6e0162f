package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", EUR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := MustMoney(decimal.NewFromInt(10), USD)
		b := MustMoney(decimal.NewFromInt(5), USD)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(15)))
	})

	t.Run("add different currencies fails", func(t *testing.T) {
		a := MustMoney(decimal.NewFromInt(10), USD)
		b := MustMoney(decimal.NewFromInt(5), EUR)
		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("subtract", func(t *testing.T) {
		a := MustMoney(decimal.NewFromInt(10), USD)
		b := MustMoney(decimal.NewFromInt(3), USD)
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(7)))
	})

	t.Run("multiply", func(t *testing.T) {
		m := MustMoney(decimal.NewFromFloat(2.50), USD)
		result := m.Multiply(decimal.NewFromInt(4))
		assert.True(t, result.Amount().Equal(decimal.NewFromInt(10)))
	})

	t.Run("divide", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(10), USD)
		result, err := m.Divide(decimal.NewFromInt(4))
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("divide by zero fails", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(10), USD)
		_, err := m.Divide(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("negate", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(10), USD)
		assert.True(t, m.Negate().Amount().Equal(decimal.NewFromInt(-10)))
	})
}

func TestMoneyRounding(t *testing.T) {
	t.Run("rounds half away from zero to money precision", func(t *testing.T) {
		m := MustMoney(decimal.RequireFromString("1.005"), USD)
		assert.Equal(t, "1.01", m.Rounded().Amount().StringFixed(2))

		n := MustMoney(decimal.RequireFromString("-1.005"), USD)
		assert.Equal(t, "-1.01", n.Rounded().Amount().StringFixed(2))
	})

	t.Run("rounding is idempotent", func(t *testing.T) {
		m := MustMoney(decimal.RequireFromString("3.14159"), USD)
		once := m.Rounded()
		twice := once.Rounded()
		assert.True(t, once.Equals(twice))
	})
}

func TestMoneyComparisons(t *testing.T) {
	a := MustMoney(decimal.NewFromInt(5), USD)
	b := MustMoney(decimal.NewFromInt(10), USD)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, greater)

	_, err = a.LessThan(MustMoney(decimal.NewFromInt(1), EUR))
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(12.34), EUR)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestExchange(t *testing.T) {
	rates := NewRateTable(map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("1.08"),
	})

	t.Run("converts using the target currency rate", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(100), EUR)
		converted, err := Exchange(m, USD, rates)
		require.NoError(t, err)
		assert.Equal(t, USD, converted.Currency())
		assert.True(t, converted.Amount().Equal(decimal.NewFromInt(108)))
	})

	t.Run("same currency is the identity", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(100), EUR)
		converted, err := Exchange(m, EUR, RateTable{})
		require.NoError(t, err)
		assert.True(t, m.Equals(converted))
	})

	t.Run("missing rate fails", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(100), EUR)
		_, err := Exchange(m, GBP, rates)
		require.Error(t, err)
		var exchangeErr *ExchangeError
		assert.ErrorAs(t, err, &exchangeErr)
		assert.Equal(t, GBP, exchangeErr.To)
	})
}
