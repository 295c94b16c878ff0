package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

func TestParse(t *testing.T) {
	c, err := currency.Parse("EUR")
	require.NoError(t, err)
	assert.Equal(t, currency.EUR, c)

	_, err = currency.Parse("GBP")
	assert.Error(t, err)

	_, err = currency.Parse("eur")
	assert.Error(t, err)
}

func TestIsForeign(t *testing.T) {
	assert.False(t, currency.PLN.IsForeign())
	assert.True(t, currency.EUR.IsForeign())
	assert.True(t, currency.USD.IsForeign())
	assert.False(t, currency.Code("GBP").IsForeign())
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := currency.All()
	all[0] = "XXX"

	assert.Equal(t, currency.Base, currency.All()[0])
}
