package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPercentUsed(t *testing.T) {
	assert.Equal(t, int64(0), PercentUsed(d("50"), d("0")))
	assert.Equal(t, int64(0), PercentUsed(d("50"), d("-10")))
	assert.Equal(t, int64(50), PercentUsed(d("50"), d("100")))
	assert.Equal(t, int64(80), PercentUsed(d("240000"), d("300000")))
	assert.Equal(t, int64(33), PercentUsed(d("1"), d("3")))
	assert.Equal(t, int64(107), PercentUsed(d("320000"), d("300000")))
}

func TestFractionalAdditionStaysExact(t *testing.T) {
	sum := decimal.Zero
	for i := 0; i < 3; i++ {
		sum = sum.Add(d("0.1"))
	}

	assert.Equal(t, "0.3", sum.String())
	assert.True(t, sum.Equal(d("0.3")))
}
