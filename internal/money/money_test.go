package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/money"
)

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"5.5862":  "5.59",
		"59.5335": "59.53",
		"0.005":   "0.01",
		"0.004":   "0.00",
		"2.675":   "2.68",
		"-1.005":  "-1.01",
	}
	for in, want := range cases {
		got := money.Round2(money.MustParse(in))
		require.Equal(t, want, got.StringFixed(2), "round %s", in)
	}
}

func TestRound2Idempotent(t *testing.T) {
	d := money.MustParse("55.90").Mul(money.MustParse("1.065"))
	once := money.Round2(d)
	twice := money.Round2(once)
	require.True(t, once.Equal(twice))
	require.Equal(t, "59.53", once.StringFixed(2))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := money.Parse("ten dollars")
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.Parse("  ")
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	d, err := money.Parse(" 10.5 ")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.NewFromFloat(10.5)))
}

func TestFormatAlwaysTwoDigits(t *testing.T) {
	require.Equal(t, "55.90", money.Format(money.MustParse("55.9")))
	require.Equal(t, "0.00", money.Format(decimal.Zero))
	require.Equal(t, "149.08", money.Format(money.MustParse("149.08")))
	require.Equal(t, "3.14", money.Format(money.MustParse("3.14159")))
}

func TestSum(t *testing.T) {
	total := money.Sum(money.MustParse("1.10"), money.MustParse("2.20"), money.MustParse("3.30"))
	require.Equal(t, "6.60", money.Format(total))
	require.True(t, money.Sum().IsZero())
}
