package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		value   float64
		wantErr bool
	}{
		"zero":     {value: 0},
		"integer":  {value: 2500},
		"cents":    {value: 104.76},
		"negative": {value: -1, wantErr: true},
		"nan":      {value: math.NaN(), wantErr: true},
		"inf":      {value: math.Inf(1), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := New(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMoney)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, m.Float64())
		})
	}
}

func TestAddSubtractRoundTrip(t *testing.T) {
	pairs := [][2]float64{{0, 0}, {2500, 1000}, {10.1, 0.2}, {0.3, 1234.56}, {99999.99, 0.01}}

	for _, p := range pairs {
		a, b := MustNew(p[0]), MustNew(p[1])
		back, err := a.Add(b).Subtract(b)
		require.NoError(t, err)
		assert.True(t, back.Equals(a), "%v + %v - %v != %v", a, b, b, a)
	}
}

func TestSubtractNegativeResult(t *testing.T) {
	_, err := MustNew(500).Subtract(MustNew(1000))
	require.ErrorIs(t, err, ErrNegativeResult)
}

func TestMultiply(t *testing.T) {
	m, err := MustNew(2500).Multiply(3)
	require.NoError(t, err)
	assert.True(t, m.Equals(MustNew(7500)))

	_, err = MustNew(2500).Multiply(-1)
	require.ErrorIs(t, err, ErrInvalidFactor)

	_, err = MustNew(2500).Multiply(math.NaN())
	require.ErrorIs(t, err, ErrInvalidFactor)
}

func TestComparisons(t *testing.T) {
	a := MustNew(100)
	b := MustNew(100.004)

	assert.True(t, a.Equals(b))
	assert.True(t, a.Equals(MustNew(100.01)))
	assert.False(t, a.Equals(MustNew(100.02)))
	assert.True(t, MustNew(101).IsGreaterThan(a))
	assert.True(t, a.IsLessThan(MustNew(101)))
	assert.True(t, Zero().IsZero())
	assert.False(t, a.IsZero())
}

func TestRound(t *testing.T) {
	assert.Equal(t, "10.13", MustNew(10.125).Round().String())
	assert.Equal(t, "10.12", MustNew(10.124).Round().String())
	assert.Equal(t, "8600", MustNew(8600).Round().String())
}

func TestSum(t *testing.T) {
	total := Sum(MustNew(7500), MustNew(3200), Zero())
	assert.True(t, total.Equals(MustNew(10700)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", MustNew(1234.5).Format("USD", "en-US"))
	assert.Contains(t, MustNew(10476).Format("CLP", "es-CL"), "10.476")
	assert.Contains(t, MustNew(10476).Format("XYZ", "en"), "XYZ ")
}

func TestJSON(t *testing.T) {
	var v struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":2500.5}`), &v))
	assert.Equal(t, "2500.5", v.Price.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":2500.5}`, string(out))

	err = json.Unmarshal([]byte(`{"price":-3}`), &v)
	require.ErrorIs(t, err, ErrInvalidMoney)
}

func TestParseAndScan(t *testing.T) {
	m, err := Parse(" 104.76 ")
	require.NoError(t, err)
	assert.Equal(t, 104.76, m.Float64())

	_, err = Parse("abc")
	require.ErrorIs(t, err, ErrInvalidMoney)

	var scanned Money
	require.NoError(t, scanned.Scan([]byte("8600.00")))
	assert.True(t, scanned.Equals(MustNew(8600)))
	require.Error(t, scanned.Scan("-1"))
}
