// internal/report/report_test.go
package report

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/flogmeter/internal/accum"
)

func TestSignedFemto(t *testing.T) {
	huge, _ := new(big.Int).SetString("1234567890123456789", 10)

	cases := []struct {
		in   *big.Int
		want string
	}{
		{big.NewInt(0), "+0.000000000000000"},
		{big.NewInt(24), "+0.000000000000024"},
		{big.NewInt(-168), "-0.000000000000168"},
		{big.NewInt(1_000_000_000_000_000), "+1.000000000000000"},
		{big.NewInt(-2_500_000_000_000_001), "-2.500000000000001"},
		{huge, "+1234.567890123456789"},
		{nil, "+0.000000000000000"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SignedFemto(c.in))
	}

	assert.Equal(t, "0.000000000000024", Femto(big.NewInt(24)))
	assert.Equal(t, "-0.000000000000024", Femto(big.NewInt(-24)))
}

func TestOfflineWriter(t *testing.T) {
	var buf bytes.Buffer
	ow, err := NewOfflineWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, ow.WriteWindow(accum.WindowReport{
		Samples:  8,
		Sub:      8,
		AhTotal:  big.NewInt(24),
		WhTotal:  big.NewInt(168),
		AhWindow: big.NewInt(24),
		WhWindow: big.NewInt(168),
		Last:     accum.Reading{Voltage: 7, Current: 4e-6, Power: 28e-6},
	}))
	require.NoError(t, ow.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, OfflineHeader, lines[0])
	assert.Equal(t,
		"8,8,+0.000000000000024,+0.000000000000168,+0.000000000000024,+0.000000000000168,0.000004,7.000000,0.000028",
		lines[1])
	assert.Equal(t, 1, ow.Rows())
}

func TestLiveWriter(t *testing.T) {
	var buf bytes.Buffer
	lw, err := NewLiveWriter(&buf)
	require.NoError(t, err)
	assert.Equal(t, LiveHeader+"\n", buf.String())

	at := time.Date(2026, time.March, 7, 9, 5, 3, 0, time.UTC)
	require.NoError(t, lw.WriteRow(LiveRow{
		Elapsed: 1500 * time.Millisecond,
		At:      at,
		AhTotal: big.NewInt(24),
		WhTotal: big.NewInt(-168),
		Block:   accum.BlockStats{Samples: 8, VAvg: 7, IAvg: 0.5, WAvg: 3.5},
		Samples: 16,

		EffSampleRate: 249999.5,
	}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"1.50000,2026-03-07 09:05:03,0.000000000000024,-0.000000000000168,"+
			"7.000000000000000,0.500000000000000,3.500000000000000,8,16,249999.500",
		lines[1])
}

func TestDefaultLiveName(t *testing.T) {
	at := time.Date(2020, time.September, 1, 14, 6, 13, 0, time.UTC)
	assert.Equal(t, "RS_NGM20x_Logger_2020_09_01_14_06_13.csv", DefaultLiveName(at))
}
