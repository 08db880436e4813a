package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pairscope/internal/table"
)

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		100:       "100.0",
		1.5:       "1.5",
		0:         "0.0",
		-2:        "-2.0",
		0.0001:    "0.0001",
		0.00001:   "1e-05",
		1e15:      "1000000000000000.0",
		1e16:      "1e+16",
		123456.25: "123456.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatFloat(in), "%v", in)
	}
	assert.Equal(t, "", FormatFloat(math.NaN()))
	assert.Equal(t, "inf", FormatFloat(math.Inf(1)))
}

const sample = "seq,gen_ts_ns,queue_latency_ns,proc0_ns,note\n" +
	"0,1700000000000000001,100,5,a\n" +
	"1,1700000000000001001,,6,\"b,c\"\n" +
	"2,1700000000000002001,300,7,d\n"

func loadSample(t *testing.T, coerce table.Coerce) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader(sample), ',', coerce)
	require.NoError(t, err)
	return tbl
}

func TestEncodeRowsWithIndex(t *testing.T) {
	tbl := loadSample(t, table.CoerceMissing)
	b, err := EncodeRows(tbl, []int{0, 1}, SpikeColumns(tbl), true)
	require.NoError(t, err)
	want := ",seq,gen_ts_ns,queue_latency_ns,proc0_ns\n" +
		"0,0,1700000000000000001,100.0,5\n" +
		"1,1,1700000000000001001,,6\n"
	assert.Equal(t, want, string(b))

	_, err = EncodeRows(tbl, nil, []string{"absent"}, false)
	assert.Error(t, err)
}

func TestWriteSpikesHeaderOnly(t *testing.T) {
	tbl := loadSample(t, table.CoerceMissing)
	path := filepath.Join(t.TempDir(), "out", "run_spikes.csv")
	require.NoError(t, WriteSpikes(path, tbl, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ",seq,gen_ts_ns,queue_latency_ns,proc0_ns\n", string(b))
}

func TestWriteTableIsDeterministic(t *testing.T) {
	tbl := loadSample(t, table.CoerceZero)
	require.NoError(t, tbl.AddText("classification", []string{"none", "queue-driven", "none"}))

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")
	require.NoError(t, WriteTable(a, tbl))
	require.NoError(t, WriteTable(b, tbl))

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimSpace(string(first)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "seq,gen_ts_ns,queue_latency_ns,proc0_ns,note,classification", lines[0])
	// columns that held missing or text cells become float zeros
	assert.Equal(t, "1,1700000000000001001,0.0,6,0.0,queue-driven", lines[2])
	assert.Equal(t, "0,1700000000000000001,100.0,5,0.0,none", lines[1])
}

func TestTopRows(t *testing.T) {
	key := []float64{5, math.NaN(), 9, 5, 1}
	assert.Equal(t, []int{2, 0, 3}, TopRows([]int{0, 1, 2, 3, 4}, key, 3))
	assert.Equal(t, []int{2, 4, 1}, TopRows([]int{1, 4, 2}, key, 10))
	assert.Empty(t, TopRows([]int{0, 2}, key, 0))
}

func TestMaxColumn(t *testing.T) {
	tbl, err := table.FromColumns([]string{"proc0_ns", "proc1_ns"}, [][]float64{{1, 7, math.NaN()}, {3, 2, 4}})
	require.NoError(t, err)
	c := MaxColumn("maxproc", tbl.Column("proc0_ns"), tbl.Column("proc1_ns"))
	assert.Equal(t, []float64{3, 7, 4}, c.Values)
	assert.False(t, c.Integer)
	assert.Equal(t, "4.0", FormatCell(c, 2))
}
