package risk

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_CommaDelimited(t *testing.T) {
	src := "name,evaluation,description\n" +
		"扇状地,中,河川氾濫時に浸水の可能性があります\n" +
		"山地斜面,高,土砂災害警戒区域を確認してください\n" +
		"台地･段丘,低,比較的安定した地形です\n"

	table, err := NewTable(src)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	rec, ok := table.Lookup("扇状地")
	require.True(t, ok)
	assert.Equal(t, "中", rec.Evaluation)
	assert.Equal(t, SeverityMedium, rec.Severity)
	assert.Equal(t, "河川氾濫時に浸水の可能性があります", rec.Description)

	rec, ok = table.Lookup("山地斜面")
	require.True(t, ok)
	assert.Equal(t, SeverityHigh, rec.Severity)

	_, ok = table.Lookup("砂丘")
	assert.False(t, ok)
}

func TestNewTable_TabDelimited(t *testing.T) {
	src := "地形名\t評価\t説明\n" +
		"自然堤防\t低\t周囲よりわずかに高い土地です\n"

	table, err := NewTable(src)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	rec, ok := table.Lookup("自然堤防")
	require.True(t, ok)
	assert.Equal(t, SeverityLow, rec.Severity)
}

func TestNewTable_HeaderAliasesAndBOM(t *testing.T) {
	// BOM, mixed-case alias, stray spaces in the header.
	src := "\uFEFFTerrain_Name, RiskLevel , Note\n" +
		"旧河道,高,浸水しやすい土地です\n"

	table, err := NewTable(src)
	require.NoError(t, err)

	rec, ok := table.Lookup("旧河道")
	require.True(t, ok)
	assert.Equal(t, SeverityHigh, rec.Severity)
	assert.Equal(t, "浸水しやすい土地です", rec.Description)
}

func TestNewTable_MissingNameColumn(t *testing.T) {
	_, err := NewTable("foo,bar,baz\n1,2,3\n")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingNameColumn))

	_, err = NewTable("")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingNameColumn))
}

func TestNewTable_SkipsBlankNames(t *testing.T) {
	src := "name,evaluation\n" +
		"扇状地,中\n" +
		",高\n" +
		"   ,低\n" +
		"砂丘,低\n"

	table, err := NewTable(src)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestNewTable_QuoteTrimAndDefaults(t *testing.T) {
	src := "name,evaluation,description,risk\n" +
		`"後背低地","高","","水はけが悪い土地"` + "\n" +
		"砂州・砂丘,,,\n"

	table, err := NewTable(src)
	require.NoError(t, err)

	rec, ok := table.Lookup("後背低地")
	require.True(t, ok)
	assert.Equal(t, SeverityHigh, rec.Severity)
	assert.Equal(t, DefaultGuidance, rec.Description)
	assert.Equal(t, "水はけが悪い土地", rec.Label)

	rec, ok = table.Lookup("砂州・砂丘")
	require.True(t, ok)
	assert.Equal(t, SeverityUnknown, rec.Severity)
	assert.Equal(t, "不明", rec.Evaluation)
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("扇状地")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"高", SeverityHigh},
		{"中", SeverityMedium},
		{"低", SeverityLow},
		{"high", SeverityHigh},
		{"Medium", SeverityMedium},
		{" low ", SeverityLow},
		{"不明", SeverityUnknown},
		{"", SeverityUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSeverity(tt.in), "input %q", tt.in)
	}
}
