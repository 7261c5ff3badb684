package risk

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/width"
)

// ErrMissingNameColumn indicates the risk source text carries no
// recognizable name column. Construction fails and callers must fall
// back to generic risk only.
var ErrMissingNameColumn = eris.New("risk: missing name column")

// DefaultGuidance is used when a row carries no description and as the
// generic fallback guidance.
const DefaultGuidance = "continue standard precautions"

// Record is one terrain risk entry, keyed by landform name. Built once at
// table construction, immutable afterward.
type Record struct {
	Name        string
	Evaluation  string
	Severity    Severity
	Description string
	Label       string
}

// Table is the terrain-name-indexed risk lookup.
type Table struct {
	records map[string]Record
}

// Header synonym sets. Compared after normalization, so width variants
// and stray whitespace in the source header do not matter.
var (
	nameAliases  = []string{"name", "terrain", "terrain_name", "地形", "地形名", "名称"}
	evalAliases  = []string{"evaluation", "risklevel", "評価", "レベル"}
	descAliases  = []string{"description", "desc", "note", "説明", "備考", "コメント"}
	labelAliases = []string{"risk", "risk_label", "危険度ラベル", "ラベル"}
)

// NewTable parses row-oriented delimited text into a Table. The delimiter
// is tab if the header row contains one, comma otherwise. Rows with an
// empty name cell are skipped.
func NewTable(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\uFEFF")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, eris.Wrap(ErrMissingNameColumn, "empty source")
	}

	sep := ","
	if strings.Contains(lines[0], "\t") {
		sep = "\t"
	}

	headers := splitRow(lines[0], sep)
	iName := headerIndex(headers, nameAliases)
	iEval := headerIndex(headers, evalAliases)
	iDesc := headerIndex(headers, descAliases)
	iLabel := headerIndex(headers, labelAliases)

	if iName < 0 {
		return nil, eris.Wrapf(ErrMissingNameColumn, "header %q", lines[0])
	}

	records := make(map[string]Record)
	for _, line := range lines[1:] {
		cols := splitRow(line, sep)
		name := cell(cols, iName)
		if name == "" {
			continue
		}

		eval := cell(cols, iEval)
		if eval == "" {
			eval = "不明"
		}
		desc := cell(cols, iDesc)
		if desc == "" {
			desc = DefaultGuidance
		}
		label := cell(cols, iLabel)
		if label == "" {
			label = "disaster risk"
		}

		records[recordKey(name)] = Record{
			Name:        name,
			Evaluation:  eval,
			Severity:    ParseSeverity(eval),
			Description: desc,
			Label:       label,
		}
	}

	zap.L().Debug("risk: table loaded", zap.Int("records", len(records)))
	return &Table{records: records}, nil
}

// Lookup returns the record for a landform name. A missing key is not an
// error; the caller treats it as "no record".
func (t *Table) Lookup(name string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	r, ok := t.records[recordKey(name)]
	return r, ok
}

// Len returns the number of valid records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// splitRow splits a line and strips surrounding quotes and whitespace
// from each cell. The source is plain delimited text, not RFC 4180 CSV;
// cells never embed the delimiter.
func splitRow(line, sep string) []string {
	cols := strings.Split(line, sep)
	for i, c := range cols {
		c = strings.TrimSpace(c)
		c = strings.Trim(c, `"`)
		cols[i] = c
	}
	return cols
}

// headerIndex returns the index of the first header matching any alias,
// or -1.
func headerIndex(headers []string, aliases []string) int {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeHeader(h)
	}
	for _, a := range aliases {
		want := normalizeHeader(a)
		for i, h := range norm {
			if h == want {
				return i
			}
		}
	}
	return -1
}

// normalizeHeader lowercases, strips all whitespace and folds width
// variants so full-width headers compare equal to their ASCII aliases.
func normalizeHeader(s string) string {
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), "")
}

// recordKey normalizes a landform name into the table key.
func recordKey(name string) string {
	return strings.TrimSpace(name)
}

func cell(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return cols[i]
}
