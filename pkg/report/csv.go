package report

import (
	"bytes"
	"strings"
)

// Encode renders a collection as CSV: the family header, then one line per
// record in insertion order, each stamped with runID. Lines are separated by
// '\n' with no trailing newline. Columns missing from a record render as
// NullValue. Values are joined verbatim with Separator.
func Encode(c *Collection, runID string) []byte {
	var buf bytes.Buffer
	buf.WriteString(c.Family.Header())

	vals := make([]string, len(c.Family.Columns)+1)
	for _, r := range c.Records {
		for i, col := range c.Family.Columns {
			v, ok := r[col]
			if !ok {
				v = NullValue
			}
			vals[i] = v
		}
		vals[len(vals)-1] = runID
		buf.WriteByte('\n')
		buf.WriteString(strings.Join(vals, Separator))
	}
	return buf.Bytes()
}
