// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"strings"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// valueText renders a decoded value for display. Lists are joined with ", ".
func valueText(v codec.Value) string {
	if list, ok := v.List(); ok {
		return strings.Join(list, ", ")
	}
	return v.String()
}

// attributeRow is one code/value pair in cell order.
type attributeRow struct {
	Code string
	Text string
}

// attributeRows flattens attrs for rendering.
func attributeRows(attrs *codec.Attributes) []attributeRow {
	rows := make([]attributeRow, 0, attrs.Len())
	attrs.Each(func(code string, v codec.Value) error {
		rows = append(rows, attributeRow{Code: code, Text: valueText(v)})
		return nil
	})
	return rows
}
