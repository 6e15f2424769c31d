package gsheet

import (
	"strconv"
	"strings"
)

// ColumnName returns the A1 letters of a 1-based column index.
func ColumnName(col int) string {
	if col < 1 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append(b, byte('A'+col%26))
		col /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Cell addresses a single 1-based cell on a tab, e.g. 'Prices'!A501.
func Cell(tab string, row, col int) string {
	return prefix(tab) + ColumnName(col) + strconv.Itoa(row)
}

// Block addresses rows fromRow.. (open-ended) across columns fromCol..toCol.
func Block(tab string, fromRow, fromCol, toCol int) string {
	return prefix(tab) + ColumnName(fromCol) + strconv.Itoa(fromRow) + ":" + ColumnName(toCol)
}

// DefaultTab is the first tab of a new spreadsheet.
const DefaultTab = "Sheet1"

// Tab addresses every used cell of a tab.
func Tab(tab string) string {
	if tab == "" {
		tab = DefaultTab
	}
	return quote(tab)
}

func prefix(tab string) string {
	if tab == "" {
		return ""
	}
	return quote(tab) + "!"
}

func quote(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
