/*
sheetrow.go - Rendering a checklist to the legacy sheet layout

The downstream sheet keeps one column per checklist item holding a mark
("X" checked, "B" broken, "X B" both) and a sibling "<item> Comments"
column. The codec is configured with the ordered item names so the header
and rows line up regardless of which items a deployment inspects.
*/
package inspection

import (
	"strings"
	"time"
)

// RowCodec renders validated entries to ordered cells under a fixed header.
type RowCodec struct {
	Items []string // column order for checklist items
}

// Header returns the sheet header row: fixed fields first, then a mark and
// comments column per item.
func (c RowCodec) Header() []string {
	header := []string{"DateTime", "FormDate", "Employee Name", "Subject", "Operation"}
	for _, item := range c.Items {
		header = append(header, item, item+" Comments")
	}
	return header
}

// Row renders one entry. Items the entry doesn't carry render as empty
// cells so columns stay aligned.
func (c RowCodec) Row(e Entry) []string {
	row := []string{
		e.SubmittedAt.Format("2006-01-02 15:04:05"),
		e.Submission.Date.Format(time.DateOnly),
		e.Submission.Operator,
		e.Submission.Subject,
		e.Submission.OperationHours.String(),
	}

	byName := make(map[string]Item, len(e.Submission.Items))
	for _, item := range e.Submission.Items {
		byName[strings.TrimSpace(item.Name)] = item
	}
	for _, name := range c.Items {
		item := byName[name]
		row = append(row, mark(item), item.Comment)
	}
	return row
}

// mark is the legacy cell encoding: "X", "B", "X B", or "".
func mark(item Item) string {
	parts := make([]string, 0, 2)
	if item.Checked {
		parts = append(parts, "X")
	}
	if item.Broken {
		parts = append(parts, "B")
	}
	return strings.Join(parts, " ")
}
