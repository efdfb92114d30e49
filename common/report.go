package common

import "encoding/json"

// RowIssue records a non-fatal problem found while normalizing one field
// of an imported row (a malformed date, an unrecognized category, ...).
// Issues never abort the import; they are surfaced on the job for auditing.
type RowIssue struct {
	RowNumber int    `json:"row_number"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// RowReport accumulates issues across an import run
type RowReport struct {
	Issues []RowIssue `json:"issues,omitempty"`
}

// Add appends an issue for the given row and field
func (r *RowReport) Add(rowNum int, field, message string) {
	r.Issues = append(r.Issues, RowIssue{
		RowNumber: rowNum,
		Field:     field,
		Message:   message,
	})
}

// ToJSON converts the accumulated issues to a JSON string, or "" when empty
func (r *RowReport) ToJSON() string {
	if len(r.Issues) == 0 {
		return ""
	}
	data, _ := json.Marshal(r.Issues)
	return string(data)
}
