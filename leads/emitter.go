package leads

import (
	"strconv"
	"strings"
)

// leadColumns binds column names and value producers as one ordered table.
// The INSERT header and every value tuple are generated from this slice, so
// the column list and the values cannot drift apart.
var leadColumns = []struct {
	name  string
	value func(l LeadModel) string
}{
	{"owner_id", func(l LeadModel) string { return quoteSQL(l.OwnerID) }},
	{"contact_date", func(l LeadModel) string { return quoteSQLPtr(l.ContactDate) }},
	{"name", func(l LeadModel) string { return quoteSQL(l.Name) }},
	{"contact_handle", func(l LeadModel) string { return quoteSQLPtr(l.ContactHandle) }},
	{"source", func(l LeadModel) string { return quoteSQL(l.Source) }},
	{"budget_sent", func(l LeadModel) string { return strconv.FormatBool(l.BudgetSent) }},
	{"outcome", func(l LeadModel) string { return quoteSQL(l.Outcome) }},
	{"contact_quality", func(l LeadModel) string { return quoteSQLPtr(l.ContactQuality) }},
	{"closed_value", func(l LeadModel) string {
		if l.ClosedValue == nil {
			return "NULL"
		}
		return strconv.FormatFloat(*l.ClosedValue, 'f', -1, 64)
	}},
	{"note", func(l LeadModel) string { return quoteSQLPtr(l.Note) }},
}

// EscapeSQL escapes a string literal for the offline insert statements.
// Single quotes are doubled first, then backslashes are doubled; reversing
// the steps would double-escape the quoting.
func EscapeSQL(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return s
}

func quoteSQL(s string) string {
	return "'" + EscapeSQL(s) + "'"
}

func quoteSQLPtr(s *string) string {
	if s == nil {
		return "NULL"
	}
	return quoteSQL(*s)
}

// EmitInsert renders one self-contained bulk insert statement for a batch
func EmitInsert(batch []LeadModel) string {
	if len(batch) == 0 {
		return ""
	}

	names := make([]string, len(leadColumns))
	for i, col := range leadColumns {
		names[i] = col.name
	}

	var b strings.Builder
	b.WriteString("INSERT INTO leads (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES\n")

	for i, lead := range batch {
		values := make([]string, len(leadColumns))
		for j, col := range leadColumns {
			values[j] = col.value(lead)
		}
		b.WriteString("  (")
		b.WriteString(strings.Join(values, ", "))
		b.WriteString(")")
		if i < len(batch)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(";\n")

	return b.String()
}

// EmitVerification renders the row-count check run after an offline import
func EmitVerification(ownerID string) string {
	return "SELECT COUNT(*) FROM leads WHERE owner_id = " + quoteSQL(ownerID) + ";\n"
}
