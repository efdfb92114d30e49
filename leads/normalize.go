package leads

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"lead-import-export/common"
	"lead-import-export/parsers"
)

// NamePlaceholder is substituted when the legacy sheet has no name
const NamePlaceholder = "Nome não informado"

// budgetAffirmative is the only raw value that means "budget was sent"
const budgetAffirmative = "Sim"

// Lookup tables are case-sensitive exact matches over the raw values that
// occur in the legacy sheets. Anything else falls through to the documented
// default for that field.
var sourceTable = map[string]string{
	"Indicação":        SourceReferral,
	"Orgânico":         SourceOrganic,
	"Perfil":           SourceOrganic,
	"Anúncio":          SourceAd,
	"Anúncio Promoção": SourceAd,
	"Cliente Antigo":   SourceReturning,
}

var outcomeTable = map[string]string{
	"Venda":                  OutcomeSale,
	"Orçamento em Andamento": OutcomeQuote,
	"Em Orçamento":           OutcomeQuote,
	"Não Venda":              OutcomeNoSale,
	"Sem Venda":              OutcomeNoSale,
}

var qualityTable = map[string]string{
	"Bom":     QualityGood,
	"Regular": QualityRegular,
	"Ruim":    QualityPoor,
}

// NormalizeDate converts a DD/MM value into an ISO YYYY-MM-DD string using
// the supplied assumed year. The legacy sheets carry no year column, so the
// caller decides which year the dataset belongs to.
// Empty and malformed input both yield nil; malformed input is never turned
// into a best-effort string.
func NormalizeDate(raw string, year int) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil
	}

	day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errD != nil || errM != nil {
		return nil
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return nil
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &iso
}

// NormalizeAmount parses locale-formatted currency text ("R$ 1.234,56").
// Comma is the decimal separator; a dot preceding a group of exactly three
// digits is a thousands separator. Currency symbols and whitespace are
// stripped. Empty or non-numeric input yields nil.
func NormalizeAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Keep digits, separators and sign; drops "R$" and stray spaces
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := dropThousandsSeparators(b.String())
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// dropThousandsSeparators removes each '.' that precedes a group of exactly
// three digits, so "1.234,56" loses its grouping dot while "1.2" keeps its
// decimal point.
func dropThousandsSeparators(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] == '.' && isThousandsGroup(runes, i+1) {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func isThousandsGroup(runes []rune, start int) bool {
	for j := 0; j < 3; j++ {
		if start+j >= len(runes) || !unicode.IsDigit(runes[start+j]) {
			return false
		}
	}
	// A fourth digit means the dot was not grouping anything
	if start+3 < len(runes) && unicode.IsDigit(runes[start+3]) {
		return false
	}
	return true
}

// NormalizeSource maps a raw source label to its canonical value.
// The second return reports whether the default bucket was used for
// non-empty input the table does not know.
func NormalizeSource(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if v, ok := sourceTable[s]; ok {
		return v, false
	}
	return SourceAd, s != ""
}

// NormalizeOutcome maps a raw outcome label to its canonical value,
// defaulting to OutcomeQuote for empty or unrecognized input.
func NormalizeOutcome(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if v, ok := outcomeTable[s]; ok {
		return v, false
	}
	return OutcomeQuote, s != ""
}

// NormalizeQuality maps a raw quality label to its canonical value, or nil
// when the input is blank or unrecognized.
func NormalizeQuality(raw string) (*string, bool) {
	s := strings.TrimSpace(raw)
	if v, ok := qualityTable[s]; ok {
		return &v, false
	}
	return nil, s != ""
}

// NormalizeBudgetSent is true only for the exact affirmative token
func NormalizeBudgetSent(raw string) bool {
	return strings.TrimSpace(raw) == budgetAffirmative
}

// MapResult carries a normalized lead plus what was defaulted or dropped
// while normalizing it
type MapResult struct {
	Lead            LeadModel
	DefaultedFields int
	Issues          []common.RowIssue
}

// MapRow builds a canonical lead from one raw sheet row. Pure and
// deterministic: same row, owner and year always produce the same lead.
func MapRow(row parsers.RawRow, ownerID string, year int) MapResult {
	res := MapResult{}

	name := strings.TrimSpace(row.Name)
	if name == "" {
		name = NamePlaceholder
	}

	contactDate := NormalizeDate(row.ContactDate, year)
	if contactDate == nil && strings.TrimSpace(row.ContactDate) != "" {
		res.Issues = append(res.Issues, common.RowIssue{
			RowNumber: row.LineNumber,
			Field:     "contact_date",
			Message:   fmt.Sprintf("unparseable date %q dropped", row.ContactDate),
		})
	}

	source, defaulted := NormalizeSource(row.Source)
	if defaulted {
		res.DefaultedFields++
		res.Issues = append(res.Issues, common.RowIssue{
			RowNumber: row.LineNumber,
			Field:     "source",
			Message:   fmt.Sprintf("unrecognized source %q bucketed as %s", row.Source, source),
		})
	}

	outcome, defaulted := NormalizeOutcome(row.Outcome)
	if defaulted {
		res.DefaultedFields++
		res.Issues = append(res.Issues, common.RowIssue{
			RowNumber: row.LineNumber,
			Field:     "outcome",
			Message:   fmt.Sprintf("unrecognized outcome %q bucketed as %s", row.Outcome, outcome),
		})
	}

	quality, defaulted := NormalizeQuality(row.ContactQuality)
	if defaulted {
		res.DefaultedFields++
		res.Issues = append(res.Issues, common.RowIssue{
			RowNumber: row.LineNumber,
			Field:     "contact_quality",
			Message:   fmt.Sprintf("unrecognized quality %q dropped", row.ContactQuality),
		})
	}

	res.Lead = LeadModel{
		OwnerID:        ownerID,
		ContactDate:    contactDate,
		Name:           name,
		ContactHandle:  optional(row.ContactHandle),
		Source:         source,
		BudgetSent:     NormalizeBudgetSent(row.BudgetSent),
		Outcome:        outcome,
		ContactQuality: quality,
		ClosedValue:    NormalizeAmount(row.ClosedValue),
		Note:           optional(row.Note),
	}

	return res
}

// optional returns nil for blank text so it persists as NULL
func optional(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}
