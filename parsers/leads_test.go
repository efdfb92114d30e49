package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const header = "Data,Nome,Contato,Origem,Orçamento Enviado,Resultado,Qualidade,Valor Fechado,Observação"

func collect(csvData string) ([]RawRow, []error) {
	rows, errs := ParseLeadRows(strings.NewReader(csvData))

	var allRows []RawRow
	for row := range rows {
		allRows = append(allRows, row)
	}

	var allErrors []error
	for err := range errs {
		allErrors = append(allErrors, err)
	}

	return allRows, allErrors
}

func TestParseLeadRows_ValidData(t *testing.T) {
	csvData := header + `
15/03,Maria Souza,@maria,Indicação,Sim,Venda,Bom,"1.234,56",retornar
16/03,João Lima,@joao,Anúncio,Não,Em Orçamento,Regular,,`

	allRows, allErrors := collect(csvData)

	assert.Len(t, allRows, 2, "Should parse 2 rows")
	assert.Len(t, allErrors, 0, "Should have no errors")

	// Verify first row, column by column
	assert.Equal(t, 2, allRows[0].LineNumber)
	assert.Equal(t, "15/03", allRows[0].ContactDate)
	assert.Equal(t, "Maria Souza", allRows[0].Name)
	assert.Equal(t, "@maria", allRows[0].ContactHandle)
	assert.Equal(t, "Indicação", allRows[0].Source)
	assert.Equal(t, "Sim", allRows[0].BudgetSent)
	assert.Equal(t, "Venda", allRows[0].Outcome)
	assert.Equal(t, "Bom", allRows[0].ContactQuality)
	assert.Equal(t, "1.234,56", allRows[0].ClosedValue)
	assert.Equal(t, "retornar", allRows[0].Note)

	// Verify second row
	assert.Equal(t, 3, allRows[1].LineNumber)
	assert.Equal(t, "João Lima", allRows[1].Name)
	assert.Equal(t, "", allRows[1].ClosedValue)
}

func TestParseLeadRows_EmptyFile(t *testing.T) {
	allRows, allErrors := collect("")

	assert.Len(t, allRows, 0, "Should parse 0 rows")
	assert.Len(t, allErrors, 0, "Empty file should not error")
}

func TestParseLeadRows_HeaderOnly(t *testing.T) {
	allRows, allErrors := collect(header + "\n")

	assert.Len(t, allRows, 0)
	assert.Len(t, allErrors, 0)
}

func TestParseLeadRows_SkipsNoiseRows(t *testing.T) {
	csvData := header + `
15/03,Maria Souza,@maria,Indicação,Sim,Venda,Bom,,
,,,,,,,,
,,@orphan,Anúncio,Não,,,,"note without date or name"
16/03,João Lima,,,,,,,`

	allRows, allErrors := collect(csvData)

	// The all-empty row and the date+name-empty row are noise
	assert.Len(t, allRows, 2)
	assert.Len(t, allErrors, 0)
	assert.Equal(t, "Maria Souza", allRows[0].Name)
	assert.Equal(t, "João Lima", allRows[1].Name)
}

func TestParseLeadRows_QuotedFields(t *testing.T) {
	csvData := header + `
15/03,"Souza, Maria",@maria,Indicação,Sim,Venda,Bom,"1.234,56","ligou, vai pensar"`

	allRows, allErrors := collect(csvData)

	assert.Len(t, allRows, 1)
	assert.Len(t, allErrors, 0)
	assert.Equal(t, "Souza, Maria", allRows[0].Name)
	assert.Equal(t, "1.234,56", allRows[0].ClosedValue)
	assert.Equal(t, "ligou, vai pensar", allRows[0].Note)
}

func TestParseLeadRows_EscapedQuoteInQuotedField(t *testing.T) {
	csvData := header + `
15/03,"Maria ""Mari"" Souza",@maria,Indicação,Sim,Venda,Bom,,`

	allRows, allErrors := collect(csvData)

	assert.Len(t, allRows, 1)
	assert.Len(t, allErrors, 0)
	assert.Equal(t, `Maria "Mari" Souza`, allRows[0].Name)
}

func TestParseLeadRows_MissingTrailingColumns(t *testing.T) {
	csvData := header + `
15/03,Maria Souza,@maria`

	allRows, allErrors := collect(csvData)

	assert.Len(t, allRows, 1)
	assert.Len(t, allErrors, 0)
	assert.Equal(t, "@maria", allRows[0].ContactHandle)
	assert.Equal(t, "", allRows[0].Note, "Missing column should be empty string")
}

func TestParseLeadRows_MalformedLineSkipped(t *testing.T) {
	csvData := header + `
15/03,Maria Souza,@maria,Indicação,Sim,Venda,Bom,,
16/03,"unterminated quote,@joao,Anúncio,Não,,,,`

	rows, errs := ParseLeadRows(strings.NewReader(csvData))

	var allRows []RawRow
	go func() {
		for range errs {
		}
	}()
	for row := range rows {
		allRows = append(allRows, row)
	}

	assert.Len(t, allRows, 1, "Malformed line is skipped, valid one kept")
}
