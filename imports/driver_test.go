package imports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lead-import-export/leads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory LeadStore with optional failure injection
type fakeStore struct {
	stored      []leads.LeadModel
	createCalls int
	failOnCall  int // fail the Nth CreateBatch call; 0 = never
}

func (f *fakeStore) CountByOwner(ownerID string) (int64, error) {
	var n int64
	for _, l := range f.stored {
		if l.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateBatch(batch []leads.LeadModel) error {
	f.createCalls++
	if f.failOnCall != 0 && f.createCalls == f.failOnCall {
		return errors.New("db unavailable")
	}
	f.stored = append(f.stored, batch...)
	return nil
}

func (f *fakeStore) ExistingHandles(ownerID string, candidates []string) ([]string, error) {
	wanted := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		wanted[c] = true
	}
	var out []string
	for _, l := range f.stored {
		if l.OwnerID == ownerID && l.ContactHandle != nil && wanted[*l.ContactHandle] {
			out = append(out, *l.ContactHandle)
		}
	}
	return out, nil
}

// leadCSV renders a header plus n well-formed data rows with distinct handles
func leadCSV(n int) string {
	var b strings.Builder
	b.WriteString("Data,Nome,Contato,Origem,Orçamento Enviado,Resultado,Qualidade,Valor Fechado,Observação\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%02d/03,Lead %02d,@lead%02d,Indicação,Sim,Venda,Bom,\"1.234,56\",\n", i, i, i)
	}
	return b.String()
}

func TestDriver_Run_EndToEnd(t *testing.T) {
	store := &fakeStore{}
	driver := NewDriver(store, 5, 2024)

	res := driver.Run("owner-1", strings.NewReader(leadCSV(11)))

	require.NoError(t, res.Err)
	assert.Equal(t, 11, res.TotalRows)
	assert.Equal(t, 3, res.BatchesPlanned)
	assert.Equal(t, 3, res.BatchesCommitted)
	assert.Equal(t, 11, res.Created)
	assert.Equal(t, 0, res.SkippedDuplicates)
	assert.Len(t, store.stored, 11)
}

func TestDriver_Run_FailFastThenResume(t *testing.T) {
	store := &fakeStore{failOnCall: 2}
	driver := NewDriver(store, 5, 2024)

	res := driver.Run("owner-1", strings.NewReader(leadCSV(11)))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "batch 2")
	assert.Equal(t, 1, res.BatchesCommitted, "halts after the failing batch")
	assert.Equal(t, 5, res.Created)
	assert.Len(t, store.stored, 5, "committed batch stays committed")

	// Rerun against the same store: the resume cursor covers rows 1-5
	store.failOnCall = 0
	rerun := NewDriver(store, 5, 2024)
	res2 := rerun.Run("owner-1", strings.NewReader(leadCSV(11)))

	require.NoError(t, res2.Err)
	assert.Equal(t, 2, res2.BatchesPlanned)
	assert.Equal(t, 6, res2.Created)
	assert.Equal(t, 0, res2.SkippedDuplicates)
	assert.Len(t, store.stored, 11)

	// No row repeated or skipped
	seen := make(map[string]int)
	for _, l := range store.stored {
		seen[l.Name]++
	}
	for i := 1; i <= 11; i++ {
		assert.Equal(t, 1, seen[fmt.Sprintf("Lead %02d", i)])
	}
}

func TestDriver_Run_SkipsExistingHandles(t *testing.T) {
	maria := "@maria"
	store := &fakeStore{stored: []leads.LeadModel{
		{OwnerID: "owner-1", Name: "Maria", ContactHandle: &maria},
	}}
	driver := NewDriver(store, 50, 2024)

	// The persisted lead moves the resume cursor to 1, so the first input
	// row is skipped by planning. The second row repeats @maria and is
	// dropped as a duplicate; only @joao is created.
	csvData := "Data,Nome,Contato,Origem,Orçamento Enviado,Resultado,Qualidade,Valor Fechado,Observação\n" +
		"01/03,Maria,@maria,Indicação,Sim,Venda,Bom,,\n" +
		"05/03,Maria de novo,@maria,Anúncio,Não,Em Orçamento,,,\n" +
		"06/03,João,@joao,Indicação,Sim,Venda,Bom,,\n"

	res := driver.Run("owner-1", strings.NewReader(csvData))

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.SkippedDuplicates)
	assert.Len(t, store.stored, 2)
	assert.Equal(t, "João", store.stored[1].Name)
}

func TestDriver_Run_OtherOwnersHandleIsNotADuplicate(t *testing.T) {
	maria := "@maria"
	store := &fakeStore{stored: []leads.LeadModel{
		{OwnerID: "someone-else", Name: "Maria", ContactHandle: &maria},
	}}
	driver := NewDriver(store, 50, 2024)

	csvData := "Data,Nome,Contato,Origem,Orçamento Enviado,Resultado,Qualidade,Valor Fechado,Observação\n" +
		"01/03,Maria,@maria,Indicação,Sim,Venda,Bom,,\n" +
		"02/03,João,@joao,Indicação,Sim,Venda,Bom,,\n"

	res := driver.Run("owner-1", strings.NewReader(csvData))

	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.SkippedDuplicates)
}

func TestDriver_Run_CountsDefaultedFields(t *testing.T) {
	store := &fakeStore{}
	driver := NewDriver(store, 50, 2024)

	csvData := "Data,Nome,Contato,Origem,Orçamento Enviado,Resultado,Qualidade,Valor Fechado,Observação\n" +
		"01/03,Maria,@maria,Panfleto,Sim,Venda,Bom,,\n"

	res := driver.Run("owner-1", strings.NewReader(csvData))
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.DefaultedFields)
	assert.Len(t, res.Report.Issues, 1)
	assert.Equal(t, "source", res.Report.Issues[0].Field)
}

func TestDriver_Export_WritesArtifacts(t *testing.T) {
	store := &fakeStore{}
	driver := NewDriver(store, 5, 2024)
	outDir := filepath.Join(t.TempDir(), "artifacts")

	res := driver.Export("owner-1", strings.NewReader(leadCSV(11)), outDir, "Planilha Legada 2024")

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.BatchesPlanned)
	assert.Equal(t, 3, res.BatchesCommitted)
	assert.Len(t, store.stored, 0, "offline mode never writes the store")
	assert.Equal(t, []string{
		"planilha-legada-2024_batch_001.sql",
		"planilha-legada-2024_batch_002.sql",
		"planilha-legada-2024_batch_003.sql",
		"planilha-legada-2024_verify.sql",
	}, res.ArtifactFiles)

	first, err := os.ReadFile(filepath.Join(outDir, res.ArtifactFiles[0]))
	require.NoError(t, err)
	assert.Contains(t, string(first), "INSERT INTO leads (owner_id, contact_date, name,")
	assert.Equal(t, 5, strings.Count(string(first), "('owner-1'"))

	verify, err := os.ReadFile(filepath.Join(outDir, res.ArtifactFiles[3]))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM leads WHERE owner_id = 'owner-1';\n", string(verify))
}
