package tracking

import (
	"net/http"
	"testing"

	"bizplan/internal/testutil"
)

const statement = `Data;Histórico;Valor
05/03/2026;PIX RECEBIDO CLIENTE A;1.500,00
06/03/2026;PAGAMENTO FORNECEDOR XYZ;-400,00
10/03/2026;ALUGUEL SALA;-1.000,00
10/03/2026;ALUGUEL SALA;-1.000,00
12/03/2026;TRANSFERENCIA ENTRE CONTAS;-5.000,00
15/12/2025;PIX RECEBIDO;200,00
02/04/2026;VENDA BALCAO;2.000,00
`

func TestImportStatement(t *testing.T) {
	ts := setup(t)

	testutil.AssertResponse(t, ts.Upload("/api/tracking/import?dry_run=true", "extrato.csv", []byte(statement))).
		StatusOK().
		ContainsAll(`"imported":5`, `"transfers":1`, `"out_of_year":1`).
		NotContains(`"duplicates"`).
		NotContains(`"change"`)
	testutil.AssertResponse(t, ts.GET("/api/tracking")).StatusOK().Contains("[]")

	var resp ImportResponse
	testutil.AssertResponse(t, ts.Upload("/api/tracking/import", "extrato.csv", []byte(statement))).
		StatusOK().
		JSON(&resp)
	if resp.Change == nil || resp.Change.Target != "mar,apr" {
		t.Fatalf("change = %+v, want target mar,apr", resp.Change)
	}

	var month MonthActuals
	testutil.AssertResponse(t, ts.GET("/api/tracking/mar")).StatusOK().JSON(&month)
	want := map[string]float64{"revenue": 1500, "variable_costs": 400, "fixed_costs": 2000}
	for k, v := range want {
		if got := month.Values[k]; got == nil || *got != v {
			t.Errorf("%s = %v, want %v", k, got, v)
		}
	}
}

func TestImportErrors(t *testing.T) {
	ts := setup(t)

	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"not a csv", "extrato.pdf", statement, "Only CSV"},
		{"missing amount", "extrato.csv", "Data;Histórico\n05/03/2026;PIX\n", "missing required column"},
		{"nothing from 2026", "extrato.csv", "Data;Histórico;Valor\n15/12/2025;PIX;200,00\n", "no 2026 transactions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertResponse(t, ts.Upload("/api/tracking/import", tt.filename, []byte(tt.content))).
				Status(http.StatusBadRequest).
				ErrorContains(tt.want)
		})
	}
}
