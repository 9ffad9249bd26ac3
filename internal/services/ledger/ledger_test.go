package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bizplan/internal/models"
	"bizplan/internal/services/plan"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Data", "Date"},
		{"DATE", "Date"},
		{"Data Lançamento", "Date"},
		{"Histórico", "Description"},
		{"descricao", "Description"},
		{"Memo", "Description"},
		{"Valor", "Amount"},
		{"Valor (R$)", "Amount"},
		{"Categoria", "Category"},
		{"Débito", "Debit"},
		{"Saída", "Debit"},
		{"Crédito", "Credit"},
		{"Entrada", "Credit"},
		{"Saldo", "Saldo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeColumnName(tt.input); got != tt.expected {
				t.Errorf("normalizeColumnName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"R$ 1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"-400,00", "-400", true},
		{"(100,00)", "-100", true},
		{"250,00-", "-250", true},
		{"1.000.000", "1000000", true},
		{"42", "42", true},
		{"R$ 99,90", "99.9", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("parseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"05/03/2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2026-03-05", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/26", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/2026 14:30", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"março", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDate(tt.input)
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseDebitCreditColumns(t *testing.T) {
	csv := "Date,Description,Debit,Credit\n" +
		"2026-01-10,Client payment,,\"3,000.00\"\n" +
		"2026-01-11,Supplier invoice,\"1,200.00\",\n" +
		"bad date,Broken,1,\n"
	txs, stats, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 || stats.Skipped != 1 {
		t.Fatalf("parsed %d (skipped %d), want 2 (skipped 1)", len(txs), stats.Skipped)
	}
	if !txs[0].Amount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("credit = %s, want 3000", txs[0].Amount)
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(-1200)) {
		t.Errorf("debit = %s, want -1200", txs[1].Amount)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty", "", ErrEmptyFile},
		{"no date", "Descrição;Valor\nx;1\n", ErrMissingColumn},
		{"no description", "Data;Valor\n01/01/2026;1\n", ErrMissingColumn},
		{"no amount", "Data;Descrição\n01/01/2026;x\n", ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Parse(strings.NewReader(tt.content)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		desc     string
		category string
		amount   int64
		want     Kind
	}{
		{"PIX RECEBIDO CLIENTE", "", 1500, KindRevenue},
		{"PAGAMENTO FORNECEDOR ABC", "", -400, KindVariable},
		{"FRETE CORREIOS", "", -80, KindVariable},
		{"TAXA CARTAO MAQUININHA", "", -35, KindVariable},
		{"ALUGUEL SALA 12", "", -2000, KindFixed},
		{"TRANSFERENCIA ENTRE CONTAS", "", -5000, KindTransfer},
		{"RESGATE AUTOMATICO", "", 5000, KindTransfer},
		{"BOLETO 123", "Custo Variável", -300, KindVariable},
		{"BOLETO 456", "Despesa Fixa", -300, KindFixed},
		{"APORTE", "Investimento", 10000, KindTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			tx := Transaction{Description: tt.desc, Category: tt.category, Amount: decimal.NewFromInt(tt.amount)}
			if got := classify(&tx); got != tt.want {
				t.Errorf("classify(%q) = %s, want %s", tt.desc, got, tt.want)
			}
		})
	}
}

const statement = `Data;Histórico;Valor
05/03/2026;PIX RECEBIDO CLIENTE A;1.500,00
06/03/2026;PAGAMENTO FORNECEDOR XYZ;-400,00
10/03/2026;ALUGUEL SALA;-1.000,00
10/03/2026;ALUGUEL SALA;-1.000,00
12/03/2026;TRANSFERENCIA ENTRE CONTAS;-5.000,00
15/12/2025;PIX RECEBIDO;200,00
02/04/2026;VENDA BALCAO;2.000,00
xx/04/2026;ILEGIVEL;1,00
`

func TestImport(t *testing.T) {
	s, err := Import(strings.NewReader(statement))
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Parsed: 7, Skipped: 1, Transfers: 1, OutOfYear: 1, Imported: 5}
	if s.Stats != want {
		t.Errorf("stats = %+v, want %+v", s.Stats, want)
	}
	if len(s.Months) != 2 {
		t.Fatalf("months = %d, want 2", len(s.Months))
	}
	mar := s.Months[0]
	if mar.Month != models.Mar || mar.Revenue != 1500 || mar.VariableCosts != 400 || mar.FixedCosts != 2000 || mar.Transactions != 4 {
		t.Errorf("mar = %+v", mar)
	}
	if apr := s.Months[1]; apr.Month != models.Apr || apr.Revenue != 2000 || apr.FixedCosts != 0 {
		t.Errorf("apr = %+v", apr)
	}
}

func TestImportKeepsIdenticalRows(t *testing.T) {
	csv := "Data;Histórico;Valor\n" +
		"05/03/2026;Venda cartao;50,00\n" +
		"05/03/2026;Venda cartao;50,00\n" +
		"05/03/2026;Venda cartao;50,00\n"
	s, err := Import(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if s.Stats.Imported != 3 {
		t.Errorf("imported = %d, want 3", s.Stats.Imported)
	}
	if len(s.Months) != 1 || s.Months[0].Revenue != 150 || s.Months[0].Transactions != 3 {
		t.Errorf("months = %+v, want one month with revenue 150", s.Months)
	}
}

func TestReducer(t *testing.T) {
	s, err := Import(strings.NewReader(statement))
	if err != nil {
		t.Fatal(err)
	}
	doc := models.NewPlanDocument()
	if _, err := plan.SetActual(doc, models.Jan, plan.ActualRevenue, models.Float(99)); err != nil {
		t.Fatal(err)
	}

	change, err := s.Reducer()(doc)
	if err != nil {
		t.Fatal(err)
	}
	if change.Kind != models.ChangeActualImport || change.Target != "mar,apr" {
		t.Errorf("change = %+v", change)
	}
	if v := doc.Tracking2026.Entry(models.Mar).FixedCosts; v == nil || *v != 2000 {
		t.Errorf("mar fixed costs = %v, want 2000", v)
	}
	if v := doc.Tracking2026.Entry(models.Jan).Revenue; v == nil || *v != 99 {
		t.Errorf("jan revenue should be untouched, got %v", v)
	}

	empty := &Summary{}
	if _, err := empty.Reducer()(models.NewPlanDocument()); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("err = %v, want ErrNoTransactions", err)
	}
}
