// Package ledger turns bank statement exports into monthly actuals.
package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingColumn = errors.New("ledger: missing required column")
	ErrEmptyFile     = errors.New("ledger: file has no header")
)

// Transaction is one statement line. Credits are positive, debits negative.
type Transaction struct {
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
	Kind        Kind
}

// columnMappings maps bank export column names, lowercased, to our standard names
var columnMappings = map[string][]string{
	"Date": {
		"date", "data", "transaction date", "posted date", "posting date",
		"data lançamento", "data lancamento", "data do lançamento", "data movimento",
	},
	"Description": {
		"description", "descrição", "descricao", "memo", "details", "payee",
		"histórico", "historico", "lançamento", "lancamento", "narrative",
	},
	"Amount": {
		"amount", "valor", "value", "transaction amount", "valor (r$)",
	},
	"Category": {
		"category", "categoria", "type", "tipo",
	},
	"Debit": {
		"debit", "débito", "debito", "withdrawal", "saída", "saida", "money out",
	},
	"Credit": {
		"credit", "crédito", "credito", "deposit", "entrada", "money in",
	},
}

// normalizeColumnName maps a bank export column name to our standard name
func normalizeColumnName(col string) string {
	lower := strings.ToLower(strings.TrimSpace(col))
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if lower == variant {
				return standard
			}
		}
	}
	return strings.TrimSpace(col)
}

// buildColumnIndex creates a normalized column index from CSV headers.
// The first matching column wins.
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(strings.TrimPrefix(col, "\ufeff"))
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// sniffDelimiter picks ';' for exports that use it, which most Brazilian
// banks do because the comma is the decimal separator
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	first := string(line)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

// Parse reads a statement export. Rows with an unreadable date or amount
// are skipped and counted in the returned stats.
func Parse(r io.Reader) ([]Transaction, Stats, error) {
	var stats Stats
	br := bufio.NewReader(r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, ErrEmptyFile
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	colIndex := buildColumnIndex(header)

	_, hasAmount := colIndex["Amount"]
	_, hasDebit := colIndex["Debit"]
	_, hasCredit := colIndex["Credit"]
	useDebitCredit := !hasAmount && (hasDebit || hasCredit)

	if _, ok := colIndex["Date"]; !ok {
		return nil, stats, fmt.Errorf("%w: date (tried: %v)", ErrMissingColumn, columnMappings["Date"])
	}
	if _, ok := colIndex["Description"]; !ok {
		return nil, stats, fmt.Errorf("%w: description (tried: %v)", ErrMissingColumn, columnMappings["Description"])
	}
	if !hasAmount && !useDebitCredit {
		return nil, stats, fmt.Errorf("%w: amount or debit/credit (tried: %v)", ErrMissingColumn, columnMappings["Amount"])
	}

	field := func(record []string, name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var transactions []Transaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		t := Transaction{
			Description: field(record, "Description"),
			Category:    field(record, "Category"),
		}
		date, ok := parseDate(field(record, "Date"))
		if !ok {
			stats.Skipped++
			continue
		}
		t.Date = date

		if useDebitCredit {
			t.Amount, ok = parseDebitCredit(field(record, "Debit"), field(record, "Credit"))
		} else {
			t.Amount, ok = parseAmount(field(record, "Amount"))
		}
		if !ok {
			stats.Skipped++
			continue
		}
		if t.Amount.IsZero() {
			continue
		}

		transactions = append(transactions, t)
	}
	stats.Parsed = len(transactions)
	return transactions, stats, nil
}

// parseDebitCredit combines separate debit and credit columns. Debits are
// negative whatever sign the bank wrote.
func parseDebitCredit(debit, credit string) (decimal.Decimal, bool) {
	amount := decimal.Zero
	if credit != "" {
		c, ok := parseAmount(credit)
		if !ok {
			return decimal.Zero, false
		}
		amount = c.Abs()
	}
	if debit != "" {
		d, ok := parseAmount(debit)
		if !ok {
			return decimal.Zero, false
		}
		if !d.IsZero() {
			amount = d.Abs().Neg()
		}
	}
	return amount, true
}

var dateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
}

// parseDate tries the day-first formats banks export before ISO dates
func parseDate(s string) (time.Time, bool) {
	if len(s) > 10 {
		if d, err := time.Parse(time.RFC3339, s); err == nil {
			return d, true
		}
		s = strings.Fields(s)[0]
	}
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// parseAmount reads "R$ 1.234,56", "1,234.56", "-50" or "(100,00)". The
// rightmost separator is the decimal one when both appear. A lone comma is
// decimal, repeated dots are thousands.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer("R$", "", "$", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}
