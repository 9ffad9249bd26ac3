package ledger

import "strings"

// Kind is the tracking line a transaction is reported under
type Kind string

const (
	KindRevenue  Kind = "revenue"
	KindVariable Kind = "variable_costs"
	KindFixed    Kind = "fixed_costs"
	KindTransfer Kind = "transfer"
)

// Movements between the company's own accounts (lowercase)
var TransferPatterns = []string{
	"transferência entre contas", "transferencia entre contas",
	"transf entre contas", "mesma titularidade",
	"aplicação automática", "aplicacao automatica", "resgate automático", "resgate automatico",
	"aplicação cdb", "aplicacao cdb", "resgate cdb",
	"internal transfer", "transfer between accounts",
	"pagamento fatura", "pagamento de fatura", "credit card payment",
}

// Debits that move with sales volume (lowercase)
var VariableKeywords = []string{
	"fornecedor", "supplier", "estoque", "inventory", "mercadoria",
	"matéria-prima", "materia-prima", "materia prima", "insumo",
	"comissão", "comissao", "commission",
	"frete", "freight", "shipping", "correios", "transportadora",
	"taxa cartão", "taxa cartao", "tarifa cartão", "tarifa cartao", "mdr", "card fee",
	"maquininha", "antecipação de recebíveis", "antecipacao de recebiveis",
	"embalagem", "packaging", "simples nacional",
}

// Category values banks or accounting tools use for each line (lowercase)
var (
	RevenueCategories  = []string{"receita", "revenue", "venda", "vendas", "sales", "faturamento"}
	VariableCategories = []string{"custo variável", "custo variavel", "variable", "cmv", "cogs", "custo da mercadoria"}
	FixedCategories    = []string{"despesa fixa", "custo fixo", "fixed", "overhead", "folha", "payroll", "aluguel", "rent"}
	TransferCategories = []string{"transferência", "transferencia", "transfer", "investimento", "investment"}
)

// Classify sets the kind of each transaction
func Classify(transactions []Transaction) []Transaction {
	for i := range transactions {
		transactions[i].Kind = classify(&transactions[i])
	}
	return transactions
}

// classify tries transfer patterns, then the category column, then the
// sign and description. Credits are revenue, debits are fixed unless a
// variable keyword matches.
func classify(t *Transaction) Kind {
	desc := strings.ToLower(strings.TrimSpace(t.Description))
	cat := strings.ToLower(strings.TrimSpace(t.Category))

	if IsInternalTransfer(t) {
		return KindTransfer
	}

	if cat != "" {
		switch {
		case containsAny(cat, TransferCategories):
			return KindTransfer
		case containsAny(cat, RevenueCategories) && t.Amount.IsPositive():
			return KindRevenue
		case containsAny(cat, VariableCategories) && t.Amount.IsNegative():
			return KindVariable
		case containsAny(cat, FixedCategories) && t.Amount.IsNegative():
			return KindFixed
		}
	}

	if t.Amount.IsPositive() {
		return KindRevenue
	}
	if containsAny(desc, VariableKeywords) {
		return KindVariable
	}
	return KindFixed
}

// IsInternalTransfer reports whether t moves money between the company's
// own accounts
func IsInternalTransfer(t *Transaction) bool {
	return containsAny(strings.ToLower(t.Description), TransferPatterns)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
