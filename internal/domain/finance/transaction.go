package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tipo is the direction of a ledger record
type Tipo string

const (
	TipoEntrada Tipo = "entrada" // revenue
	TipoSaida   Tipo = "saida"   // expense
)

// IsValid checks if the tipo is entrada or saida
func (t Tipo) IsValid() bool {
	return t == TipoEntrada || t == TipoSaida
}

// String returns the string representation of Tipo
func (t Tipo) String() string {
	return string(t)
}

// AllTipos returns every valid tipo in bucket order
func AllTipos() []Tipo {
	return []Tipo{TipoEntrada, TipoSaida}
}

// ParseTipo validates a raw tipo value
func ParseTipo(raw string) (Tipo, error) {
	t := Tipo(strings.TrimSpace(raw))
	if !t.IsValid() {
		return "", shared.InvalidArgument("Tipo inválido. Use: entrada ou saida")
	}
	return t, nil
}

// NormalizeLegacyTipo maps the receita/despesa names used by older records
// onto the current tipos. Unknown values are returned unchanged.
func NormalizeLegacyTipo(raw string) Tipo {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "entrada", "receita":
		return TipoEntrada
	case "saida", "despesa":
		return TipoSaida
	}
	return Tipo(raw)
}

// DateLayout is the layout of the transaction date field
const DateLayout = "2006-01-02"

// UpdatableFields lists the transaction fields a caller may change
var UpdatableFields = []string{"tipo", "categoria", "valor", "descricao", "observacoes", "data"}

// Transaction is a single ledger record of a club
type Transaction struct {
	ID              string
	Tipo            Tipo
	Categoria       string
	Valor           decimal.Decimal
	Mes             string // YYYY-MM, derived from Data
	Timestamp       int64  // epoch millis
	Descricao       string
	Observacoes     string
	Data            string // YYYY-MM-DD
	CriadoEm        time.Time
	CriadoPor       string
	CriadoPorLogin  string
	Editavel        bool
	EditadoEm       *time.Time
	EditadoPor      string
	EditadoPorLogin string
}

// Author identifies who created or edited a record
type Author struct {
	UID   string
	Login string
}

// NewTransactionInput holds the caller-provided fields of a new transaction
type NewTransactionInput struct {
	Tipo        string
	Categoria   string
	Valor       decimal.Decimal
	Descricao   string
	Observacoes string
	Data        string
}

// NewTransaction validates input and builds a transaction. The ID is left
// empty and assigned by the store.
func NewTransaction(in NewTransactionInput, author Author, now time.Time) (*Transaction, error) {
	tipo, err := ParseTipo(in.Tipo)
	if err != nil {
		return nil, err
	}
	categoria := strings.TrimSpace(in.Categoria)
	if categoria == "" {
		return nil, shared.InvalidArgument("Categoria obrigatória")
	}
	if err := ValidateValor(in.Valor); err != nil {
		return nil, err
	}
	mes, err := MesFromData(in.Data)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Tipo:           tipo,
		Categoria:      categoria,
		Valor:          in.Valor,
		Mes:            mes,
		Timestamp:      now.UnixMilli(),
		Descricao:      in.Descricao,
		Observacoes:    in.Observacoes,
		Data:           strings.TrimSpace(in.Data),
		CriadoEm:       now.UTC(),
		CriadoPor:      author.UID,
		CriadoPorLogin: author.Login,
		Editavel:       true,
	}, nil
}

// ValidateValor rejects zero and negative amounts
func ValidateValor(v decimal.Decimal) error {
	if !v.IsPositive() {
		return shared.InvalidArgument("Valor deve ser maior que zero")
	}
	return nil
}

// MesFromData validates a transaction date and returns its YYYY-MM month.
func MesFromData(data string) (string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", shared.InvalidArgument("Data obrigatória")
	}
	if len(data) < len(DateLayout) {
		return "", shared.InvalidArgument("Data inválida. Use o formato AAAA-MM-DD")
	}
	if _, err := time.Parse(DateLayout, data[:len(DateLayout)]); err != nil {
		return "", shared.InvalidArgument("Data inválida. Use o formato AAAA-MM-DD")
	}
	return data[:7], nil
}

// Signed returns the contribution of the record to the balance
func (t *Transaction) Signed() decimal.Decimal {
	if t.Tipo == TipoSaida {
		return t.Valor.Neg()
	}
	return t.Valor
}

// AgeDays returns the number of whole days between the record date and now.
func (t *Transaction) AgeDays(now time.Time) int {
	if len(t.Data) < len(DateLayout) {
		return 0
	}
	d, err := time.Parse(DateLayout, t.Data[:len(DateLayout)])
	if err != nil {
		return 0
	}
	return int(now.Sub(d).Hours() / 24)
}

// TransactionPatch is a partial update of a transaction. Nil fields are left
// unchanged.
type TransactionPatch struct {
	Tipo        *Tipo
	Categoria   *string
	Valor       *decimal.Decimal
	Descricao   *string
	Observacoes *string
	Data        *string
}

// CheckUpdatableFields returns invalid-argument listing every key outside
// UpdatableFields.
func CheckUpdatableFields(keys []string) error {
	allowed := make(map[string]struct{}, len(UpdatableFields))
	for _, f := range UpdatableFields {
		allowed[f] = struct{}{}
	}
	var invalid []string
	for _, k := range keys {
		if _, ok := allowed[k]; !ok {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return shared.InvalidArgument("Campos não permitidos: " + strings.Join(invalid, ", "))
}

// IsEmpty reports whether the patch changes nothing
func (p TransactionPatch) IsEmpty() bool {
	return p.Tipo == nil && p.Categoria == nil && p.Valor == nil &&
		p.Descricao == nil && p.Observacoes == nil && p.Data == nil
}

// Validate checks the values carried by the patch
func (p TransactionPatch) Validate() error {
	if p.IsEmpty() {
		return shared.InvalidArgument("Nenhum campo para atualizar")
	}
	if p.Tipo != nil && !p.Tipo.IsValid() {
		return shared.InvalidArgument("Tipo inválido. Use: entrada ou saida")
	}
	if p.Categoria != nil && strings.TrimSpace(*p.Categoria) == "" {
		return shared.InvalidArgument("Categoria obrigatória")
	}
	if p.Valor != nil {
		if err := ValidateValor(*p.Valor); err != nil {
			return err
		}
	}
	if p.Data != nil {
		if _, err := MesFromData(*p.Data); err != nil {
			return err
		}
	}
	return nil
}

// ChangesCategoria reports whether the patch moves the record to another category
func (p TransactionPatch) ChangesCategoria(current string) bool {
	return p.Categoria != nil && strings.TrimSpace(*p.Categoria) != current
}

// Apply merges a validated patch into the transaction and stamps the edit
// audit fields.
func (t *Transaction) Apply(p TransactionPatch, editor Author, now time.Time) {
	if p.Tipo != nil {
		t.Tipo = *p.Tipo
	}
	if p.Categoria != nil {
		t.Categoria = strings.TrimSpace(*p.Categoria)
	}
	if p.Valor != nil {
		t.Valor = *p.Valor
	}
	if p.Descricao != nil {
		t.Descricao = *p.Descricao
	}
	if p.Observacoes != nil {
		t.Observacoes = *p.Observacoes
	}
	if p.Data != nil {
		t.Data = strings.TrimSpace(*p.Data)
		t.Mes = t.Data[:7]
	}
	edited := now.UTC()
	t.EditadoEm = &edited
	t.EditadoPor = editor.UID
	t.EditadoPorLogin = editor.Login
}
