// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus é o status normalizado de uma transação.
type OrderStatus string

const (
	StatusApproved   OrderStatus = "approved"
	StatusPending    OrderStatus = "pending"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusChargeback OrderStatus = "chargeback"
	StatusExpired    OrderStatus = "expired"
	StatusOverdue    OrderStatus = "overdue"
)

// ItemType classifica o papel do item dentro do pedido.
type ItemType string

const (
	ItemMain     ItemType = "main"
	ItemBump     ItemType = "bump"
	ItemUpsell   ItemType = "upsell"
	ItemDownsell ItemType = "downsell"
)

// ItemTypeProvenance indica qual caminho do classificador decidiu o tipo do item.
// "alias" = match direto na tabela; "heuristic" = fallback pela transação pai;
// "default" = nenhum dos dois, assumido como produto principal.
type ItemTypeProvenance string

const (
	ProvenanceAlias     ItemTypeProvenance = "alias"
	ProvenanceHeuristic ItemTypeProvenance = "heuristic"
	ProvenanceDefault   ItemTypeProvenance = "default"
)

// RawTransactionRow é uma linha do export depois do mapeamento de colunas e da
// normalização de locale. Imutável depois de criada.
type RawTransactionRow struct {
	TransactionID       string
	ParentTransactionID string
	StatusRaw           string
	OrderDate           *time.Time
	ConfirmationDate    *time.Time

	BuyerName     string
	BuyerEmail    string
	BuyerPhone    string
	BuyerDocument string
	BuyerCountry  string

	CustomerPaid         decimal.Decimal
	GrossBase            decimal.Decimal
	ProducerNet          decimal.Decimal
	PlatformFee          decimal.Decimal
	AffiliateCommission  decimal.Decimal
	CoproducerCommission decimal.Decimal
	LocalTaxes           decimal.Decimal
	InstallmentFee       decimal.Decimal
	Currency             string

	ProductCode string
	ProductName string
	OfferCode   string
	OfferName   string

	ItemTypeRaw   string
	RawTracking   string
	AffiliateName string
}

// Tracking são os segmentos decompostos da string de atribuição (src).
// Segmento ausente fica nil, nunca string vazia.
type Tracking struct {
	Source    *string
	Adset     *string
	Campaign  *string
	Placement *string
	Creative  *string

	// IDs numéricos de plataforma de anúncio extraídos dos segmentos.
	AdsetID    *string
	CampaignID *string
	AdID       *string
}

// ClassifiedRow é a RawTransactionRow mais os campos derivados pelo
// classificador e pelo resolvedor de pedido lógico.
type ClassifiedRow struct {
	RawTransactionRow

	NormalizedStatus   OrderStatus
	IsFinancial        bool
	LogicalOrderID     string
	ItemType           ItemType
	ItemTypeProvenance ItemTypeProvenance
	Tracking           Tracking
}

// LogicalOrder agrega todas as linhas que compartilham o mesmo LogicalOrderID,
// ou seja, uma única compra real independente de quantas sub-transações o
// export produziu.
type LogicalOrder struct {
	ID       string
	Rows     []ClassifiedRow
	MainItem *ClassifiedRow

	TotalCustomerPaid decimal.Decimal
	TotalProducerNet  decimal.Decimal

	// Financeiro se QUALQUER linha membro for financeira.
	Status      OrderStatus
	IsFinancial bool
}

// Order é o registro persistido do pedido. A unicidade global é garantida por
// (projectId, provider, providerOrderId).
type Order struct {
	ProjectID       string     `firestore:"projectId"`
	Provider        string     `firestore:"provider"`
	ProviderOrderID string     `firestore:"providerOrderId"`
	ContactID       string     `firestore:"contactId"`
	Status          string     `firestore:"status"`
	IsFinancial     bool       `firestore:"isFinancial"`
	Currency        string     `firestore:"currency"`
	OrderDate       *time.Time `firestore:"orderDate"`
	ConfirmationAt  *time.Time `firestore:"confirmationDate"`
	Source          string     `firestore:"source"`
	CreatedAt       time.Time  `firestore:"createdAt"`

	// Nil quando o pedido não é financeiro: distingue "nenhum dinheiro se
	// moveu" de "linha de valor zero".
	TotalCustomerPaid *float64 `firestore:"totalCustomerPaid"`
	TotalProducerNet  *float64 `firestore:"totalProducerNet"`
}

// OrderItem é um item do pedido, um por linha constituinte do pedido lógico.
type OrderItem struct {
	OrderKey       string    `firestore:"orderKey"`
	ProjectID      string    `firestore:"projectId"`
	TransactionID  string    `firestore:"transactionId"`
	ProductCode    string    `firestore:"productCode"`
	ProductName    string    `firestore:"productName"`
	OfferCode      string    `firestore:"offerCode"`
	OfferName      string    `firestore:"offerName"`
	ItemType       string    `firestore:"itemType"`
	FunnelPosition string    `firestore:"funnelPosition"` // front | middle
	CreatedAt      time.Time `firestore:"createdAt"`
}

// LedgerEvent é um lançamento financeiro assinado (positivo = receita,
// negativo = dedução) com id determinístico para reimportação idempotente.
type LedgerEvent struct {
	OrderKey        string     `firestore:"orderKey"`
	ProjectID       string     `firestore:"projectId"`
	ProviderEventID string     `firestore:"providerEventId"`
	EventType       string     `firestore:"eventType"`
	TransactionID   string     `firestore:"transactionId"`
	Amount          float64    `firestore:"amount"`
	Currency        string     `firestore:"currency"`
	OccurredAt      *time.Time `firestore:"occurredAt"`
	CreatedAt       time.Time  `firestore:"createdAt"`
}

// Tipos de evento do razão.
const (
	EventSale                 = "sale"
	EventPlatformFee          = "platform_fee"
	EventAffiliateCommission  = "affiliate_commission"
	EventCoproducerCommission = "coproducer_commission"
	EventLocalTax             = "local_tax"
)

// Contact é o contato do CRM, único por (projectId, email) com enriquecimento
// em conflito.
type Contact struct {
	ID        string    `firestore:"id"`
	ProjectID string    `firestore:"projectId"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone"`
	Document  string    `firestore:"document"`
	Country   string    `firestore:"country"`
	Source    string    `firestore:"source"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// ContactIdentity é a declaração de identidade emitida junto com a criação de
// um contato novo.
type ContactIdentity struct {
	ContactID string    `firestore:"contactId"`
	ProjectID string    `firestore:"projectId"`
	Kind      string    `firestore:"kind"` // "email"
	Value     string    `firestore:"value"`
	Source    string    `firestore:"source"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// OrderError registra a falha de processamento de um pedido lógico sem abortar
// o lote.
type OrderError struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

// ImportSummary é o resumo de formato fixo devolvido ao final de cada
// execução, completa ou cancelada.
type ImportSummary struct {
	TotalRows           int          `json:"totalRows"`
	OrdersCreated       int          `json:"ordersCreated"`
	OrdersSkipped       int          `json:"ordersSkipped"`
	ItemsCreated        int          `json:"itemsCreated"`
	LedgerEventsCreated int          `json:"ledgerEventsCreated"`
	ContactsCreated     int          `json:"contactsCreated"`
	ContactsEnriched    int          `json:"contactsEnriched"`
	Cancelled           bool         `json:"cancelled"`
	Errors              []OrderError `json:"errors,omitempty"`
}

// JobState é o estado da máquina do controlador de lotes. Transições são
// unidirecionais; não há retry/resume.
type JobState string

const (
	JobIdle             JobState = "idle"
	JobValidating       JobState = "validating"
	JobParsing          JobState = "parsing"
	JobGrouping         JobState = "grouping"
	JobCheckingExisting JobState = "checking-existing"
	JobProcessing       JobState = "processing"
	JobCompleted        JobState = "completed"
	JobCancelled        JobState = "cancelled"
	JobFailed           JobState = "failed"
)
