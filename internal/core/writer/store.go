// internal/core/writer/store.go
package writer

import (
	"context"
	"errors"

	"github.com/vendalytics/importaHotmart/internal/domain"
)

// ErrAlreadyExists é devolvido pelo Store quando a chave do documento já
// existe. Para o writer isso nunca é erro: significa que uma fonte de maior
// prioridade (ingestão ao vivo, ou uma importação concorrente) chegou antes.
var ErrAlreadyExists = errors.New("registro já existe")

// Store é a superfície de persistência consumida pelo writer. A implementação
// real fica em internal/storage; os testes usam um mock em memória.
type Store interface {
	// ExistingOrderIDs devolve o subconjunto de orderIDs já persistidos no
	// escopo (projectID, provider).
	ExistingOrderIDs(ctx context.Context, projectID, provider string, orderIDs []string) (map[string]bool, error)

	FindContactByEmail(ctx context.Context, projectID, email string) (*domain.Contact, error)
	CreateContact(ctx context.Context, contact *domain.Contact) error
	// EnrichContact preenche apenas os campos informados; o writer só envia
	// campos hoje vazios no contato encontrado.
	EnrichContact(ctx context.Context, contactID string, fields map[string]interface{}) error
	CreateContactIdentity(ctx context.Context, key string, identity *domain.ContactIdentity) error

	CreateOrder(ctx context.Context, key string, order *domain.Order) error
	CreateOrderItem(ctx context.Context, key string, item *domain.OrderItem) error
	CreateLedgerEvent(ctx context.Context, key string, event *domain.LedgerEvent) error
}
