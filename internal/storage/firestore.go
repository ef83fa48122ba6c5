// internal/storage/firestore.go
package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vendalytics/importaHotmart/internal/core/writer"
	"github.com/vendalytics/importaHotmart/internal/domain"
)

// Coleções do Firestore usadas pelo backfill.
const (
	collOrders            = "orders"
	collOrderItems        = "order_items"
	collLedgerEvents      = "ledger_events"
	collContacts          = "contacts"
	collContactIdentities = "contact_identities"
)

// FirestoreStore implementa writer.Store sobre o Firestore. A unicidade de
// (project, provider, providerOrderId) é dada pelo id determinístico do
// documento: Create numa chave existente falha com AlreadyExists, que é o
// sinal de conflito que o writer espera.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) ExistingOrderIDs(ctx context.Context, projectID, provider string, orderIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(orderIDs) == 0 {
		return existing, nil
	}

	refs := make([]*firestore.DocumentRef, len(orderIDs))
	for i, id := range orderIDs {
		key := fmt.Sprintf("%s_%s_%s", projectID, provider, id)
		refs[i] = s.client.Collection(collOrders).Doc(key)
	}

	snapshots, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("consulta de pedidos existentes: %w", err)
	}
	for i, snapshot := range snapshots {
		if snapshot.Exists() {
			existing[orderIDs[i]] = true
		}
	}
	return existing, nil
}

func (s *FirestoreStore) FindContactByEmail(ctx context.Context, projectID, email string) (*domain.Contact, error) {
	query := s.client.Collection(collContacts).
		Where("projectId", "==", projectID).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consulta de contato: %w", err)
	}

	var contact domain.Contact
	if err := doc.DataTo(&contact); err != nil {
		return nil, fmt.Errorf("leitura do contato: %w", err)
	}
	return &contact, nil
}

func (s *FirestoreStore) CreateContact(ctx context.Context, contact *domain.Contact) error {
	_, err := s.client.Collection(collContacts).Doc(contact.ID).Create(ctx, contact)
	return translateConflict(err)
}

func (s *FirestoreStore) EnrichContact(ctx context.Context, contactID string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err := s.client.Collection(collContacts).Doc(contactID).Update(ctx, updates)
	return err
}

func (s *FirestoreStore) CreateContactIdentity(ctx context.Context, key string, identity *domain.ContactIdentity) error {
	_, err := s.client.Collection(collContactIdentities).Doc(key).Create(ctx, identity)
	return translateConflict(err)
}

func (s *FirestoreStore) CreateOrder(ctx context.Context, key string, order *domain.Order) error {
	_, err := s.client.Collection(collOrders).Doc(key).Create(ctx, order)
	return translateConflict(err)
}

func (s *FirestoreStore) CreateOrderItem(ctx context.Context, key string, item *domain.OrderItem) error {
	_, err := s.client.Collection(collOrderItems).Doc(key).Create(ctx, item)
	return translateConflict(err)
}

func (s *FirestoreStore) CreateLedgerEvent(ctx context.Context, key string, event *domain.LedgerEvent) error {
	_, err := s.client.Collection(collLedgerEvents).Doc(key).Create(ctx, event)
	return translateConflict(err)
}

func translateConflict(err error) error {
	if status.Code(err) == codes.AlreadyExists {
		return writer.ErrAlreadyExists
	}
	return err
}
