// internal/core/writer/writer.go
package writer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendalytics/importaHotmart/internal/domain"
)

// SourceCSVImport marca registros criados pelo backfill, nunca pela ingestão
// ao vivo.
const SourceCSVImport = "csv_import"

// Writer emite pedidos, itens, lançamentos e contatos para pedidos lógicos
// ainda não persistidos. Regra central, inegociável: a fonte de eventos ao
// vivo sempre vence o backfill — nada que já exista é atualizado ou
// sobrescrito.
type Writer struct {
	store     Store
	projectID string
	provider  string
	log       *zap.Logger
}

func New(store Store, projectID, provider string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{store: store, projectID: projectID, provider: provider, log: log}
}

// ExistingIDs consulta os ids de pedido já persistidos no escopo
// (project, provider) dentre os informados.
func (w *Writer) ExistingIDs(ctx context.Context, orderIDs []string) (map[string]bool, error) {
	return w.store.ExistingOrderIDs(ctx, w.projectID, w.provider, orderIDs)
}

// OrderKey é a chave determinística do documento do pedido; a tupla
// (project, provider, providerOrderId) é o invariante global de unicidade.
func (w *Writer) OrderKey(logicalOrderID string) string {
	return fmt.Sprintf("%s_%s_%s", w.projectID, w.provider, sanitizeKey(logicalOrderID))
}

// WriteOrder persiste um pedido lógico inteiro: contato, pedido, itens e
// lançamentos. Devolve erro apenas para falhas reais de persistência; chave
// duplicada conta como "pulado" e segue em frente.
func (w *Writer) WriteOrder(ctx context.Context, order *domain.LogicalOrder, summary *domain.ImportSummary) error {
	contactID, err := w.resolveContact(ctx, order, summary)
	if err != nil {
		return fmt.Errorf("resolução de contato: %w", err)
	}

	key := w.OrderKey(order.ID)
	record := w.buildOrder(order, contactID)
	if err := w.store.CreateOrder(ctx, key, record); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Corrida com o caminho ao vivo ou com outro writer: a
			// restrição de unicidade é o backstop, não um erro.
			summary.OrdersSkipped++
			return nil
		}
		return fmt.Errorf("criação do pedido: %w", err)
	}
	summary.OrdersCreated++

	for i := range order.Rows {
		if err := w.writeItem(ctx, key, &order.Rows[i], summary); err != nil {
			return err
		}
	}

	if order.IsFinancial {
		for i := range order.Rows {
			row := &order.Rows[i]
			if !row.IsFinancial {
				continue
			}
			if err := w.writeLedgerEvents(ctx, key, row, summary); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveContact procura o contato pelo email do item principal. Encontrado:
// enriquece somente campos hoje vazios (enriquecimento, nunca substituição).
// Não encontrado: cria contato novo com origem csv_import e declara a
// identidade de email.
func (w *Writer) resolveContact(ctx context.Context, order *domain.LogicalOrder, summary *domain.ImportSummary) (string, error) {
	main := order.MainItem
	email := strings.ToLower(strings.TrimSpace(main.BuyerEmail))
	if email == "" {
		return "", nil
	}

	existing, err := w.store.FindContactByEmail(ctx, w.projectID, email)
	if err != nil {
		return "", err
	}

	if existing != nil {
		fields := make(map[string]interface{})
		if existing.Name == "" && main.BuyerName != "" {
			fields["name"] = main.BuyerName
		}
		if existing.Phone == "" && main.BuyerPhone != "" {
			fields["phone"] = main.BuyerPhone
		}
		if len(fields) > 0 {
			if err := w.store.EnrichContact(ctx, existing.ID, fields); err != nil {
				return "", err
			}
		}
		summary.ContactsEnriched++
		return existing.ID, nil
	}

	contact := &domain.Contact{
		ID:        uuid.NewString(),
		ProjectID: w.projectID,
		Email:     email,
		Name:      main.BuyerName,
		Phone:     main.BuyerPhone,
		Document:  main.BuyerDocument,
		Country:   main.BuyerCountry,
		Source:    SourceCSVImport,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.store.CreateContact(ctx, contact); err != nil {
		return "", err
	}

	identityKey := fmt.Sprintf("%s_email_%s", w.projectID, sanitizeKey(email))
	identity := &domain.ContactIdentity{
		ContactID: contact.ID,
		ProjectID: w.projectID,
		Kind:      "email",
		Value:     email,
		Source:    SourceCSVImport,
		CreatedAt: contact.CreatedAt,
	}
	if err := w.store.CreateContactIdentity(ctx, identityKey, identity); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return "", err
	}

	summary.ContactsCreated++
	return contact.ID, nil
}

func (w *Writer) buildOrder(order *domain.LogicalOrder, contactID string) *domain.Order {
	main := order.MainItem
	record := &domain.Order{
		ProjectID:       w.projectID,
		Provider:        w.provider,
		ProviderOrderID: order.ID,
		ContactID:       contactID,
		Status:          string(order.Status),
		IsFinancial:     order.IsFinancial,
		Currency:        main.Currency,
		OrderDate:       main.OrderDate,
		ConfirmationAt:  main.ConfirmationDate,
		Source:          SourceCSVImport,
		CreatedAt:       time.Now().UTC(),
	}

	// Pedido não financeiro fica com valores nil, não zero: "nenhum dinheiro
	// se moveu" é diferente de "linha de valor zero".
	if order.IsFinancial {
		record.TotalCustomerPaid = decimalPtr(order.TotalCustomerPaid)
		record.TotalProducerNet = decimalPtr(order.TotalProducerNet)
	}
	return record
}

func (w *Writer) writeItem(ctx context.Context, orderKey string, row *domain.ClassifiedRow, summary *domain.ImportSummary) error {
	position := "middle"
	if row.ItemType == domain.ItemMain {
		position = "front"
	}

	item := &domain.OrderItem{
		OrderKey:       orderKey,
		ProjectID:      w.projectID,
		TransactionID:  row.TransactionID,
		ProductCode:    row.ProductCode,
		ProductName:    row.ProductName,
		OfferCode:      row.OfferCode,
		OfferName:      row.OfferName,
		ItemType:       string(row.ItemType),
		FunnelPosition: position,
		CreatedAt:      time.Now().UTC(),
	}

	key := itemKey(orderKey, row)
	if err := w.store.CreateOrderItem(ctx, key, item); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Item já presente de uma execução anterior: silencioso.
			return nil
		}
		return fmt.Errorf("criação do item %s: %w", row.TransactionID, err)
	}
	summary.ItemsCreated++
	return nil
}

// writeLedgerEvents emite os lançamentos da linha: um sale positivo com o
// valor base e um lançamento negativo por categoria de dedução presente.
// Valor zero ou ausente não gera lançamento. O id determinístico
// (tipo, transação) garante que reimportar nunca lança em dobro.
func (w *Writer) writeLedgerEvents(ctx context.Context, orderKey string, row *domain.ClassifiedRow, summary *domain.ImportSummary) error {
	if err := w.writeEvent(ctx, orderKey, row, domain.EventSale, row.GrossBase, summary); err != nil {
		return err
	}

	deductions := []struct {
		eventType string
		amount    decimal.Decimal
	}{
		{domain.EventPlatformFee, row.PlatformFee},
		{domain.EventAffiliateCommission, row.AffiliateCommission},
		{domain.EventCoproducerCommission, row.CoproducerCommission},
		{domain.EventLocalTax, row.LocalTaxes},
	}
	for _, d := range deductions {
		if d.amount.IsZero() {
			continue
		}
		if err := w.writeEvent(ctx, orderKey, row, d.eventType, d.amount.Neg(), summary); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeEvent(ctx context.Context, orderKey string, row *domain.ClassifiedRow, eventType string, amount decimal.Decimal, summary *domain.ImportSummary) error {
	providerEventID := fmt.Sprintf("%s_%s", eventType, sanitizeKey(row.TransactionID))
	event := &domain.LedgerEvent{
		OrderKey:        orderKey,
		ProjectID:       w.projectID,
		ProviderEventID: providerEventID,
		EventType:       eventType,
		TransactionID:   row.TransactionID,
		Amount:          amount.InexactFloat64(),
		Currency:        row.Currency,
		OccurredAt:      row.ConfirmationDate,
		CreatedAt:       time.Now().UTC(),
	}

	key := fmt.Sprintf("%s_%s", w.provider, providerEventID)
	if err := w.store.CreateLedgerEvent(ctx, key, event); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("lançamento %s: %w", providerEventID, err)
	}
	summary.LedgerEventsCreated++
	return nil
}

func itemKey(orderKey string, row *domain.ClassifiedRow) string {
	h := sha256.Sum256([]byte(row.ProductCode + "|" + row.OfferCode + "|" + row.TransactionID))
	return fmt.Sprintf("%s_%x", orderKey, h[:6])
}

func decimalPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}

// sanitizeKey remove caracteres que o Firestore não aceita em ids de
// documento.
func sanitizeKey(raw string) string {
	replacer := strings.NewReplacer("/", "-", " ", "-")
	return replacer.Replace(strings.TrimSpace(raw))
}
