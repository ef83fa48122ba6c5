// internal/core/resolver/resolver.go
package resolver

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vendalytics/importaHotmart/internal/domain"
)

// subTransactionSuffixRegex reconhece o sufixo de sub-transação da plataforma:
// uma letra seguida de dígitos no final do id, precedida por um id raiz que
// termina em dígito (ex.: "HP0123456789C2" -> raiz "HP0123456789").
var subTransactionSuffixRegex = regexp.MustCompile(`^([A-Za-z0-9]*\d)[A-Za-z]\d+$`)

// ResolveLogicalOrderID devolve a chave de agrupamento da linha: uma compra
// real por id lógico. Se a linha declara uma transação pai, o pai É o pedido
// lógico; senão o sufixo de sub-transação é removido para recuperar a raiz
// compartilhada.
func ResolveLogicalOrderID(transactionID, parentTransactionID string) string {
	parent := strings.TrimSpace(parentTransactionID)
	if parent != "" {
		return parent
	}

	id := strings.TrimSpace(transactionID)
	if match := subTransactionSuffixRegex.FindStringSubmatch(id); match != nil {
		return match[1]
	}
	return id
}

// Group monta um pedido lógico por id distinto, preservando a ordem do
// primeiro encontro durante a varredura das linhas. Dentro de cada grupo o
// item principal é a linha classificada como main (ou a primeira, se nenhuma
// for), os totais somam as linhas financeiras e o status agregado é
// financeiro se QUALQUER linha membro for financeira. A regra do OU lógico é
// propriedade da agregação, não efeito colateral da ordem de iteração.
func Group(rows []domain.ClassifiedRow) []*domain.LogicalOrder {
	var orders []*domain.LogicalOrder
	byID := make(map[string]*domain.LogicalOrder)

	for i := range rows {
		row := rows[i]
		row.LogicalOrderID = ResolveLogicalOrderID(row.TransactionID, row.ParentTransactionID)

		order, ok := byID[row.LogicalOrderID]
		if !ok {
			order = &domain.LogicalOrder{ID: row.LogicalOrderID}
			byID[row.LogicalOrderID] = order
			orders = append(orders, order)
		}
		order.Rows = append(order.Rows, row)
	}

	for _, order := range orders {
		finalize(order)
	}
	return orders
}

func finalize(order *domain.LogicalOrder) {
	totalPaid := decimal.Zero
	totalNet := decimal.Zero
	financial := false

	for i := range order.Rows {
		row := &order.Rows[i]
		if order.MainItem == nil && row.ItemType == domain.ItemMain {
			order.MainItem = row
		}
		if row.IsFinancial {
			financial = true
			totalPaid = totalPaid.Add(row.CustomerPaid)
			totalNet = totalNet.Add(row.ProducerNet)
		}
	}
	if order.MainItem == nil {
		order.MainItem = &order.Rows[0]
	}

	order.IsFinancial = financial
	order.TotalCustomerPaid = totalPaid
	order.TotalProducerNet = totalNet
	if financial {
		order.Status = domain.StatusApproved
	} else {
		order.Status = order.MainItem.NormalizedStatus
	}
}
