package resolver

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vendalytics/importaHotmart/internal/domain"
)

func TestResolveLogicalOrderID(t *testing.T) {
	cases := []struct {
		name   string
		txID   string
		parent string
		want   string
	}{
		{"Sem sufixo", "TX1", "", "TX1"},
		{"Sufixo C1", "TX1C1", "", "TX1"},
		{"Sufixo C2", "TX1C2", "", "TX1"},
		{"Id real da plataforma", "HP0123456789C12", "", "HP0123456789"},
		{"Pai explicito vence o proprio id", "TX2", "TX9", "TX9"},
		{"Raiz terminada em letra nao e desmontada", "HPABC", "", "HPABC"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ResolveLogicalOrderID(c.txID, c.parent); got != c.want {
				t.Errorf("ResolveLogicalOrderID(%q, %q) = %q, esperava %q", c.txID, c.parent, got, c.want)
			}
		})
	}
}

func row(txID, parent string, itemType domain.ItemType, status domain.OrderStatus, financial bool, paid, net string) domain.ClassifiedRow {
	return domain.ClassifiedRow{
		RawTransactionRow: domain.RawTransactionRow{
			TransactionID:       txID,
			ParentTransactionID: parent,
			CustomerPaid:        decimal.RequireFromString(paid),
			ProducerNet:         decimal.RequireFromString(net),
		},
		NormalizedStatus: status,
		IsFinancial:      financial,
		ItemType:         itemType,
	}
}

func TestGroup(t *testing.T) {
	t.Run("Sub-transacoes agrupam na raiz", func(t *testing.T) {
		rows := []domain.ClassifiedRow{
			row("TX1", "", domain.ItemMain, domain.StatusApproved, true, "100", "80"),
			row("TX1C1", "", domain.ItemBump, domain.StatusApproved, true, "27", "20"),
			row("TX1C2", "", domain.ItemBump, domain.StatusCancelled, false, "47", "35"),
		}
		orders := Group(rows)
		if len(orders) != 1 {
			t.Fatalf("esperava 1 pedido lógico, obteve %d", len(orders))
		}
		order := orders[0]
		if order.ID != "TX1" {
			t.Errorf("id: obteve %q", order.ID)
		}
		if len(order.Rows) != 3 {
			t.Errorf("esperava 3 linhas, obteve %d", len(order.Rows))
		}
		if !order.IsFinancial {
			t.Error("uma linha aprovada torna o pedido inteiro financeiro")
		}
		// Totais somam apenas as linhas financeiras.
		if order.TotalCustomerPaid.String() != "127" {
			t.Errorf("totalCustomerPaid: obteve %s", order.TotalCustomerPaid)
		}
		if order.TotalProducerNet.String() != "100" {
			t.Errorf("totalProducerNet: obteve %s", order.TotalProducerNet)
		}
		if order.MainItem.TransactionID != "TX1" {
			t.Errorf("item principal: obteve %s", order.MainItem.TransactionID)
		}
	})

	t.Run("Pai explicito agrupa no pai", func(t *testing.T) {
		rows := []domain.ClassifiedRow{
			row("TX9", "", domain.ItemMain, domain.StatusApproved, true, "100", "80"),
			row("TX2", "TX9", domain.ItemBump, domain.StatusApproved, true, "27", "20"),
		}
		orders := Group(rows)
		if len(orders) != 1 || orders[0].ID != "TX9" {
			t.Fatalf("esperava agrupamento em TX9, obteve %+v", orders)
		}
	})

	t.Run("Pedido todo pendente nao e financeiro", func(t *testing.T) {
		rows := []domain.ClassifiedRow{
			row("TX5", "", domain.ItemMain, domain.StatusPending, false, "100", "80"),
			row("TX5C1", "", domain.ItemBump, domain.StatusPending, false, "27", "20"),
		}
		orders := Group(rows)
		order := orders[0]
		if order.IsFinancial {
			t.Error("pedido sem linha financeira não pode ser financeiro")
		}
		if order.Status != domain.StatusPending {
			t.Errorf("status agregado: obteve %s", order.Status)
		}
		if !order.TotalCustomerPaid.IsZero() {
			t.Errorf("total de pedido não financeiro deve ser zero, obteve %s", order.TotalCustomerPaid)
		}
	})

	t.Run("Sem item main usa a primeira linha", func(t *testing.T) {
		rows := []domain.ClassifiedRow{
			row("TX7C1", "", domain.ItemBump, domain.StatusApproved, true, "10", "8"),
			row("TX7C2", "", domain.ItemBump, domain.StatusApproved, true, "20", "16"),
		}
		orders := Group(rows)
		if orders[0].MainItem.TransactionID != "TX7C1" {
			t.Errorf("obteve %s", orders[0].MainItem.TransactionID)
		}
	})

	t.Run("Ordem de primeiro encontro preservada", func(t *testing.T) {
		rows := []domain.ClassifiedRow{
			row("B1", "", domain.ItemMain, domain.StatusApproved, true, "1", "1"),
			row("A1", "", domain.ItemMain, domain.StatusApproved, true, "1", "1"),
			row("B1C1", "", domain.ItemBump, domain.StatusApproved, true, "1", "1"),
		}
		orders := Group(rows)
		if len(orders) != 2 || orders[0].ID != "B1" || orders[1].ID != "A1" {
			t.Errorf("ordem estável quebrada: %v, %v", orders[0].ID, orders[1].ID)
		}
	})
}
