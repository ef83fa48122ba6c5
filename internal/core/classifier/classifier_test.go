package classifier

import (
	"testing"

	"github.com/vendalytics/importaHotmart/internal/domain"
)

func TestClassifyStatus(t *testing.T) {
	t.Run("Somente aprovado e financeiro", func(t *testing.T) {
		status, financial := ClassifyStatus("Aprovado")
		if status != domain.StatusApproved || !financial {
			t.Errorf("obteve (%s, %v)", status, financial)
		}
		status, financial = ClassifyStatus("approved")
		if status != domain.StatusApproved || !financial {
			t.Errorf("obteve (%s, %v)", status, financial)
		}
	})

	t.Run("Demais status nao sao financeiros", func(t *testing.T) {
		for _, raw := range []string{"Pendente", "Cancelado", "Reembolsado", "chargeback", "Expirado", "Boleto Impresso"} {
			_, financial := ClassifyStatus(raw)
			if financial {
				t.Errorf("status %q não deveria ser financeiro", raw)
			}
		}
	})

	t.Run("Status desconhecido passa adiante sem efeito financeiro", func(t *testing.T) {
		status, financial := ClassifyStatus("Em Análise")
		if financial {
			t.Error("status desconhecido nunca deve assumir efeito financeiro")
		}
		if status != domain.OrderStatus("em análise") {
			t.Errorf("esperava pass-through minúsculo, obteve %q", status)
		}
	})
}

func TestClassifyItemType(t *testing.T) {
	t.Run("Alias direto", func(t *testing.T) {
		itemType, provenance := ClassifyItemType("Order Bump", "TX2", "")
		if itemType != domain.ItemBump || provenance != domain.ProvenanceAlias {
			t.Errorf("obteve (%s, %s)", itemType, provenance)
		}
	})

	t.Run("Heuristica da transacao pai", func(t *testing.T) {
		itemType, provenance := ClassifyItemType("", "TX2", "TX9")
		if itemType != domain.ItemBump {
			t.Errorf("esperava bump, obteve %s", itemType)
		}
		if provenance != domain.ProvenanceHeuristic {
			t.Errorf("fallback deve ser distinguível do alias: obteve %s", provenance)
		}
	})

	t.Run("Pai igual a si mesmo nao dispara heuristica", func(t *testing.T) {
		itemType, provenance := ClassifyItemType("", "TX2", "TX2")
		if itemType != domain.ItemMain || provenance != domain.ProvenanceDefault {
			t.Errorf("obteve (%s, %s)", itemType, provenance)
		}
	})

	t.Run("Default principal", func(t *testing.T) {
		itemType, provenance := ClassifyItemType("", "TX2", "")
		if itemType != domain.ItemMain || provenance != domain.ProvenanceDefault {
			t.Errorf("obteve (%s, %s)", itemType, provenance)
		}
	})
}

func TestDecomposeTracking(t *testing.T) {
	t.Run("Cinco segmentos com IDs de plataforma", func(t *testing.T) {
		tracking := DecomposeTracking("fb|cj_publico_frio_120210987654321098|camp_black_9876543210123|feed|criativo_video_23851234567890123")
		if tracking.Source == nil || *tracking.Source != "fb" {
			t.Errorf("source: %v", tracking.Source)
		}
		if tracking.AdsetID == nil || *tracking.AdsetID != "120210987654321098" {
			t.Errorf("adsetId: %v", tracking.AdsetID)
		}
		if tracking.CampaignID == nil || *tracking.CampaignID != "9876543210123" {
			t.Errorf("campaignId: %v", tracking.CampaignID)
		}
		if tracking.AdID == nil || *tracking.AdID != "23851234567890123" {
			t.Errorf("adId: %v", tracking.AdID)
		}
		if tracking.Placement == nil || *tracking.Placement != "feed" {
			t.Errorf("placement: %v", tracking.Placement)
		}
	})

	t.Run("Segmentos ausentes ficam nil", func(t *testing.T) {
		tracking := DecomposeTracking("organico|meu_publico")
		if tracking.Campaign != nil || tracking.Placement != nil || tracking.Creative != nil {
			t.Error("segmentos ausentes devem ser nil, não vazios")
		}
		if tracking.AdsetID != nil {
			t.Error("segmento sem cauda numérica não gera ID")
		}
	})

	t.Run("Menos de 10 digitos nao e ID", func(t *testing.T) {
		tracking := DecomposeTracking("fb|publico_123456789")
		if tracking.AdsetID != nil {
			t.Errorf("9 dígitos não deveriam virar ID: %v", tracking.AdsetID)
		}
	})

	t.Run("Vazio", func(t *testing.T) {
		tracking := DecomposeTracking("")
		if tracking.Source != nil {
			t.Error("tracking vazio deve ficar todo nil")
		}
	})
}
