// internal/core/classifier/classifier.go
package classifier

import (
	"regexp"
	"strings"

	"github.com/vendalytics/importaHotmart/internal/domain"
)

type statusEntry struct {
	status    domain.OrderStatus
	financial bool
}

// statusTable mapeia o status bruto (minúsculo) do export para o status
// normalizado e a efetividade financeira. Apenas o equivalente de "aprovado"
// movimenta dinheiro; todo o resto não gera lançamento no razão.
var statusTable = map[string]statusEntry{
	"aprovado":          {domain.StatusApproved, true},
	"aprovada":          {domain.StatusApproved, true},
	"approved":          {domain.StatusApproved, true},
	"compra aprovada":   {domain.StatusApproved, true},
	"completo":          {domain.StatusApproved, true},
	"complete":          {domain.StatusApproved, true},
	"concluida":         {domain.StatusApproved, true},
	"concluída":         {domain.StatusApproved, true},

	"pendente":             {domain.StatusPending, false},
	"pending":              {domain.StatusPending, false},
	"aguardando pagamento": {domain.StatusPending, false},
	"boleto impresso":      {domain.StatusPending, false},
	"printed_billet":       {domain.StatusPending, false},

	"cancelado":        {domain.StatusCancelled, false},
	"cancelada":        {domain.StatusCancelled, false},
	"cancelled":        {domain.StatusCancelled, false},
	"canceled":         {domain.StatusCancelled, false},
	"compra cancelada": {domain.StatusCancelled, false},

	"reembolsado": {domain.StatusRefunded, false},
	"reembolsada": {domain.StatusRefunded, false},
	"refunded":    {domain.StatusRefunded, false},
	"reembolso":   {domain.StatusRefunded, false},

	"chargeback": {domain.StatusChargeback, false},
	"disputa":    {domain.StatusChargeback, false},
	"dispute":    {domain.StatusChargeback, false},

	"expirado": {domain.StatusExpired, false},
	"expirada": {domain.StatusExpired, false},
	"expired":  {domain.StatusExpired, false},

	"atrasado": {domain.StatusOverdue, false},
	"overdue":  {domain.StatusOverdue, false},
}

// ClassifyStatus resolve o status bruto para (status normalizado, financeiro).
// Status desconhecido passa adiante como seu próprio valor normalizado com
// financeiro = false: nunca assumimos efeito financeiro de um status que não
// conhecemos.
func ClassifyStatus(raw string) (domain.OrderStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if entry, ok := statusTable[key]; ok {
		return entry.status, entry.financial
	}
	return domain.OrderStatus(key), false
}

// itemTypeAliases mapeia a "ferramenta de vendas" declarada no export para o
// papel do item.
var itemTypeAliases = map[string]domain.ItemType{
	"produto principal": domain.ItemMain,
	"principal":         domain.ItemMain,
	"main":              domain.ItemMain,
	"main product":      domain.ItemMain,

	"order bump": domain.ItemBump,
	"orderbump":  domain.ItemBump,
	"bump":       domain.ItemBump,

	"upsell":   domain.ItemUpsell,
	"up sell":  domain.ItemUpsell,
	"up-sell":  domain.ItemUpsell,
	"funil de vendas upsell": domain.ItemUpsell,

	"downsell":  domain.ItemDownsell,
	"down sell": domain.ItemDownsell,
	"down-sell": domain.ItemDownsell,
}

// ClassifyItemType resolve o papel do item em dois estágios: alias direto e,
// na ausência dele, a heurística de transação pai (linha que declara um pai
// diferente de si mesma é tratada como bump). A procedência diz qual caminho
// decidiu, já que a heurística é melhor-esforço e pode errar em alguns
// formatos de export.
func ClassifyItemType(itemTypeRaw, transactionID, parentTransactionID string) (domain.ItemType, domain.ItemTypeProvenance) {
	key := strings.ToLower(strings.TrimSpace(itemTypeRaw))
	if itemType, ok := itemTypeAliases[key]; ok {
		return itemType, domain.ProvenanceAlias
	}

	parent := strings.TrimSpace(parentTransactionID)
	if parent != "" && parent != strings.TrimSpace(transactionID) {
		return domain.ItemBump, domain.ProvenanceHeuristic
	}
	return domain.ItemMain, domain.ProvenanceDefault
}

// platformIDRegex captura uma cauda de 10+ dígitos depois de underscore, o
// formato dos IDs de entidade das plataformas de anúncio.
var platformIDRegex = regexp.MustCompile(`_(\d{10,})$`)

// DecomposeTracking quebra a string de atribuição pipe-delimitada em até cinco
// segmentos posicionais (source, adset, campanha, placement, criativo).
// Segmento ausente fica nil, não string vazia.
func DecomposeTracking(rawTracking string) domain.Tracking {
	var tracking domain.Tracking
	raw := strings.TrimSpace(rawTracking)
	if raw == "" {
		return tracking
	}

	segments := strings.Split(raw, "|")
	slots := []**string{&tracking.Source, &tracking.Adset, &tracking.Campaign, &tracking.Placement, &tracking.Creative}

	for i := 0; i < len(segments) && i < len(slots); i++ {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			continue
		}
		value := segment
		*slots[i] = &value
	}

	tracking.AdsetID = extractPlatformID(tracking.Adset)
	tracking.CampaignID = extractPlatformID(tracking.Campaign)
	tracking.AdID = extractPlatformID(tracking.Creative)
	return tracking
}

func extractPlatformID(segment *string) *string {
	if segment == nil {
		return nil
	}
	match := platformIDRegex.FindStringSubmatch(*segment)
	if match == nil {
		return nil
	}
	id := match[1]
	return &id
}

// Classify deriva todos os campos do classificador para uma linha mapeada.
// O LogicalOrderID é preenchido depois pelo resolvedor.
func Classify(row domain.RawTransactionRow) domain.ClassifiedRow {
	status, financial := ClassifyStatus(row.StatusRaw)
	itemType, provenance := ClassifyItemType(row.ItemTypeRaw, row.TransactionID, row.ParentTransactionID)

	return domain.ClassifiedRow{
		RawTransactionRow:  row,
		NormalizedStatus:   status,
		IsFinancial:        financial,
		ItemType:           itemType,
		ItemTypeProvenance: provenance,
		Tracking:           DecomposeTracking(row.RawTracking),
	}
}
