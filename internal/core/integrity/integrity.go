// internal/core/integrity/integrity.go
package integrity

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/vendalytics/importaHotmart/internal/core/locale"
)

// Service diagnostica a integridade entre os exports de funis e de mapeamentos
// de oferta: funis órfãos, campos obrigatórios ausentes, grupos duplicados e
// nomes de oferta genéricos de importações antigas. Somente leitura, nenhuma
// escrita.
type Service interface {
	Analyze(funnelsFile io.Reader, offersFile io.Reader) (*Report, error)
}

type service struct{}

func NewService() Service {
	return &service{}
}

// Report é o laudo de formato fixo devolvido ao frontend.
type Report struct {
	Totals     Totals         `json:"totals"`
	Integrity  Integrity      `json:"integrity"`
	Duplicates Duplicates     `json:"duplicates"`
	Semantics  Semantics      `json:"semantics"`
	Samples    Samples        `json:"samples"`
	Suggestion []FunnelRematch `json:"suggestions,omitempty"`
}

type Totals struct {
	Funnels int `json:"funnels"`
	Offers  int `json:"offers"`
}

type Integrity struct {
	OffersMissingFunnelID    int `json:"offersMissingFunnelId"`
	OffersWithInvalidFunnel  int `json:"offersWithInvalidFunnelId"`
	OffersMissingProjectID   int `json:"offersMissingProjectId"`
	OffersMissingProductName int `json:"offersMissingNomeProduto"`
	OffersMissingOfferName   int `json:"offersMissingNomeOferta"`
	FunnelsWithoutOffers     int `json:"funnelsWithoutOffers"`
}

type Duplicates struct {
	Groups    int `json:"groups"`
	ExtraRows int `json:"extraRows"`
}

type Semantics struct {
	GenericOfferNames int            `json:"genericOfferNames"`
	ByOrigin          map[string]int `json:"byOrigem"`
}

type DuplicateGroup struct {
	Count       int    `json:"count"`
	ProjectID   string `json:"projectId"`
	FunnelID    string `json:"funnelId"`
	ProductName string `json:"nomeProduto"`
	OfferName   string `json:"nomeOferta"`
}

type FunnelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Samples struct {
	InvalidFunnelIDs     map[string]int   `json:"invalidFunnelIds"`
	FunnelsWithoutOffers []FunnelRef      `json:"funnelsWithoutOffers"`
	TopDuplicateGroups   []DuplicateGroup `json:"topDuplicateGroups"`
}

// FunnelRematch sugere o funil mais próximo para um mapeamento cujo nome
// legado de funil não resolve para nenhum funil existente.
type FunnelRematch struct {
	OfferProjectID  string `json:"projectId"`
	LegacyName      string `json:"idFunil"`
	SuggestedFunnel string `json:"suggestedFunnelId"`
	SuggestedName   string `json:"suggestedFunnelName"`
}

var genericOfferNames = map[string]bool{
	"auto-importado":                      true,
	"auto-importado de vendas existentes": true,
	"importado das vendas":                true,
}

var spaceRegex = regexp.MustCompile(`\s+`)

func normalize(value string) string {
	return spaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), " ")
}

const (
	maxSampleFunnels    = 10
	maxSampleDuplicates = 10
	maxSuggestions      = 20
)

func (s *service) Analyze(funnelsFile io.Reader, offersFile io.Reader) (*Report, error) {
	funnels, err := readRecords(funnelsFile)
	if err != nil {
		return nil, fmt.Errorf("leitura do arquivo de funis: %w", err)
	}
	offers, err := readRecords(offersFile)
	if err != nil {
		return nil, fmt.Errorf("leitura do arquivo de ofertas: %w", err)
	}

	report := &Report{
		Totals: Totals{Funnels: len(funnels), Offers: len(offers)},
		Semantics: Semantics{ByOrigin: make(map[string]int)},
		Samples: Samples{InvalidFunnelIDs: make(map[string]int)},
	}

	funnelIDs := make(map[string]bool)
	funnelsByName := make(map[string]FunnelRef)
	var funnelNames []string
	for _, funnel := range funnels {
		funnelIDs[funnel["id"]] = true
		name := normalize(funnel["name"])
		if name != "" {
			if _, seen := funnelsByName[name]; !seen {
				funnelsByName[name] = FunnelRef{ID: funnel["id"], Name: funnel["name"]}
				funnelNames = append(funnelNames, name)
			}
		}
	}

	offersByFunnel := make(map[string]int)
	duplicateGroups := make(map[string][]map[string]string)
	var duplicateOrder []string

	for _, offer := range offers {
		funnelID := offer["funnel_id"]
		switch {
		case funnelID == "":
			report.Integrity.OffersMissingFunnelID++
		case !funnelIDs[funnelID]:
			report.Integrity.OffersWithInvalidFunnel++
			report.Samples.InvalidFunnelIDs[funnelID]++
		default:
			offersByFunnel[funnelID]++
		}

		if offer["project_id"] == "" {
			report.Integrity.OffersMissingProjectID++
		}
		if offer["nome_produto"] == "" {
			report.Integrity.OffersMissingProductName++
		}
		if offer["nome_oferta"] == "" {
			report.Integrity.OffersMissingOfferName++
		}
		if genericOfferNames[normalize(offer["nome_oferta"])] {
			report.Semantics.GenericOfferNames++
		}

		origin := offer["origem"]
		if origin == "" {
			origin = "(vazio)"
		}
		report.Semantics.ByOrigin[origin]++

		key := strings.Join([]string{
			normalize(offer["project_id"]),
			normalize(offer["funnel_id"]),
			normalize(offer["nome_produto"]),
			normalize(offer["nome_oferta"]),
		}, "|")
		if _, seen := duplicateGroups[key]; !seen {
			duplicateOrder = append(duplicateOrder, key)
		}
		duplicateGroups[key] = append(duplicateGroups[key], offer)
	}

	for _, funnel := range funnels {
		if offersByFunnel[funnel["id"]] == 0 {
			report.Integrity.FunnelsWithoutOffers++
			if len(report.Samples.FunnelsWithoutOffers) < maxSampleFunnels {
				report.Samples.FunnelsWithoutOffers = append(report.Samples.FunnelsWithoutOffers,
					FunnelRef{ID: funnel["id"], Name: funnel["name"]})
			}
		}
	}

	var groups []DuplicateGroup
	for _, key := range duplicateOrder {
		rows := duplicateGroups[key]
		if len(rows) < 2 {
			continue
		}
		report.Duplicates.Groups++
		report.Duplicates.ExtraRows += len(rows) - 1
		groups = append(groups, DuplicateGroup{
			Count:       len(rows),
			ProjectID:   rows[0]["project_id"],
			FunnelID:    rows[0]["funnel_id"],
			ProductName: rows[0]["nome_produto"],
			OfferName:   rows[0]["nome_oferta"],
		})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	if len(groups) > maxSampleDuplicates {
		groups = groups[:maxSampleDuplicates]
	}
	report.Samples.TopDuplicateGroups = groups

	report.Suggestion = s.suggestFunnels(offers, funnelIDs, funnelsByName, funnelNames)
	return report, nil
}

// suggestFunnels aproxima, por proximidade de texto, o funil provável de
// mapeamentos cujo nome legado (id_funil) não resolve para nenhum funil.
func (s *service) suggestFunnels(offers []map[string]string, funnelIDs map[string]bool, funnelsByName map[string]FunnelRef, funnelNames []string) []FunnelRematch {
	if len(funnelNames) == 0 {
		return nil
	}
	cm := closestmatch.New(funnelNames, []int{3, 4})

	var suggestions []FunnelRematch
	for _, offer := range offers {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if offer["funnel_id"] != "" && funnelIDs[offer["funnel_id"]] {
			continue
		}
		legacy := normalize(offer["id_funil"])
		if legacy == "" {
			continue
		}
		if ref, ok := funnelsByName[legacy]; ok {
			suggestions = append(suggestions, FunnelRematch{
				OfferProjectID:  offer["project_id"],
				LegacyName:      offer["id_funil"],
				SuggestedFunnel: ref.ID,
				SuggestedName:   ref.Name,
			})
			continue
		}
		if match := cm.Closest(legacy); match != "" {
			ref := funnelsByName[match]
			suggestions = append(suggestions, FunnelRematch{
				OfferProjectID:  offer["project_id"],
				LegacyName:      offer["id_funil"],
				SuggestedFunnel: ref.ID,
				SuggestedName:   ref.Name,
			})
		}
	}
	return suggestions
}

// readRecords lê um CSV com cabeçalho e devolve cada linha como mapa
// coluna → valor, no espírito do DictReader usado nos scripts de diagnóstico.
func readRecords(file io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	text, err := locale.DecodeCharset(data)
	if err != nil {
		return nil, err
	}
	rows, err := locale.ParseDelimitedText(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var records []map[string]string
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[strings.TrimSpace(column)] = strings.TrimSpace(row[i])
			} else {
				record[strings.TrimSpace(column)] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}
