package integrity

import (
	"strings"
	"testing"
)

const funnelsCSV = `id,project_id,name
f1,p1,Funil Lançamento
f2,p1,Funil Perpétuo
f3,p1,Funil Abandonado
`

const offersCSV = `id,project_id,funnel_id,id_funil,nome_produto,nome_oferta,origem
o1,p1,f1,,Curso A,Oferta Padrão,manual
o2,p1,f1,,Curso A,Oferta Padrão,manual
o3,p1,,Funil Lancamento,Curso B,Auto-importado,importacao
o4,p1,f9,,Curso C,Oferta C,manual
o5,,f2,,,Oferta D,
`

func analyze(t *testing.T) *Report {
	t.Helper()
	svc := NewService()
	report, err := svc.Analyze(strings.NewReader(funnelsCSV), strings.NewReader(offersCSV))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	return report
}

func TestAnalyzeTotals(t *testing.T) {
	report := analyze(t)
	if report.Totals.Funnels != 3 || report.Totals.Offers != 5 {
		t.Errorf("totais: %+v", report.Totals)
	}
}

func TestAnalyzeIntegrity(t *testing.T) {
	report := analyze(t)

	if report.Integrity.OffersMissingFunnelID != 1 {
		t.Errorf("offersMissingFunnelId: %d", report.Integrity.OffersMissingFunnelID)
	}
	if report.Integrity.OffersWithInvalidFunnel != 1 {
		t.Errorf("offersWithInvalidFunnelId: %d", report.Integrity.OffersWithInvalidFunnel)
	}
	if report.Samples.InvalidFunnelIDs["f9"] != 1 {
		t.Errorf("amostra de funil inválido: %v", report.Samples.InvalidFunnelIDs)
	}
	if report.Integrity.OffersMissingProjectID != 1 {
		t.Errorf("offersMissingProjectId: %d", report.Integrity.OffersMissingProjectID)
	}
	if report.Integrity.OffersMissingProductName != 1 {
		t.Errorf("offersMissingNomeProduto: %d", report.Integrity.OffersMissingProductName)
	}
	// f3 não tem nenhuma oferta apontando para ele.
	if report.Integrity.FunnelsWithoutOffers != 1 {
		t.Errorf("funnelsWithoutOffers: %d", report.Integrity.FunnelsWithoutOffers)
	}
}

func TestAnalyzeDuplicates(t *testing.T) {
	report := analyze(t)

	if report.Duplicates.Groups != 1 || report.Duplicates.ExtraRows != 1 {
		t.Errorf("duplicatas: %+v", report.Duplicates)
	}
	if len(report.Samples.TopDuplicateGroups) != 1 {
		t.Fatalf("amostras de duplicata: %+v", report.Samples.TopDuplicateGroups)
	}
	group := report.Samples.TopDuplicateGroups[0]
	if group.Count != 2 || group.ProductName != "Curso A" {
		t.Errorf("grupo duplicado: %+v", group)
	}
}

func TestAnalyzeSemantics(t *testing.T) {
	report := analyze(t)

	if report.Semantics.GenericOfferNames != 1 {
		t.Errorf("nomes genéricos: %d", report.Semantics.GenericOfferNames)
	}
	if report.Semantics.ByOrigin["manual"] != 3 {
		t.Errorf("origem manual: %v", report.Semantics.ByOrigin)
	}
	if report.Semantics.ByOrigin["(vazio)"] != 1 {
		t.Errorf("origem vazia: %v", report.Semantics.ByOrigin)
	}
}

func TestAnalyzeSuggestsNearestFunnel(t *testing.T) {
	report := analyze(t)

	var found bool
	for _, suggestion := range report.Suggestion {
		if suggestion.LegacyName == "Funil Lancamento" {
			found = true
			if suggestion.SuggestedFunnel != "f1" {
				t.Errorf("sugestão deveria apontar f1: %+v", suggestion)
			}
		}
	}
	if !found {
		t.Errorf("esperava sugestão para o nome legado sem acento: %+v", report.Suggestion)
	}
}
