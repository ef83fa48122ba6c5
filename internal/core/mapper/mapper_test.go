package mapper

import (
	"errors"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Transação":                  "transacao",
		"  Código da Transação  ":    "codigo da transacao",
		"E-mail do Comprador":        "e mail do comprador",
		"VALOR PAGO PELO COMPRADOR":  "valor pago pelo comprador",
		"Data__do__Pedido":           "data do pedido",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, esperava %q", in, got, want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	t.Run("Export reconhecido", func(t *testing.T) {
		header := []string{"Transação", "Status", "Produto", "Comprador"}
		if !DetectFormat(header) {
			t.Error("esperava aceitar cabeçalho de export de vendas")
		}
	})

	t.Run("Um sinal apenas nao basta", func(t *testing.T) {
		header := []string{"Status", "Coluna A", "Coluna B"}
		if DetectFormat(header) {
			t.Error("um único sinal não deve aceitar o arquivo")
		}
	})

	t.Run("CSV qualquer rejeitado", func(t *testing.T) {
		header := []string{"id", "nome", "valor"}
		if DetectFormat(header) {
			t.Error("esperava rejeitar CSV não relacionado")
		}
	})
}

func TestBuildMapping(t *testing.T) {
	t.Run("Variantes com acento mapeiam no mesmo campo", func(t *testing.T) {
		header := []string{"Transação", "Status da Compra", "Preço Total", "Comissão do Afiliado", "coluna desconhecida"}
		mapping, err := BuildMapping(header)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if mapping[0] != FieldTransactionID {
			t.Errorf("coluna 0: obteve %s", mapping[0])
		}
		if mapping[1] != FieldStatus {
			t.Errorf("coluna 1: obteve %s", mapping[1])
		}
		if mapping[2] != FieldCustomerPaid {
			t.Errorf("coluna 2: obteve %s", mapping[2])
		}
		if mapping[3] != FieldAffiliateCommission {
			t.Errorf("coluna 3: obteve %s", mapping[3])
		}
		if _, ok := mapping[4]; ok {
			t.Error("coluna desconhecida deveria ser ignorada, não mapeada")
		}
	})

	t.Run("Sem identificador de transacao e falha dura", func(t *testing.T) {
		header := []string{"Status", "Produto", "Comprador"}
		_, err := BuildMapping(header)
		if !errors.Is(err, ErrColunaObrigatoria) {
			t.Errorf("esperava ErrColunaObrigatoria, obteve %v", err)
		}
	})

	t.Run("Primeira coluna vence em duplicata", func(t *testing.T) {
		header := []string{"Transação", "Código da Transação"}
		mapping, err := BuildMapping(header)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if mapping[0] != FieldTransactionID {
			t.Errorf("coluna 0 deveria manter o campo: %v", mapping)
		}
		if _, ok := mapping[1]; ok {
			t.Error("coluna duplicada não deveria remapear o campo")
		}
	})
}
