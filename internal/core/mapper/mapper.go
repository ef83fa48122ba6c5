// internal/core/mapper/mapper.go
package mapper

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field é um campo lógico do schema interno de importação.
type Field string

const (
	FieldTransactionID        Field = "transactionId"
	FieldParentTransactionID  Field = "parentTransactionId"
	FieldStatus               Field = "status"
	FieldOrderDate            Field = "orderDate"
	FieldConfirmationDate     Field = "confirmationDate"
	FieldBuyerName            Field = "buyerName"
	FieldBuyerEmail           Field = "buyerEmail"
	FieldBuyerPhone           Field = "buyerPhone"
	FieldBuyerDocument        Field = "buyerDocument"
	FieldBuyerCountry         Field = "buyerCountry"
	FieldCustomerPaid         Field = "customerPaid"
	FieldGrossBase            Field = "grossBase"
	FieldProducerNet          Field = "producerNet"
	FieldPlatformFee          Field = "platformFee"
	FieldAffiliateCommission  Field = "affiliateCommission"
	FieldCoproducerCommission Field = "coproducerCommission"
	FieldLocalTaxes           Field = "localTaxes"
	FieldInstallmentFee       Field = "installmentFee"
	FieldCurrency             Field = "currency"
	FieldProductCode          Field = "productCode"
	FieldProductName          Field = "productName"
	FieldOfferCode            Field = "offerCode"
	FieldOfferName            Field = "offerName"
	FieldItemType             Field = "itemType"
	FieldTracking             Field = "tracking"
	FieldAffiliateName        Field = "affiliateName"
)

// ErrColunaObrigatoria indica que o arquivo não possui a coluna de identificador
// de transação, sem a qual nenhuma linha pode ser importada.
var ErrColunaObrigatoria = errors.New("coluna de código da transação não encontrada no arquivo")

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeHeader remove acentos, baixa a caixa e colapsa separadores, para que
// variantes de grafia do mesmo cabeçalho caiam na mesma chave.
func NormalizeHeader(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToLower(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// headerAliases é a tabela muitos-para-um de variantes de cabeçalho já vistas
// nos exports (relatório de vendas e export unificado) para o campo lógico.
// As chaves já estão normalizadas.
var headerAliases = map[string]Field{
	"transacao":            FieldTransactionID,
	"codigo da transacao":  FieldTransactionID,
	"codigo de transacao":  FieldTransactionID,
	"transaction":          FieldTransactionID,
	"id da transacao":      FieldTransactionID,
	"transacao do pedido":  FieldParentTransactionID,
	"transacao principal":  FieldParentTransactionID,
	"transacao pai":        FieldParentTransactionID,
	"parent transaction":   FieldParentTransactionID,
	"status":               FieldStatus,
	"status da compra":     FieldStatus,
	"status da transacao":  FieldStatus,
	"data do pedido":       FieldOrderDate,
	"data da compra":       FieldOrderDate,
	"data da transacao":    FieldOrderDate,
	"data de confirmacao":  FieldConfirmationDate,
	"data da confirmacao":  FieldConfirmationDate,
	"data de aprovacao":    FieldConfirmationDate,
	"comprador":            FieldBuyerName,
	"nome do comprador":    FieldBuyerName,
	"cliente":              FieldBuyerName,
	"email":                FieldBuyerEmail,
	"email do comprador":   FieldBuyerEmail,
	"e mail":               FieldBuyerEmail,
	"e mail do comprador":  FieldBuyerEmail,
	"telefone":             FieldBuyerPhone,
	"telefone do comprador": FieldBuyerPhone,
	"ddd telefone":          FieldBuyerPhone,
	"documento":             FieldBuyerDocument,
	"cpf":                   FieldBuyerDocument,
	"cpf cnpj":              FieldBuyerDocument,
	"pais":                  FieldBuyerCountry,
	"pais do comprador":     FieldBuyerCountry,

	"valor pago pelo comprador": FieldCustomerPaid,
	"preco total":               FieldCustomerPaid,
	"valor da compra":           FieldCustomerPaid,
	"valor total":               FieldCustomerPaid,
	"preco base":                FieldGrossBase,
	"valor bruto":               FieldGrossBase,
	"preco do produto":          FieldGrossBase,
	"comissao do produtor":      FieldProducerNet,
	"valor liquido":             FieldProducerNet,
	"valor liquido do produtor": FieldProducerNet,
	"minha comissao":            FieldProducerNet,
	"taxa da plataforma":        FieldPlatformFee,
	"taxa hotmart":              FieldPlatformFee,
	"taxas":                     FieldPlatformFee,
	"comissao do afiliado":      FieldAffiliateCommission,
	"comissao afiliado":         FieldAffiliateCommission,
	"comissao do coprodutor":    FieldCoproducerCommission,
	"comissao coproducao":       FieldCoproducerCommission,
	"impostos locais":           FieldLocalTaxes,
	"impostos":                  FieldLocalTaxes,
	"imposto local":             FieldLocalTaxes,
	"taxa de parcelamento":      FieldInstallmentFee,
	"juros de parcelamento":     FieldInstallmentFee,
	"moeda":                     FieldCurrency,
	"codigo da moeda":           FieldCurrency,
	"moeda da compra":           FieldCurrency,

	"codigo do produto": FieldProductCode,
	"id do produto":     FieldProductCode,
	"produto":           FieldProductName,
	"nome do produto":   FieldProductName,
	"codigo da oferta":  FieldOfferCode,
	"codigo de oferta":  FieldOfferCode,
	"oferta":            FieldOfferName,
	"nome da oferta":    FieldOfferName,

	"ferramenta de vendas": FieldItemType,
	"ferramenta de venda":  FieldItemType,
	"sale tool":            FieldItemType,
	"tipo de item":         FieldItemType,
	"codigo de rastreamento": FieldTracking,
	"src":                    FieldTracking,
	"tracking":               FieldTracking,
	"utm":                    FieldTracking,
	"afiliado":               FieldAffiliateName,
	"nome do afiliado":       FieldAffiliateName,
}

// formatSignals são cabeçalhos canônicos cuja presença identifica um export de
// vendas reconhecido. Pelo menos dois precisam aparecer para o arquivo ser
// aceito.
var formatSignals = map[string]bool{
	"transacao":                 true,
	"codigo da transacao":       true,
	"status":                    true,
	"status da compra":          true,
	"produto":                   true,
	"nome do produto":           true,
	"comprador":                 true,
	"email do comprador":        true,
	"valor pago pelo comprador": true,
	"preco total":               true,
	"data do pedido":            true,
	"data da compra":            true,
}

const minFormatSignals = 2

// DetectFormat verifica se a linha de cabeçalho parece um export de vendas
// reconhecido. Rejeitar aqui evita interpretar silenciosamente um CSV qualquer
// como relatório de vendas.
func DetectFormat(headerRow []string) bool {
	matches := 0
	for _, header := range headerRow {
		if formatSignals[NormalizeHeader(header)] {
			matches++
			if matches >= minFormatSignals {
				return true
			}
		}
	}
	return false
}

// BuildMapping resolve cada coluna do cabeçalho para um campo lógico via tabela
// de aliases. Colunas não reconhecidas são ignoradas. A ausência do campo de
// identificador de transação é falha dura, antes de qualquer parse de linha.
func BuildMapping(headerRow []string) (map[int]Field, error) {
	mapping := make(map[int]Field)
	for idx, header := range headerRow {
		if field, ok := headerAliases[NormalizeHeader(header)]; ok {
			if _, taken := fieldIndex(mapping, field); !taken {
				mapping[idx] = field
			}
		}
	}

	if _, ok := fieldIndex(mapping, FieldTransactionID); !ok {
		return nil, ErrColunaObrigatoria
	}
	return mapping, nil
}

func fieldIndex(mapping map[int]Field, field Field) (int, bool) {
	for idx, f := range mapping {
		if f == field {
			return idx, true
		}
	}
	return 0, false
}
