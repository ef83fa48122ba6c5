// internal/core/importer/importer.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vendalytics/importaHotmart/internal/core/classifier"
	"github.com/vendalytics/importaHotmart/internal/core/locale"
	"github.com/vendalytics/importaHotmart/internal/core/mapper"
	"github.com/vendalytics/importaHotmart/internal/core/resolver"
	"github.com/vendalytics/importaHotmart/internal/core/spreadsheet"
	"github.com/vendalytics/importaHotmart/internal/core/writer"
	"github.com/vendalytics/importaHotmart/internal/domain"
)

// Erros de validação: fatais para a execução, reportados antes de qualquer
// escrita.
var (
	ErrFormatoNaoReconhecido = errors.New("o arquivo não parece um export de vendas reconhecido")
	ErrSemLinhas             = errors.New("nenhuma linha de transação aproveitável no arquivo")
	ErrExtensaoNaoSuportada  = errors.New("extensão de arquivo não suportada")
)

const (
	// DefaultBatchSize limita as escritas pendentes por lote e dá
	// granularidade ao progresso.
	DefaultBatchSize = 50
	// maxErrors limita a lista de erros por pedido no resumo.
	maxErrors = 50
)

// Options parametriza uma execução de importação.
type Options struct {
	ProjectID string
	Provider  string
	BatchSize int
}

// ProgressFunc recebe o percentual acumulado e a mensagem da etapa corrente.
type ProgressFunc func(percent int, stage string)

// Service executa o pipeline de backfill: tokenização, mapeamento,
// classificação, agrupamento e escrita reconciliada em lotes.
type Service interface {
	// Validate roda apenas as checagens fatais (formato e coluna
	// obrigatória), sem nenhuma escrita.
	Validate(data []byte, filename string) error
	// Run executa a importação completa. Cancelamento é cooperativo via
	// contexto, verificado a cada lote e a cada pedido; execução cancelada
	// devolve o resumo parcial acumulado, não erro.
	Run(ctx context.Context, data []byte, filename string, opts Options, progress ProgressFunc) (*domain.ImportSummary, error)
}

type service struct {
	store writer.Store
	log   *zap.Logger
}

func NewService(store writer.Store, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{store: store, log: log}
}

var stageMessages = map[domain.JobState]string{
	domain.JobValidating:       "Validando o arquivo",
	domain.JobParsing:          "Lendo as transações",
	domain.JobGrouping:         "Agrupando pedidos",
	domain.JobCheckingExisting: "Conferindo pedidos já existentes",
	domain.JobProcessing:       "Gravando pedidos",
	domain.JobCompleted:        "Importação concluída",
	domain.JobCancelled:        "Importação cancelada",
}

func (s *service) Validate(data []byte, filename string) error {
	_, _, err := s.prepare(data, filename)
	return err
}

// prepare decodifica o arquivo, tokeniza e resolve o mapeamento de colunas.
// Devolve a linha de cabeçalho mapeada e as linhas de dados.
func (s *service) prepare(data []byte, filename string) (map[int]mapper.Field, [][]string, error) {
	rows, err := s.tokenize(data, filename)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrSemLinhas
	}

	header := rows[0]
	if !mapper.DetectFormat(header) {
		return nil, nil, ErrFormatoNaoReconhecido
	}
	mapping, err := mapper.BuildMapping(header)
	if err != nil {
		return nil, nil, err
	}
	return mapping, rows[1:], nil
}

func (s *service) tokenize(data []byte, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		text, err := locale.DecodeCharset(data)
		if err != nil {
			return nil, fmt.Errorf("decodificação do arquivo: %w", err)
		}
		rows, err := locale.ParseDelimitedText(text)
		if err != nil {
			return nil, fmt.Errorf("tokenização do arquivo: %w", err)
		}
		return rows, nil
	case ".xlsx":
		return spreadsheet.ConvertXLSX(data)
	case ".xls":
		return spreadsheet.ConvertXLS(data)
	default:
		return nil, ErrExtensaoNaoSuportada
	}
}

func (s *service) Run(ctx context.Context, data []byte, filename string, opts Options, progress ProgressFunc) (*domain.ImportSummary, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	report := func(percent int, state domain.JobState) {
		progress(percent, stageMessages[state])
	}

	// validating
	report(5, domain.JobValidating)
	mapping, dataRows, err := s.prepare(data, filename)
	if err != nil {
		return nil, err
	}

	// parsing
	report(15, domain.JobParsing)
	summary := &domain.ImportSummary{}
	classified := s.parseRows(mapping, dataRows, summary)
	if len(classified) == 0 {
		return nil, ErrSemLinhas
	}

	// grouping
	report(25, domain.JobGrouping)
	orders := resolver.Group(classified)

	// checking-existing
	report(35, domain.JobCheckingExisting)
	w := writer.New(s.store, opts.ProjectID, opts.Provider, s.log)
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	existing, err := w.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("consulta de pedidos existentes: %w", err)
	}

	// processing, em lotes sequenciais de tamanho fixo
	batches := makeBatches(orders, opts.BatchSize)
	for i, batch := range batches {
		if ctx.Err() != nil {
			return s.cancelled(summary, report), nil
		}
		percent := 40 + int(60*float64(i)/float64(len(batches)))
		report(percent, domain.JobProcessing)

		for _, order := range batch {
			if ctx.Err() != nil {
				return s.cancelled(summary, report), nil
			}
			if existing[order.ID] {
				// Prioridade de fonte: o que a ingestão ao vivo já
				// gravou nunca é tocado pelo backfill.
				summary.OrdersSkipped++
				continue
			}
			if err := w.WriteOrder(ctx, order, summary); err != nil {
				// Isolamento de erro: um pedido ruim não derruba o
				// lote.
				s.log.Warn("falha ao processar pedido",
					zap.String("orderId", order.ID),
					zap.Error(err))
				if len(summary.Errors) < maxErrors {
					summary.Errors = append(summary.Errors, domain.OrderError{
						OrderID: order.ID,
						Message: err.Error(),
					})
				}
			}
		}
	}

	report(100, domain.JobCompleted)
	s.log.Info("importação concluída",
		zap.Int("totalRows", summary.TotalRows),
		zap.Int("ordersCreated", summary.OrdersCreated),
		zap.Int("ordersSkipped", summary.OrdersSkipped),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

func (s *service) cancelled(summary *domain.ImportSummary, report func(int, domain.JobState)) *domain.ImportSummary {
	summary.Cancelled = true
	report(100, domain.JobCancelled)
	s.log.Info("importação cancelada com resultado parcial",
		zap.Int("ordersCreated", summary.OrdersCreated))
	return summary
}

// parseRows converte cada linha de dados em RawTransactionRow via mapeamento e
// a classifica. Linha sem id de transação é ignorada; anomalia de número ou
// data vira zero/nil localmente, nunca aborta a linha.
func (s *service) parseRows(mapping map[int]mapper.Field, dataRows [][]string, summary *domain.ImportSummary) []domain.ClassifiedRow {
	var classified []domain.ClassifiedRow
	for _, record := range dataRows {
		summary.TotalRows++
		raw := mapRow(mapping, record)
		if strings.TrimSpace(raw.TransactionID) == "" {
			continue
		}
		classified = append(classified, classifier.Classify(raw))
	}
	return classified
}

func mapRow(mapping map[int]mapper.Field, record []string) domain.RawTransactionRow {
	var raw domain.RawTransactionRow
	for idx, field := range mapping {
		if idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		switch field {
		case mapper.FieldTransactionID:
			raw.TransactionID = value
		case mapper.FieldParentTransactionID:
			raw.ParentTransactionID = value
		case mapper.FieldStatus:
			raw.StatusRaw = value
		case mapper.FieldOrderDate:
			raw.OrderDate = locale.ParseLocalDateTime(value)
		case mapper.FieldConfirmationDate:
			raw.ConfirmationDate = locale.ParseLocalDateTime(value)
		case mapper.FieldBuyerName:
			raw.BuyerName = value
		case mapper.FieldBuyerEmail:
			raw.BuyerEmail = value
		case mapper.FieldBuyerPhone:
			raw.BuyerPhone = value
		case mapper.FieldBuyerDocument:
			raw.BuyerDocument = value
		case mapper.FieldBuyerCountry:
			raw.BuyerCountry = value
		case mapper.FieldCustomerPaid:
			raw.CustomerPaid = locale.ParseDecimal(value)
		case mapper.FieldGrossBase:
			raw.GrossBase = locale.ParseDecimal(value)
		case mapper.FieldProducerNet:
			raw.ProducerNet = locale.ParseDecimal(value)
		case mapper.FieldPlatformFee:
			raw.PlatformFee = locale.ParseDecimal(value)
		case mapper.FieldAffiliateCommission:
			raw.AffiliateCommission = locale.ParseDecimal(value)
		case mapper.FieldCoproducerCommission:
			raw.CoproducerCommission = locale.ParseDecimal(value)
		case mapper.FieldLocalTaxes:
			raw.LocalTaxes = locale.ParseDecimal(value)
		case mapper.FieldInstallmentFee:
			raw.InstallmentFee = locale.ParseDecimal(value)
		case mapper.FieldCurrency:
			raw.Currency = strings.ToUpper(value)
		case mapper.FieldProductCode:
			raw.ProductCode = value
		case mapper.FieldProductName:
			raw.ProductName = value
		case mapper.FieldOfferCode:
			raw.OfferCode = value
		case mapper.FieldOfferName:
			raw.OfferName = value
		case mapper.FieldItemType:
			raw.ItemTypeRaw = value
		case mapper.FieldTracking:
			raw.RawTracking = value
		case mapper.FieldAffiliateName:
			raw.AffiliateName = value
		}
	}
	return raw
}

func makeBatches(orders []*domain.LogicalOrder, size int) [][]*domain.LogicalOrder {
	var batches [][]*domain.LogicalOrder
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		batches = append(batches, orders[start:end])
	}
	return batches
}
