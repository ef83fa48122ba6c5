// internal/api/handlers/import_handler.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/vendalytics/importaHotmart/internal/api/responses"
	"github.com/vendalytics/importaHotmart/internal/core/importer"
	"github.com/vendalytics/importaHotmart/internal/core/mapper"
	"github.com/vendalytics/importaHotmart/internal/domain"
)

const (
	jobTTL             = time.Hour
	jobCleanupInterval = 30 * time.Minute
	// DefaultProvider é assumido quando a requisição não informa o provider.
	DefaultProvider = "hotmart"
)

// importJob é o estado mutável de uma execução em andamento, consultado pelos
// endpoints de progresso e cancelamento.
type importJob struct {
	mu       sync.Mutex
	id       string
	state    domain.JobState
	percent  int
	stage    string
	summary  *domain.ImportSummary
	errMsg   string
	cancelFn context.CancelFunc
}

func (j *importJob) snapshot() gin.H {
	j.mu.Lock()
	defer j.mu.Unlock()
	body := gin.H{
		"jobId":   j.id,
		"state":   j.state,
		"percent": j.percent,
		"stage":   j.stage,
	}
	if j.summary != nil {
		body["summary"] = j.summary
	}
	if j.errMsg != "" {
		body["error"] = j.errMsg
	}
	return body
}

func (j *importJob) finished() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state == domain.JobCompleted || j.state == domain.JobCancelled || j.state == domain.JobFailed
}

// ImportHandler expõe o importador de backfill: inicia a execução em
// background, reporta progresso e aceita cancelamento cooperativo.
type ImportHandler struct {
	service   importer.Service
	batchSize int
	jobs      *cache.Cache
	log       *zap.Logger
}

func NewImportHandler(service importer.Service, batchSize int, log *zap.Logger) *ImportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportHandler{
		service:   service,
		batchSize: batchSize,
		jobs:      cache.New(jobTTL, jobCleanupInterval),
		log:       log,
	}
}

// HandleStartImport valida o arquivo de forma síncrona (erro de validação
// bloqueia a importação antes de qualquer escrita) e dispara o pipeline em
// background, devolvendo o id do job para acompanhamento.
func (h *ImportHandler) HandleStartImport(c *gin.Context) {
	projectID := c.PostForm("projectId")
	if projectID == "" {
		responses.Error(c, http.StatusBadRequest, "Campo projectId é obrigatório")
		return
	}
	provider := c.PostForm("provider")
	if provider == "" {
		provider = DefaultProvider
	}

	fileHeader, err := c.FormFile("arquivo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de vendas não encontrado ou inválido")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo enviado")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível ler o arquivo enviado")
		return
	}

	if err := h.service.Validate(data, fileHeader.Filename); err != nil {
		responses.Error(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	job := &importJob{
		id:       uuid.NewString(),
		state:    domain.JobIdle,
		stage:    "Na fila",
		cancelFn: cancelFn,
	}
	h.jobs.Set(job.id, job, cache.DefaultExpiration)

	opts := importer.Options{
		ProjectID: projectID,
		Provider:  provider,
		BatchSize: h.batchSize,
	}
	go h.runJob(ctx, job, data, fileHeader.Filename, opts)

	h.log.Info("importação iniciada",
		zap.String("jobId", job.id),
		zap.String("projectId", projectID),
		zap.String("arquivo", fileHeader.Filename))
	c.JSON(http.StatusAccepted, gin.H{"jobId": job.id})
}

func (h *ImportHandler) runJob(ctx context.Context, job *importJob, data []byte, filename string, opts importer.Options) {
	defer job.cancelFn()

	progress := func(percent int, stage string) {
		job.mu.Lock()
		job.state = domain.JobProcessing
		job.percent = percent
		job.stage = stage
		job.mu.Unlock()
	}

	summary, err := h.service.Run(ctx, data, filename, opts, progress)

	job.mu.Lock()
	defer job.mu.Unlock()
	switch {
	case err != nil:
		job.state = domain.JobFailed
		job.errMsg = err.Error()
		h.log.Error("importação falhou", zap.String("jobId", job.id), zap.Error(err))
	case summary.Cancelled:
		job.state = domain.JobCancelled
		job.summary = summary
	default:
		job.state = domain.JobCompleted
		job.percent = 100
		job.summary = summary
	}
}

// HandleJobStatus devolve o estado corrente do job: percentual, etapa e, ao
// final, o resumo completo (inclusive parcial de execução cancelada).
func (h *ImportHandler) HandleJobStatus(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job.snapshot())
}

// HandleCancelJob liga a flag cooperativa de cancelamento. O job para de
// emitir escritas novas no próximo checkpoint (lote ou pedido) e devolve o
// resumo parcial.
func (h *ImportHandler) HandleCancelJob(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}
	if job.finished() {
		responses.Error(c, http.StatusConflict, "A importação já terminou")
		return
	}
	job.cancelFn()
	c.JSON(http.StatusOK, gin.H{"jobId": job.id, "cancelling": true})
}

func (h *ImportHandler) lookupJob(c *gin.Context) (*importJob, bool) {
	id := c.Param("id")
	value, found := h.jobs.Get(id)
	if !found {
		responses.Error(c, http.StatusNotFound, "Importação não encontrada")
		return nil, false
	}
	return value.(*importJob), true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, importer.ErrFormatoNaoReconhecido):
		return "O arquivo não foi reconhecido como um export de vendas. Confira se enviou o relatório correto."
	case errors.Is(err, importer.ErrSemLinhas):
		return "O arquivo não tem nenhuma linha de transação para importar."
	case errors.Is(err, importer.ErrExtensaoNaoSuportada):
		return "Extensão de arquivo não suportada. Envie um arquivo .csv, .txt, .xlsx ou .xls."
	case errors.Is(err, mapper.ErrColunaObrigatoria):
		return err.Error()
	default:
		return err.Error()
	}
}
