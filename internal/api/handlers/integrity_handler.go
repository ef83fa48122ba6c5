// internal/api/handlers/integrity_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendalytics/importaHotmart/internal/api/responses"
	"github.com/vendalytics/importaHotmart/internal/core/integrity"
)

// IntegrityHandler recebe os exports de funis e ofertas e devolve o
// diagnóstico de consistência entre os dois cadastros.
type IntegrityHandler struct {
	service integrity.Service
	log     *zap.Logger
}

func NewIntegrityHandler(service integrity.Service, log *zap.Logger) *IntegrityHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntegrityHandler{service: service, log: log}
}

func (h *IntegrityHandler) HandleAnalyzeFunnelsOffers(c *gin.Context) {
	funnelsHeader, err := c.FormFile("funis")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de funis não encontrado ou inválido")
		return
	}
	offersHeader, err := c.FormFile("ofertas")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de ofertas não encontrado ou inválido")
		return
	}

	funnelsFile, err := funnelsHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de funis")
		return
	}
	defer funnelsFile.Close()

	offersFile, err := offersHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de ofertas")
		return
	}
	defer offersFile.Close()

	report, err := h.service.Analyze(funnelsFile, offersFile)
	if err != nil {
		h.log.Warn("análise de funis e ofertas falhou", zap.Error(err))
		responses.Error(c, http.StatusUnprocessableEntity, "Falha ao analisar os arquivos", err.Error())
		return
	}

	c.JSON(http.StatusOK, report)
}
