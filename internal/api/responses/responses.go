// internal/api/responses/responses.go
package responses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Log é o logger estruturado global da aplicação.
var Log *zap.Logger

// InitLogger inicializa o logger global. Chamar uma única vez no startup.
func InitLogger(level string) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	Log = logger
	zap.ReplaceGlobals(logger)
}

// Error responde o erro em formato padronizado e registra os detalhes no log,
// sem vazá-los para o cliente além do que foi pedido.
func Error(c *gin.Context, statusCode int, message string, details ...string) {
	body := gin.H{"error": message}
	if len(details) > 0 {
		body["details"] = details
		if Log != nil {
			Log.Warn("erro na requisição",
				zap.Int("status", statusCode),
				zap.String("message", message),
				zap.Strings("details", details))
		}
	}
	c.AbortWithStatusJSON(statusCode, body)
}
