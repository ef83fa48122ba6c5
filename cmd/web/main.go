// cmd/web/main.go
package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/vendalytics/importaHotmart/internal/api/handlers"
	"github.com/vendalytics/importaHotmart/internal/api/middleware"
	"github.com/vendalytics/importaHotmart/internal/api/responses"
	"github.com/vendalytics/importaHotmart/internal/config"
	"github.com/vendalytics/importaHotmart/internal/core/auth"
	"github.com/vendalytics/importaHotmart/internal/core/importer"
	"github.com/vendalytics/importaHotmart/internal/core/integrity"
	"github.com/vendalytics/importaHotmart/internal/storage"
)

// initFirestoreClient inicializa o cliente do Firestore.
func initFirestoreClient(ctx context.Context, cfg config.Config) *firestore.Client {
	client, err := firestore.NewClientWithDatabase(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente Firestore para o banco '%s': %v\n", cfg.FirestoreDatabase, err)
	}
	log.Printf("Conectado com sucesso ao Firestore, banco de dados: %s", cfg.FirestoreDatabase)
	return client
}

func main() {
	cfg := config.Load()
	responses.InitLogger(cfg.LogLevel)
	ctx := context.Background()
	firestoreClient := initFirestoreClient(ctx, cfg)
	defer firestoreClient.Close()

	store := storage.NewFirestoreStore(firestoreClient)
	importService := importer.NewService(store, responses.Log)
	integrityService := integrity.NewService()
	authService := auth.NewService(firestoreClient, []byte(cfg.JWTSecret), responses.Log)

	authHandler := handlers.NewAuthHandler(authService)
	importHandler := handlers.NewImportHandler(importService, cfg.ImportBatchSize, responses.Log)
	integrityHandler := handlers.NewIntegrityHandler(integrityService, responses.Log)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)
		protected := apiV1.Group("/")
		protected.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
		{
			imports := protected.Group("/")
			imports.Use(middleware.PermissionMiddleware("importacao"))
			{
				imports.POST("/import/hotmart", importHandler.HandleStartImport)
				imports.GET("/import/:id", importHandler.HandleJobStatus)
				imports.POST("/import/:id/cancel", importHandler.HandleCancelJob)
			}
			protected.POST("/analyze/funis-ofertas", integrityHandler.HandleAnalyzeFunnelsOffers)
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	log.Printf("🚀 Servidor iniciado e escutando na porta %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor: ", err)
	}
}
