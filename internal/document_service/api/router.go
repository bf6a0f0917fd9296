package api

import "github.com/gin-gonic/gin"

// SetupRouter wires the document and RAG endpoints behind JWT auth. The RAG
// handler is passed in as a plain gin handler so the packages stay decoupled.
func SetupRouter(h *Handler, ragQuery gin.HandlerFunc, jwtSecret string, health gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	r.GET("/health", health)

	authMiddleware := AuthMiddleware(jwtSecret)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		documents := apiV1.Group("/documents")
		{
			documents.POST("", h.Upload)
			documents.GET("", h.List)
			documents.GET("/:id", h.Get)
			documents.DELETE("/:id", h.Delete)
			documents.POST("/:id/reprocess", h.Reprocess)
		}

		rag := apiV1.Group("/rag")
		{
			rag.POST("/query", ragQuery)
		}
	}

	return r
}
