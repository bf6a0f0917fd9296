// Package api exposes the RAG query HTTP endpoint.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	docapi "github.com/atende-ai/atende/internal/document_service/api"
	"github.com/atende-ai/atende/internal/rag_service/service"
)

// Handler holds the endpoint handlers for RAG queries.
type Handler struct {
	service *service.Service
}

// NewHandler creates a Handler over the RAG service.
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// QueryRequest is the JSON body of POST /rag/query.
type QueryRequest struct {
	Question string  `json:"question" binding:"required"`
	AgentID  string  `json:"agentId"`
	TopK     int     `json:"topK"`
	MinScore float64 `json:"minScore"`
}

// Query handles POST /rag/query.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Query(c.Request.Context(), service.QueryInput{
		OrganizationID: docapi.OrganizationID(c),
		AgentID:        req.AgentID,
		Question:       req.Question,
		TopK:           req.TopK,
		MinScore:       req.MinScore,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
