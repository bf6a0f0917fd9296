// Package api exposes the document management HTTP endpoints.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atende-ai/atende/internal/document_service/service"
	"github.com/atende-ai/atende/internal/document_service/store"
)

// Handler holds the endpoint handlers for document management.
type Handler struct {
	service *service.Service
}

// NewHandler creates a Handler over the document service.
func NewHandler(s *service.Service) *Handler {
	return &Handler{service: s}
}

// Upload handles POST /documents. Expects a multipart form with a "file"
// part and an optional "agentId" field.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), service.UploadInput{
		OrganizationID: OrganizationID(c),
		AgentID:        c.PostForm("agentId"),
		Filename:       fileHeader.Filename,
		Data:           data,
	})
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// List handles GET /documents with limit/offset pagination.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, total, err := h.service.List(c.Request.Context(), OrganizationID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     total,
	})
}

// Get handles GET /documents/:id.
func (h *Handler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"), OrganizationID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /documents/:id.
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), OrganizationID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Reprocess handles POST /documents/:id/reprocess.
func (h *Handler) Reprocess(c *gin.Context) {
	doc, err := h.service.Reprocess(c.Request.Context(), c.Param("id"), OrganizationID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, doc)
}
