package handlers

import (
	"errors"
	"net/http"

	"casebrief-backend/models"
	"casebrief-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EvidenceHandler handles HTTP requests for evidence upload and polling
type EvidenceHandler struct {
	caseService     *service.CaseService
	analysisService *service.AnalysisService
}

// NewEvidenceHandler creates a new evidence handler
func NewEvidenceHandler(caseService *service.CaseService, analysisService *service.AnalysisService) *EvidenceHandler {
	return &EvidenceHandler{
		caseService:     caseService,
		analysisService: analysisService,
	}
}

// UploadEvidence handles POST /api/cases/:id/evidence. The file is stored,
// a pending record is created, and the analysis job is queued before the
// response goes out.
func (h *EvidenceHandler) UploadEvidence(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CASE_ID",
				"message": "Invalid case id format",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILE",
				"message": "A file is required in the 'file' form field",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.caseService.AddEvidence(c.Request.Context(), service.AddEvidenceRequest{
		CaseID:      caseID,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        file,
	})
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CASE_NOT_FOUND",
					"message": "Case not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.analysisService.Submit(c.Request.Context(), result.Evidence.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUEUE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	result.Evidence.Status = models.StatusQueued

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data":    result.Evidence,
	})
}

// GetEvidence handles GET /api/evidence/:id. Clients poll this endpoint
// until the record reaches a terminal status.
func (h *EvidenceHandler) GetEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_EVIDENCE_ID",
				"message": "Invalid evidence id format",
			},
		})
		return
	}

	result, err := h.caseService.GetEvidence(c.Request.Context(), service.GetEvidenceRequest{ID: id})
	if err != nil {
		if errors.Is(err, service.ErrEvidenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EVIDENCE_NOT_FOUND",
					"message": "Evidence not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GET_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Evidence,
	})
}
