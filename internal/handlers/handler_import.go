package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// importHandler handles HTTP requests for the bulk payment import workflow.
type importHandler struct {
	sessions       portssvc.SessionRegistrySvc
	templates      portssvc.TemplateSvc
	maxUploadBytes int64
}

// RegisterImportRoutes registers the template download and import session routes.
func RegisterImportRoutes(rg *gin.RouterGroup, sessions portssvc.SessionRegistrySvc, templates portssvc.TemplateSvc, maxUploadBytes int64) {
	h := &importHandler{sessions: sessions, templates: templates, maxUploadBytes: maxUploadBytes}

	imports := rg.Group("/imports")
	{
		imports.GET("/template", h.downloadTemplate)
		imports.POST("", h.createSession)
		imports.GET("/:sessionID", h.getSession)
		imports.DELETE("/:sessionID", h.deleteSession)
		imports.POST("/:sessionID/upload", h.uploadFile)
		imports.POST("/:sessionID/validate", h.validate)
		imports.GET("/:sessionID/preview", h.preview)
		imports.POST("/:sessionID/process", h.process)
		imports.POST("/:sessionID/cancel", h.cancel)
		imports.POST("/:sessionID/reset", h.reset)
		imports.GET("/:sessionID/report", h.report)
	}
}

// downloadTemplate godoc
// @Summary Download the import template
// @Description Returns a CSV (default) or XLSX template with example rows and filling instructions
// @Tags imports
// @Produce  octet-stream
// @Param   format query string false "csv or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Unknown format"
// @Failure 500 {object} map[string]string "Failed to generate template"
// @Security BearerAuth
// @Router /imports/template [get]
func (h *importHandler) downloadTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var (
		file domain.TemplateFile
		err  error
	)
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		file, err = h.templates.GenerateTemplate()
	case "xlsx":
		file, err = h.templates.GenerateXLSXTemplate()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	if err != nil {
		respondError(c, logger, err, "Failed to generate template")
		return
	}

	logger.Info("Template generated", slog.String("filename", file.Filename))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// createSession godoc
// @Summary Open an import session
// @Tags imports
// @Produce  json
// @Success 201 {object} dto.CreateSessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /imports [post]
func (h *importHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create import session")
		return
	}

	logger.Info("Import session created", slog.String("session_id", session.ID))
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{SessionID: session.ID, State: session.Workflow.GetState().State})
}

// getSession godoc
// @Summary Get the state of an import session
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} domain.WorkflowSnapshot
// @Failure 404 {object} map[string]string "Session not found"
// @Security BearerAuth
// @Router /imports/{sessionID} [get]
func (h *importHandler) getSession(c *gin.Context) {
	session, _, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Workflow.GetState())
}

// deleteSession godoc
// @Summary Close an import session
// @Description Cancels any running batch and forgets the session
// @Tags imports
// @Param   sessionID path string true "Session ID"
// @Success 204 "Session closed"
// @Failure 404 {object} map[string]string "Session not found"
// @Security BearerAuth
// @Router /imports/{sessionID} [delete]
func (h *importHandler) deleteSession(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}
	session.Workflow.Reset(c.Request.Context())
	h.sessions.Remove(session.ID)
	logger.Info("Import session closed")
	c.Status(http.StatusNoContent)
}

// uploadFile godoc
// @Summary Upload a CSV or XLSX file
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   file formData file true "Import file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "Missing file"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 422 {object} map[string]string "File could not be parsed"
// @Security BearerAuth
// @Router /imports/{sessionID}/upload [post]
func (h *importHandler) uploadFile(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit)})
			return
		}
		logger.Warn("Missing upload file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, logger, err, "Failed to read uploaded file")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		respondError(c, logger, err, "Failed to read uploaded file")
		return
	}

	rows, err := session.Workflow.UploadFile(c.Request.Context(), domain.UploadedFile{Name: header.Filename, Content: content})
	if err != nil {
		respondError(c, logger, err, "Failed to process uploaded file")
		return
	}

	logger.Info("File uploaded", slog.String("filename", header.Filename), slog.Int("rows", len(rows)))
	c.JSON(http.StatusOK, dto.UploadResponse{FileName: header.Filename, TotalRows: len(rows)})
}

// validate godoc
// @Summary Validate the uploaded rows
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.ValidateResponse
// @Failure 409 {object} map[string]string "Nothing uploaded or session busy"
// @Security BearerAuth
// @Router /imports/{sessionID}/validate [post]
func (h *importHandler) validate(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}
	validated, err := session.Workflow.ValidateData(c.Request.Context(), nil)
	if err != nil {
		respondError(c, logger, err, "Failed to validate rows")
		return
	}
	resp := dto.NewValidateResponse(validated)
	logger.Info("Rows validated", slog.Int("valid", resp.ValidRows), slog.Int("invalid", resp.InvalidRows))
	c.JSON(http.StatusOK, resp)
}

// preview godoc
// @Summary Preview the validated rows
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} domain.Preview
// @Security BearerAuth
// @Router /imports/{sessionID}/preview [get]
func (h *importHandler) preview(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}
	view, err := session.Workflow.GeneratePreview(c.Request.Context(), nil)
	if err != nil {
		respondError(c, logger, err, "Failed to generate preview")
		return
	}
	c.JSON(http.StatusOK, view)
}

// process godoc
// @Summary Post the valid rows
// @Description Starts batch processing in the background. Poll the session for progress.
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 202 {object} dto.ProcessAcceptedResponse
// @Failure 409 {object} map[string]string "Session is not ready to process"
// @Security BearerAuth
// @Router /imports/{sessionID}/process [post]
func (h *importHandler) process(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}
	if state := session.Workflow.GetState().State; state != domain.StatePreviewing {
		logger.Warn("Process requested in wrong state", slog.String("state", string(state)))
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("session is %s, validate the file before processing", state)})
		return
	}

	// The batch outlives the request; keep its values (user, logger) but not its deadline.
	ctx := context.WithoutCancel(c.Request.Context())
	run, err := session.Workflow.StartBatch(ctx, nil)
	if err != nil {
		respondError(c, logger, err, "Failed to start processing")
		return
	}
	go func() {
		report, err := run()
		if err != nil {
			logger.Error("Batch processing failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("Batch processing finished",
			slog.String("batch_id", report.BatchID),
			slog.Int("posted", report.PostedRows),
			slog.Int("failed", report.FailedRows))
	}()

	c.JSON(http.StatusAccepted, dto.ProcessAcceptedResponse{SessionID: session.ID, State: domain.StateProcessing})
}

// cancel godoc
// @Summary Cancel processing
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} domain.CancelResult
// @Failure 409 {object} domain.CancelResult "No processing in progress"
// @Security BearerAuth
// @Router /imports/{sessionID}/cancel [post]
func (h *importHandler) cancel(c *gin.Context) {
	session, logger, ok := h.lookup(c)
	if !ok {
		return
	}
	result := session.Workflow.CancelProcessing(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusConflict, result)
		return
	}
	logger.Info("Import cancelled")
	c.JSON(http.StatusOK, result)
}

// reset godoc
// @Summary Reset the session to idle
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} domain.WorkflowSnapshot
// @Security BearerAuth
// @Router /imports/{sessionID}/reset [post]
func (h *importHandler) reset(c *gin.Context) {
	session, _, ok := h.lookup(c)
	if !ok {
		return
	}
	session.Workflow.Reset(c.Request.Context())
	c.JSON(http.StatusOK, session.Workflow.GetState())
}

// report godoc
// @Summary Get the final import report
// @Tags imports
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} domain.ImportReport
// @Failure 404 {object} map[string]string "No report yet"
// @Security BearerAuth
// @Router /imports/{sessionID}/report [get]
func (h *importHandler) report(c *gin.Context) {
	session, _, ok := h.lookup(c)
	if !ok {
		return
	}
	snapshot := session.Workflow.GetState()
	if snapshot.Report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report available", "workflowState": snapshot.State})
		return
	}
	c.JSON(http.StatusOK, snapshot.Report)
}

// lookup resolves the session in the path and checks it belongs to the caller.
// It writes the error response itself and returns ok=false when the request should stop.
func (h *importHandler) lookup(c *gin.Context) (*portssvc.ImportSession, *slog.Logger, bool) {
	sessionID := c.Param("sessionID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("session_id", sessionID))

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, logger, false
	}

	session, found := h.sessions.Get(sessionID)
	if !found {
		logger.Warn("Import session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "import session not found"})
		return nil, logger, false
	}
	if session.CreatedBy != userID {
		logger.Warn("Import session belongs to another user", slog.String("owner", session.CreatedBy))
		c.JSON(http.StatusForbidden, gin.H{"error": "import session belongs to another user"})
		return nil, logger, false
	}

	c.Request = c.Request.WithContext(middleware.WithLogger(c.Request.Context(), logger))
	return session, logger, true
}
