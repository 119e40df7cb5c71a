package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"binary-metadata/core/logger"
	"binary-metadata/core/metadata"
	"binary-metadata/feature/document/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for documents and metadata descriptors.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the document and descriptor routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	docs := app.Group("/documents")
	docs.Post("/", h.HandleCreate)
	docs.Get("/:id", h.HandleGet)
	docs.Patch("/:id", h.HandleUpdate)
	docs.Get("/:id/metadata", h.HandleReadMetadata)
	docs.Post("/:id/metadata/refresh", h.HandleRefresh)

	meta := app.Group("/metadata")
	meta.Get("/mappings", h.HandleListMappings)
	meta.Get("/rules", h.HandleListRules)
}

type writeRequest struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields"`
}

// HandleCreate creates a document.
// @Summary Create Document
// @Description Create a document from a JSON body or a multipart form with "type", "fields" (JSON object), "blob_path" and "file". Embedded metadata is reconciled before the document is stored.
// @Tags documents
// @Accept json,mpfd
// @Produce json
// @Param type formData string false "Document type (e.g. 'Picture')"
// @Param fields formData string false "Field values as a JSON object"
// @Param blob_path formData string false "Blob path of the uploaded file" default(file:content)
// @Param file formData file false "Binary content"
// @Success 201 {object} models.Document "Created document"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /documents [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, blobs, err := parseWriteRequest(c)
	if err != nil {
		return h.fail(c, l, "Invalid create request", err)
	}

	doc, err := h.service.Create(c.UserContext(), CreateInput{Type: req.Type, Fields: req.Fields, Blobs: blobs})
	if err != nil {
		return h.fail(c, l, "Document creation failed", err)
	}

	l.Info("Document created", zap.String("document_id", doc.ID), zap.String("type", doc.Type))
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleGet returns a document.
// @Summary Get Document
// @Description Get a stored document with its fields and blob references.
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document "Document"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /documents/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	doc, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, l, "Document lookup failed", err)
	}
	return c.JSON(doc)
}

// HandleUpdate modifies a document.
// @Summary Update Document
// @Description Update fields and/or replace a blob. Fields written here are pushed into the blob, a new blob without field edits refreshes the fields.
// @Tags documents
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Document ID"
// @Param fields formData string false "Field values as a JSON object"
// @Param blob_path formData string false "Blob path of the uploaded file" default(file:content)
// @Param file formData file false "Binary content"
// @Success 200 {object} models.Document "Updated document"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /documents/{id} [patch]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, blobs, err := parseWriteRequest(c)
	if err != nil {
		return h.fail(c, l, "Invalid update request", err)
	}

	doc, err := h.service.Update(c.UserContext(), c.Params("id"), UpdateInput{Fields: req.Fields, Blobs: blobs})
	if err != nil {
		return h.fail(c, l, "Document update failed", err)
	}
	return c.JSON(doc)
}

// HandleReadMetadata extracts metadata from a document blob.
// @Summary Read Blob Metadata
// @Description Run a processor against a document blob and return the extracted metadata. Nothing is stored.
// @Tags metadata
// @Produce json
// @Param id path string true "Document ID"
// @Param blob query string false "Blob path" default(file:content)
// @Param processor query string false "Processor ID, the default processor when empty"
// @Param keys query string false "Comma separated metadata keys, all when empty"
// @Param ignorePrefix query bool false "Strip group prefixes from keys"
// @Success 200 {object} models.MetadataResponse "Extracted metadata"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /documents/{id}/metadata [get]
func (h *Handler) HandleReadMetadata(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var keys []string
	for _, k := range strings.Split(c.Query("keys"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	resp, err := h.service.ReadMetadata(c.UserContext(), c.Params("id"), c.Query("blob"), c.Query("processor"), keys, c.QueryBool("ignorePrefix"))
	if err != nil {
		return h.fail(c, l, "Metadata read failed", err)
	}
	return c.JSON(resp)
}

// HandleRefresh re-extracts every applicable mapping into the document.
// @Summary Refresh Document Metadata
// @Description Re-read every mapping activated by the applicable rules from the document blobs and store the result.
// @Tags metadata
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document "Refreshed document"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /documents/{id}/metadata/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	doc, err := h.service.Refresh(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, l, "Metadata refresh failed", err)
	}
	return c.JSON(doc)
}

// HandleListMappings lists mapping descriptors.
// @Summary List Mappings
// @Tags metadata
// @Produce json
// @Success 200 {object} models.DescriptorList[metadata.MappingDescriptor] "Mappings"
// @Router /metadata/mappings [get]
func (h *Handler) HandleListMappings(c *fiber.Ctx) error {
	return c.JSON(listOf(h.service.Mappings()))
}

// HandleListRules lists rule descriptors in evaluation order.
// @Summary List Rules
// @Tags metadata
// @Produce json
// @Success 200 {object} models.DescriptorList[metadata.RuleDescriptor] "Rules"
// @Router /metadata/rules [get]
func (h *Handler) HandleListRules(c *fiber.Ctx) error {
	return c.JSON(listOf(h.service.Rules()))
}

func listOf[T any](items []*T) models.DescriptorList[T] {
	out := models.DescriptorList[T]{Count: len(items), Items: make([]T, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, *it)
	}
	return out
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, metadata.ErrNotFound):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Int("status", status), zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// parseWriteRequest reads a JSON body or a multipart form.
func parseWriteRequest(c *fiber.Ctx) (*writeRequest, map[string]*metadata.Blob, error) {
	var req writeRequest

	if c.Is("json") {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return &req, nil, nil
	}

	req.Type = c.FormValue("type")
	if raw := c.FormValue("fields"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Fields); err != nil {
			return nil, nil, fmt.Errorf("%w: fields must be a JSON object: %v", ErrInvalidInput, err)
		}
	}

	fh, err := c.FormFile("file")
	if err != nil {
		// No file part.
		return &req, nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}

	path := c.FormValue("blob_path")
	if path == "" {
		path = metadata.DefaultBlobPath
	}

	blob := &metadata.Blob{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}
	return &req, map[string]*metadata.Blob{path: blob}, nil
}
