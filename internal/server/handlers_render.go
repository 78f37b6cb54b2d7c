package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mekonnen/cv-studio/internal/batch"
	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

// RenderRequest is the body for POST /render. The template comes either by
// id or inline (for previewing unsaved layouts).
type RenderRequest struct {
	TemplateID string           `json:"templateId,omitempty"`
	Template   *layout.Template `json:"template,omitempty"`
	Record     *record.Record   `json:"record" validate:"required"`
	Agency     string           `json:"agency,omitempty"`
}

// BatchRequest is the body for POST /render/batch: generate one document per
// saved template for the destination country. Overrides are keyed by template
// id; templates without an entry render from the record's own values.
type BatchRequest struct {
	OwnerID   string                    `json:"ownerId" validate:"required"`
	Country   string                    `json:"country" validate:"required"`
	Record    *record.Record            `json:"record" validate:"required"`
	Agency    string                    `json:"agency,omitempty"`
	Overrides map[string]batch.Override `json:"overrides,omitempty"`
}

// handleRender generates one PDF from one template.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	tpl := req.Template
	if tpl == nil {
		if req.TemplateID == "" {
			s.errorFor(w, &ErrValidation{Field: "templateId", Message: "either templateId or template is required"})
			return
		}
		var err error
		tpl, err = s.store.GetTemplate(r.Context(), req.TemplateID)
		if err != nil {
			s.errorFor(w, err)
			return
		}
		if tpl == nil {
			s.errorFor(w, &ErrNotFound{Kind: "template", ID: req.TemplateID})
			return
		}
	}

	doc, err := s.composer.Compose(r.Context(), tpl, req.Record, s.agencyOr(req.Agency))
	if err != nil {
		documentsFailed.Inc()
		s.errorFor(w, err)
		return
	}
	documentsGenerated.Inc()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.PDF)
}

// handleRenderBatch generates a document for every template the owner has
// saved for the country and streams them back as one zip archive. Per-
// template failures are reported in headers without failing the run.
func (s *Server) handleRenderBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	templates, err := s.store.ListForOwner(r.Context(), req.OwnerID, req.Country)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if len(templates) == 0 {
		s.errorFor(w, &ErrNoTemplates{Country: req.Country})
		return
	}

	sink := &batch.CollectSink{}
	run := batch.New(s.composer, sink, s.store)
	summary := run.Run(r.Context(), templates, req.Record, req.Overrides,
		s.agencyOr(req.Agency), req.OwnerID)

	documentsGenerated.Add(float64(summary.Generated))
	documentsFailed.Add(float64(summary.Failed))

	archive, err := zipDocuments(sink)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="documents.zip"`)
	w.Header().Set("X-Generated-Count", strconv.Itoa(summary.Generated))
	w.Header().Set("X-Failed-Count", strconv.Itoa(summary.Failed))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func zipDocuments(sink *batch.CollectSink) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, doc := range sink.Docs {
		f, err := zw.Create(doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to build archive: %w", err)
		}
		if _, err := f.Write(doc.PDF); err != nil {
			return nil, fmt.Errorf("failed to build archive: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) agencyOr(override string) string {
	if override != "" {
		return override
	}
	return s.agency
}
