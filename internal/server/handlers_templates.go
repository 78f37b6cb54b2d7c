package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mekonnen/cv-studio/internal/layout"
)

// PageAssetRequest is one background page: either a reference to an already
// stored asset or inline base64 data to upload.
type PageAssetRequest struct {
	Ref         string `json:"ref,omitempty"`
	Data        string `json:"data,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// SaveTemplateRequest is the body for POST /templates. The whole template is
// sent on every save.
type SaveTemplateRequest struct {
	ID         string             `json:"id,omitempty"`
	OwnerID    string             `json:"ownerId" validate:"required"`
	Name       string             `json:"name" validate:"required"`
	OfficeName string             `json:"officeName" validate:"required"`
	Country    string             `json:"country" validate:"required"`
	Fields     []layout.Field     `json:"fields"`
	Pages      []PageAssetRequest `json:"pages" validate:"min=1"`
}

// handleSaveTemplate creates or replaces a template document.
func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	if !layout.IsCountry(req.Country) {
		s.errorFor(w, &ErrValidation{Field: "country", Message: "unknown destination country"})
		return
	}

	assets := make([]layout.PageAsset, 0, len(req.Pages))
	pages := make([]string, 0, len(req.Pages))
	for _, p := range req.Pages {
		if p.Ref != "" {
			assets = append(assets, layout.PageAsset{Ref: p.Ref})
			pages = append(pages, p.Ref)
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil || len(data) == 0 {
			s.errorFor(w, &ErrValidation{Field: "pages", Message: "page data must be non-empty base64"})
			return
		}
		assets = append(assets, layout.PageAsset{Data: data, ContentType: p.ContentType})
		pages = append(pages, "")
	}

	tpl := &layout.Template{
		ID:         req.ID,
		Name:       req.Name,
		OfficeName: req.OfficeName,
		Country:    req.Country,
		Pages:      pages,
		Fields:     req.Fields,
		CreatedAt:  time.Now().UTC(),
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	saved, err := s.store.SaveTemplate(r.Context(), req.OwnerID, tpl, assets)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, saved)
}

// handleGetTemplate returns one template by id.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tpl, err := s.store.GetTemplate(r.Context(), id)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if tpl == nil {
		s.errorFor(w, &ErrNotFound{Kind: "template", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, tpl)
}

// handleListTemplates returns an owner's templates, optionally filtered by
// the country query parameter.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	country := r.URL.Query().Get("country")
	if country != "" && !layout.IsCountry(country) {
		s.errorFor(w, &ErrValidation{Field: "country", Message: "unknown destination country"})
		return
	}

	templates, err := s.store.ListForOwner(r.Context(), ownerID, country)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if templates == nil {
		templates = []*layout.Template{}
	}
	s.jsonResponse(w, http.StatusOK, templates)
}

// handleDeleteTemplate removes a template and its page assets.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		s.errorFor(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
