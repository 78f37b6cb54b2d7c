package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/mekonnen/cv-studio/internal/scan"
)

// ImageRequest carries an uploaded image as base64.
type ImageRequest struct {
	Image    string `json:"image" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
}

// ScanResponse is the extracted passport data plus the derived contact name.
type ScanResponse struct {
	*scan.PassportData
	GuardianName string `json:"guardianName"`
}

// handleScanPassport extracts structured data from a passport photo.
func (s *Server) handleScanPassport(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Passport scanning is not configured")
		return
	}

	image, mimeType, ok := s.decodeImage(w, r)
	if !ok {
		return
	}

	data, err := s.scanner.Scan(r.Context(), image, mimeType)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ScanResponse{
		PassportData: data,
		GuardianName: scan.GuardianName(data.FullName),
	})
}

// handleRemoveBackground replaces a photo's background with a plain one.
func (s *Server) handleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	if s.remover == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Background removal is not configured")
		return
	}

	image, mimeType, ok := s.decodeImage(w, r)
	if !ok {
		return
	}

	edited, editedType, err := s.remover.RemoveBackground(r.Context(), image, mimeType)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"image":    base64.StdEncoding.EncodeToString(edited),
		"mimeType": editedType,
	})
}

func (s *Server) decodeImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, "", false
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return nil, "", false
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		s.errorFor(w, &ErrValidation{Field: "image", Message: "must be non-empty base64"})
		return nil, "", false
	}
	return image, req.MimeType, true
}
