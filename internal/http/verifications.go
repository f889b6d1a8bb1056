package httpapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"foundgames-backend-go/internal/services"
	"foundgames-backend-go/internal/verification"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DiscordCheckRequest struct {
	Username string `json:"username"`
}

type ReviewRequest struct {
	Note string `json:"note"`
}

var documentTypes = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".heic": true,
}

func (s *Server) DiscordCheck(w http.ResponseWriter, r *http.Request) {
	var req DiscordCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		WriteError(w, http.StatusBadRequest, "Username is required")
		return
	}
	exists, err := s.Verifications.CheckDiscord(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	var req verification.Applicant
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	result, err := s.Verifications.Submit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// UploadDocument attaches a lease photo to a request in manual review.
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Please upload a document to verify your lease")
		return
	}
	defer file.Close()
	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !documentTypes[ext] {
		WriteError(w, http.StatusBadRequest, "Please upload a PDF or image of your lease")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	result, err := s.Verifications.AttachDocument(r.Context(), chi.URLParam(r, "id"), filename, contentType, header.Size, file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.Verifications.StatusByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (s *Server) AdminListVerifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.Verifications.List(r.Context(), services.VerificationFilter{
		Status:   q.Get("status"),
		Building: q.Get("building"),
		Search:   q.Get("search"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	dtos := make([]VerificationDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, verificationDTO(item))
	}
	WriteJSON(w, http.StatusOK, ItemsResponse[VerificationDTO]{Items: dtos})
}

func (s *Server) AdminGetVerification(w http.ResponseWriter, r *http.Request) {
	item, err := s.Verifications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, verificationDTO(item))
}

func (s *Server) ApproveVerification(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, true)
}

func (s *Server) RejectVerification(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, false)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, approve bool) {
	var req ReviewRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && err != io.EOF {
			WriteError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
	}
	item, err := s.Verifications.Review(r.Context(), CurrentProfileID(r), chi.URLParam(r, "id"), approve, req.Note)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, verificationDTO(item))
}

func (s *Server) AdminVerificationDocument(w http.ResponseWriter, r *http.Request) {
	rc, name, err := s.Verifications.OpenDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer rc.Close()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	if _, err := io.Copy(w, rc); err != nil {
		s.Log.Warn("document download interrupted", zap.String("name", name), zap.Error(err))
	}
}
