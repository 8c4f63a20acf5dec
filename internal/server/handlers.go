package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"movierag/internal/auth"
	apperrors "movierag/internal/common/errors"
	"movierag/internal/common/validation"
	"movierag/internal/history"
	"movierag/internal/llm"
	"movierag/internal/models"
	"movierag/internal/tmdb"
)

// defaultUsername backs /process_query when the caller sends no username.
const defaultUsername = "default_user"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Movie recommendation service is running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeValidated(r, &req, validation.SignupSchema); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError(err.Error()))
		return
	}

	user, err := s.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		s.writeError(w, http.StatusConflict, apperrors.NewUsernameTakenError(req.Username))
		return
	case errors.Is(err, auth.ErrEmailRegistered):
		s.writeError(w, http.StatusConflict, apperrors.NewEmailRegisteredError())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, apperrors.NewExternalServiceError("auth-store", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeValidated(r, &req, validation.LoginSchema); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError(err.Error()))
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, apperrors.NewInvalidCredentialsError())
		return
	case errors.Is(err, auth.ErrCredentialsCorrupt):
		s.writeError(w, http.StatusInternalServerError, apperrors.NewCredentialsCorruptError(req.Email))
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, apperrors.NewExternalServiceError("auth-store", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	sessions, err := s.chats.ListChats(r.Context(), username)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var session models.ChatSession
	if err := decodeValidated(r, &session, validation.ChatCreateSchema); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError(err.Error()))
		return
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if session.CreatedAt == "" {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if err := s.chats.UpsertChat(r.Context(), username, session); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleUpsertChat(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	chatID := chi.URLParam(r, "chatID")

	var session models.ChatSession
	if err := decodeValidated(r, &session, validation.ChatSessionSchema); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError(err.Error()))
		return
	}
	if session.ID != chatID {
		s.writeError(w, http.StatusBadRequest, apperrors.NewChatIDMismatchError(chatID, session.ID))
		return
	}
	session.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.chats.UpsertChat(r.Context(), username, session); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	chatID := chi.URLParam(r, "chatID")

	if err := s.chats.DeleteChat(r.Context(), username, chatID); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleProcessQuery(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	username := r.URL.Query().Get("username")
	if username == "" {
		username = defaultUsername
	}

	start := time.Now()
	resp, err := s.queries.Process(r.Context(), username, query)
	if err != nil {
		if errors.Is(err, llm.ErrInferenceCallFailed) || errors.Is(err, llm.ErrInferenceTimeout) {
			s.writeError(w, http.StatusBadGateway, apperrors.NewInferenceCallFailedError("query-pipeline", err))
			return
		}
		s.writeError(w, http.StatusInternalServerError, apperrors.NewExternalServiceError("query-pipeline", err))
		return
	}

	s.obs.RecordQueryProcessed(r.Context(), resp.Mode)
	s.obs.RecordQueryDuration(r.Context(), time.Since(start), resp.Mode)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrailer(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "movieTitle")

	url, err := s.tmdb.TrailerURL(r.Context(), title)
	if err != nil {
		s.metadataError(w, title, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"trailer_url": url})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "movieTitle")

	url, err := s.tmdb.PosterURL(r.Context(), title)
	if err != nil {
		s.metadataError(w, title, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image_url": url})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrStoreUnavailable) {
		s.writeError(w, http.StatusServiceUnavailable, apperrors.NewHistoryStoreUnavailableError(err))
		return
	}
	s.writeError(w, http.StatusInternalServerError, apperrors.NewExternalServiceError("chat-store", err))
}

func (s *Server) metadataError(w http.ResponseWriter, title string, err error) {
	switch {
	case errors.Is(err, tmdb.ErrTrailerNotFound):
		s.writeError(w, http.StatusNotFound, apperrors.NewTrailerNotFoundError(title))
	case errors.Is(err, tmdb.ErrMovieNotFound):
		s.writeError(w, http.StatusNotFound, apperrors.NewMovieNotFoundError(title))
	default:
		s.writeError(w, http.StatusBadGateway, apperrors.NewMetadataLookupFailedError(err))
	}
}

// decodeValidated reads the request body once, checks it against the schema
// and then decodes it into dst.
func decodeValidated(r *http.Request, dst interface{}, schema map[string]interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errors.New("unable to read request body")
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return errors.New("request body is not valid JSON")
	}
	if err := validation.Validate(raw, schema); err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError reports a failure as a stable error code plus a human message.
// Server-side causes are logged, not leaked to the client.
func (s *Server) writeError(w http.ResponseWriter, status int, stdErr *apperrors.StandardError) {
	if status >= http.StatusInternalServerError {
		s.logger.WithError(stdErr).Error("request failed", map[string]interface{}{
			"code":     stdErr.Code,
			"category": apperrors.GetErrorCategory(stdErr.Code),
		})
	}
	writeJSON(w, status, map[string]interface{}{
		"error":     stdErr.Message,
		"code":      stdErr.Code,
		"retryable": stdErr.Retryable,
	})
}
