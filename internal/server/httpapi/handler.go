package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/gorilla/mux"
)

// Users is the account surface used by the handlers.
type Users interface {
	Register(ctx context.Context, email, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (string, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

// Entries is the diary surface used by the handlers.
type Entries interface {
	Upsert(ctx context.Context, userID string, date datekey.Key, content string) (*models.Entry, error)
	List(ctx context.Context, userID string, skip, limit int) ([]*models.Entry, error)
	Get(ctx context.Context, userID string, date datekey.Key) (*models.Entry, error)
	Delete(ctx context.Context, userID string, date datekey.Key) error
}

// Exporter writes a user's diary somewhere downloadable.
type Exporter interface {
	Export(ctx context.Context, userID string) (string, error)
}

type Handler struct {
	users   Users
	entries Entries
	export  Exporter
	logger  logging.Logger
	codec   datekey.Codec
}

func NewHandler(us Users, es Entries, ex Exporter, l logging.Logger) *Handler {
	return &Handler{
		users:   us,
		entries: es,
		export:  ex,
		logger:  l.With("module", "http_handler"),
		codec:   datekey.NewCodec(time.UTC),
	}
}

// NewRouter mounts the REST routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog(h.logger))

	r.Methods(http.MethodGet).Path("/ping").HandlerFunc(h.ping)
	r.Methods(http.MethodPost).Path("/signup").HandlerFunc(h.signup)
	r.Methods(http.MethodPost).Path("/token").HandlerFunc(h.token)

	e := r.PathPrefix("/entries").Subrouter()
	e.Use(h.requireAuth)
	e.Methods(http.MethodGet).Path("/").HandlerFunc(h.listEntries)
	e.Methods(http.MethodPost).Path("/").HandlerFunc(h.upsertEntry)
	e.Methods(http.MethodPost).Path("/export").HandlerFunc(h.exportEntries)
	e.Methods(http.MethodGet).Path("/{date}").HandlerFunc(h.getEntry)
	e.Methods(http.MethodDelete).Path("/{date}").HandlerFunc(h.deleteEntry)

	return r
}

type entryResponse struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{ID: e.ID, Date: e.Date.String(), Content: e.Content}
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type upsertRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type exportResponse struct {
	URL string `json:"url"`
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errBadBody)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, userResponse{ID: u.ID, Email: u.Email, Username: u.UserName})
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, errBadBody)
		return
	}

	token, err := h.users.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if errors.Is(err, common.ErrorUnauthorized) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Detail: "Incorrect username or password"})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	skip, err := intParam(r, "skip", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", common.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.entries.List(r.Context(), userID, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]entryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEntryResponse(e))
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) upsertEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errBadBody)
		return
	}
	date, err := h.codec.Parse(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	e, err := h.entries.Upsert(r.Context(), userID, date, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toEntryResponse(e))
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	date, err := h.codec.Parse(mux.Vars(r)["date"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	e, err := h.entries.Get(r.Context(), userID, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toEntryResponse(e))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	date, err := h.codec.Parse(mux.Vars(r)["date"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.entries.Delete(r.Context(), userID, date); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Entry deleted successfully"})
}

func (h *Handler) exportEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := h.export.Export(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, exportResponse{URL: url})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &paramError{name: name}
	}
	return v, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(r.Context(), "failed to write response", "error", err)
	}
}

// writeError maps service errors onto statuses with a {"detail": ...} body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, detail := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	h.writeJSON(w, r, code, errorResponse{Detail: detail})
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type paramError struct{ name string }

func (e *paramError) Error() string { return "invalid query parameter " + e.name }

var errBadBody = errors.New("malformed request body")

func statusFor(err error) (int, string) {
	var pe *paramError
	switch {
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, pe.Error()
	case errors.Is(err, errBadBody):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Entry not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, "Email or username already registered"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
