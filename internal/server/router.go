package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// NewRouter mounts the marketplace endpoints under /api.
func NewRouter(m *Marketplace, logger *log.Logger) http.Handler {
	h := &handlers{m: m, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(logger), middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"Status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(m))

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.listJobs)
				r.Post("/", h.createJob)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getJob)
					r.Put("/", h.updateJob)
					r.With(RequireRole(models.RoleAdmin)).Post("/assign", h.assign)
					r.With(RequireRole(models.RoleVendor)).Post("/accept", h.accept)
					r.With(RequireRole(models.RoleVendor, models.RoleAdmin)).Post("/complete-sale", h.completeSale)
					r.Get("/notes", h.notes)
					r.Post("/notes", h.addNote)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(RequireRole(models.RoleAdmin))
				r.Get("/vendors/pending", h.vendors(false))
				r.Get("/vendors/approved", h.vendors(true))
				r.Put("/{id}/approval", h.approval)
				r.Delete("/{id}", h.removeUser)
			})
		})
	})
	return r
}

type handlers struct {
	m      *Marketplace
	logger *log.Logger
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}
	v := &validationError{}
	if creds.Email == "" {
		v.add("Email", "The Email field is required.")
	}
	if creds.Password == "" {
		v.add("Password", "The Password field is required.")
	}
	if v.any() {
		h.fail(w, v)
		return
	}

	token, acct, err := h.m.Login(creds.Email, creds.Password, creds.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"Token": token, "User": newUserPayload(&acct)})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registration
	if !decode(w, r, &req) {
		return
	}
	acct, err := h.m.Register(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"Message": "Registration successful", "User": newUserPayload(&acct)})
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	acct, _ := viewer(r)
	writeJSON(w, http.StatusOK, h.m.Jobs(acct))
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	acct, _ := viewer(r)
	job, err := h.m.Job(acct, chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, job, err)
}

func (h *handlers) createJob(w http.ResponseWriter, r *http.Request) {
	var draft jobDraft
	if !decode(w, r, &draft) {
		return
	}
	acct, _ := viewer(r)
	job, err := h.m.CreateJob(acct, draft)
	h.respond(w, http.StatusCreated, job, err)
}

func (h *handlers) updateJob(w http.ResponseWriter, r *http.Request) {
	fields := map[string]any{}
	if !decode(w, r, &fields) {
		return
	}
	acct, _ := viewer(r)
	job, err := h.m.UpdateJob(acct, chi.URLParam(r, "id"), fields)
	h.respond(w, http.StatusOK, job, err)
}

func (h *handlers) assign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VendorID string `json:"vendorId"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.VendorID == "" {
		h.fail(w, invalid("VendorId", "The VendorId field is required."))
		return
	}
	acct, _ := viewer(r)
	job, err := h.m.Assign(acct, chi.URLParam(r, "id"), body.VendorID)
	h.respond(w, http.StatusOK, job, err)
}

func (h *handlers) accept(w http.ResponseWriter, r *http.Request) {
	acct, _ := viewer(r)
	job, err := h.m.Accept(acct, chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, job, err)
}

func (h *handlers) completeSale(w http.ResponseWriter, r *http.Request) {
	var sale saleRequest
	if !decode(w, r, &sale) {
		return
	}
	acct, _ := viewer(r)
	job, err := h.m.CompleteSale(acct, chi.URLParam(r, "id"), sale)
	h.respond(w, http.StatusOK, job, err)
}

func (h *handlers) notes(w http.ResponseWriter, r *http.Request) {
	acct, _ := viewer(r)
	notes, err := h.m.Notes(acct, chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, notes, err)
}

func (h *handlers) addNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &body) {
		return
	}
	acct, _ := viewer(r)
	note, err := h.m.AddNote(acct, chi.URLParam(r, "id"), body.Content)
	h.respond(w, http.StatusCreated, note, err)
}

func (h *handlers) vendors(approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.m.Vendors(approved))
	}
}

func (h *handlers) approval(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsApproved *bool `json:"isApproved"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.IsApproved == nil {
		h.fail(w, invalid("IsApproved", "The IsApproved field is required."))
		return
	}
	user, err := h.m.SetApproval(chi.URLParam(r, "id"), *body.IsApproved)
	h.respond(w, http.StatusOK, user, err)
}

func (h *handlers) removeUser(w http.ResponseWriter, r *http.Request) {
	if err := h.m.RemoveUser(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) respond(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, status, v)
}

// fail maps marketplace errors onto the status codes and body shapes the client parses.
func (h *handlers) fail(w http.ResponseWriter, err error) {
	var v *validationError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": v})
	case errors.Is(err, shared.ErrAuthFailed):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, shared.ErrForbidden):
		writeMessage(w, http.StatusForbidden, reason(err))
	case errors.Is(err, shared.ErrJobNotFound):
		writeMessage(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, shared.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, errConflict):
		writeMessage(w, http.StatusConflict, reason(err))
	default:
		h.logger.Error("unhandled marketplace error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// reason strips the sentinel prefix from a wrapped "%w: detail" error.
func reason(err error) string {
	msg := err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		if rest, ok := strings.CutPrefix(msg, inner.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Request body is not valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
