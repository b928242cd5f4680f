package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/lead-dashboard/internal/infra/mail"
	"github.com/xavierca1/lead-dashboard/internal/usecase"
)

// Encoder turns an export table into a downloadable file.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, table usecase.ExportTable) error
}

type ExportMailer interface {
	SendExport(to []string, data mail.ExportEmailData, content []byte) error
}

type LeadHandler struct {
	collections []entity.Collection
	bySlug      map[string]entity.Collection

	List        *usecase.ListLeadsUseCase
	Transitions *usecase.StatusTransitionUseCase
	Encoder     Encoder
	// Mailer is optional; export by mail answers 503 without it.
	Mailer      ExportMailer
	rateLimiter *RateLimiter
	Now         func() time.Time
}

func NewLeadHandler(
	collections []entity.Collection,
	list *usecase.ListLeadsUseCase,
	transitions *usecase.StatusTransitionUseCase,
	encoder Encoder,
	mailer ExportMailer,
	rateLimiter *RateLimiter,
) *LeadHandler {
	bySlug := make(map[string]entity.Collection, len(collections))
	for _, c := range collections {
		bySlug[c.Slug] = c
	}
	return &LeadHandler{
		collections: collections,
		bySlug:      bySlug,
		List:        list,
		Transitions: transitions,
		Encoder:     encoder,
		Mailer:      mailer,
		rateLimiter: rateLimiter,
		Now:         time.Now,
	}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/collections", h.ListCollections)
	r.Route("/collections/{slug}", func(r chi.Router) {
		r.Get("/leads", h.ListLeads)
		r.Get("/leads/{id}", h.GetLead)
		r.Get("/stats", h.Stats)
		r.Get("/export", h.Export)

		r.Group(func(r chi.Router) {
			if h.rateLimiter != nil {
				r.Use(h.rateLimiter.Middleware)
			}
			r.Post("/export/mail", h.MailExport)
			r.Post("/leads/{id}/push", h.Push)
			r.Post("/leads/{id}/duplicate", h.MarkDuplicate)
		})
	})
}

type CollectionResponse struct {
	entity.Collection
	Ready bool `json:"ready"`
}

func (h *LeadHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	out := make([]CollectionResponse, len(h.collections))
	for i, c := range h.collections {
		out[i] = CollectionResponse{Collection: c, Ready: h.List.Ready(c)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"collections": out,
	})
}

type LeadListResponse struct {
	Success bool `json:"success"`
	usecase.Page
	Stats   usecase.Stats     `json:"stats"`
	State   usecase.ViewState `json:"state"`
	Date    string            `json:"date,omitempty"`
	ReadAt  time.Time         `json:"read_at"`
	Message string            `json:"message,omitempty"`
}

func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	state, ok := viewState(w, r, c)
	if !ok {
		return
	}

	out, err := h.List.Execute(c, state)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	resp := LeadListResponse{
		Success: true,
		Page:    out.Page,
		Stats:   out.Stats,
		State:   out.State,
		Date:    out.State.DateLabel(),
		ReadAt:  out.ReadAt,
	}
	if out.Page.TotalItems == 0 {
		if out.Stats.Total == 0 {
			resp.Message = "No leads yet."
		} else {
			resp.Message = "No leads match the current filters."
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	lead, err := h.List.Find(c, chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"lead":      lead,
		"in_flight": h.Transitions.InFlight(c.Name, lead.ID),
	})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	stats, err := h.List.Stats(c)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// Export downloads every lead matching the current filters, ignoring the page.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	state, ok := viewState(w, r, c)
	if !ok {
		return
	}

	content, count, err := h.render(c, state)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	filename := usecase.ExportFilename(c, h.Now())
	logrus.WithFields(logrus.Fields{
		"collection": c.Name,
		"leads":      count,
	}).Info("export downloaded")

	w.Header().Set("Content-Type", h.Encoder.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

type MailExportRequest struct {
	To []string `json:"to"`
}

func (h *LeadHandler) MailExport(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	if h.Mailer == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "MAIL_NOT_CONFIGURED", "Export by mail is not configured")
		return
	}

	var req MailExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}
	to, errs := cleanRecipients(req.To)
	if len(errs) > 0 {
		writeFieldErrors(w, "INVALID_RECIPIENTS", "Invalid recipients", errs)
		return
	}
	if len(to) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "at least one recipient is required")
		return
	}

	state, ok := viewState(w, r, c)
	if !ok {
		return
	}
	content, count, err := h.render(c, state)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	filename := usecase.ExportFilename(c, h.Now())
	data := mail.ExportEmailData{
		Title:     c.Title,
		Filename:  filename,
		LeadCount: count,
		Filters:   r.URL.RawQuery,
	}
	if err := h.Mailer.SendExport(to, data, content); err != nil {
		logrus.WithError(err).WithField("collection", c.Name).Error("export mail failed")
		writeErrorResponse(w, http.StatusBadGateway, "MAIL_FAILED", "Failed to send export mail")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
		"leads":    count,
	})
}

func (h *LeadHandler) Push(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	out, err := h.Transitions.PushLead(r.Context(), usecase.TransitionInput{
		Collection: c,
		LeadID:     chi.URLParam(r, "id"),
		Actor:      middleware.ActorFromContext(r.Context()),
	})
	h.writeTransition(w, out, err)
}

type DuplicateRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *LeadHandler) MarkDuplicate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}

	var req DuplicateRequest
	// an empty body is an unconfirmed request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	out, err := h.Transitions.MarkDuplicate(r.Context(), usecase.TransitionInput{
		Collection: c,
		LeadID:     chi.URLParam(r, "id"),
		Actor:      middleware.ActorFromContext(r.Context()),
		Confirmed:  req.Confirm,
	})
	h.writeTransition(w, out, err)
}

func (h *LeadHandler) writeTransition(w http.ResponseWriter, out *usecase.TransitionOutput, err error) {
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"transition": out,
	})
}

func (h *LeadHandler) render(c entity.Collection, state usecase.ViewState) ([]byte, int, error) {
	leads, err := h.List.Visible(c, state)
	if err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	if err := h.Encoder.Encode(&buf, usecase.ToRows(leads, c)); err != nil {
		return nil, 0, &usecase.TechnicalError{Code: "EXPORT_FAILED", Message: "failed to build export", Err: err}
	}
	return buf.Bytes(), len(leads), nil
}

func (h *LeadHandler) collection(w http.ResponseWriter, r *http.Request) (entity.Collection, bool) {
	c, ok := h.bySlug[chi.URLParam(r, "slug")]
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "COLLECTION_NOT_FOUND", "Unknown lead collection")
	}
	return c, ok
}

func viewState(w http.ResponseWriter, r *http.Request, c entity.Collection) (usecase.ViewState, bool) {
	q := r.URL.Query()
	state, errs := usecase.BuildViewState(c, usecase.ViewQuery{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		Date:      q.Get("date"),
		Range:     q.Get("range"),
		Sort:      q.Get("sort"),
		Direction: q.Get("dir"),
		Page:      q.Get("page"),
	})
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return usecase.ViewState{}, false
	}
	return state, true
}

// cleanRecipients drops blank entries and rejects anything that is not a
// single RFC 5322 address.
func cleanRecipients(in []string) ([]string, []usecase.ValidationError) {
	var out []string
	var errs []usecase.ValidationError
	for i, s := range in {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		addr, err := netmail.ParseAddress(s)
		if err != nil {
			errs = append(errs, usecase.ValidationError{
				Field:   fmt.Sprintf("to[%d]", i),
				Message: "is not a valid email address",
			})
			continue
		}
		out = append(out, addr.Address)
	}
	return out, errs
}
