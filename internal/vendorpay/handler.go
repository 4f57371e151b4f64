package vendorpay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Handler exposes vendor payment endpoints as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers vendor payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPayments)
	r.Post("/", h.createPayment)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.getPayment)
	r.Put("/{id}", h.updatePayment)
	r.Delete("/{id}", h.deletePayment)

	r.Post("/{id}/process", h.transition((*Service).ProcessPayment))
	r.Post("/{id}/complete", h.transition((*Service).CompletePayment))
	r.Post("/{id}/hold", h.transition((*Service).HoldPayment))
	r.Post("/{id}/fail", h.transition((*Service).FailPayment))
	r.Post("/{id}/cancel", h.transition((*Service).CancelPayment))
}

// Date is a calendar date encoded as YYYY-MM-DD. RFC3339 timestamps are accepted on input.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return errors.New("date must be YYYY-MM-DD")
		}
	}
	d.Time = t
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

type paymentRequest struct {
	VendorID           string          `json:"vendorId"`
	VendorName         string          `json:"vendorName"`
	InvoiceNumber      string          `json:"invoiceNumber"`
	PaymentReference   string          `json:"paymentReference"`
	ServiceDescription string          `json:"serviceDescription"`
	Category           string          `json:"category"`
	Notes              string          `json:"notes"`
	ContractID         string          `json:"contractId"`
	PaymentType        PaymentType     `json:"paymentType"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	Priority           Priority        `json:"priority"`
	BaseAmount         decimal.Decimal `json:"baseAmount"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	PaymentDate        *Date           `json:"paymentDate"`
	DueDate            *Date           `json:"dueDate"`
	Attachments        []string        `json:"attachments"`
	RecurringPayment   bool            `json:"recurringPayment"`
	NextPaymentDate    *Date           `json:"nextPaymentDate"`
}

func (req paymentRequest) input() CreatePaymentInput {
	return CreatePaymentInput{
		VendorID:           req.VendorID,
		VendorName:         req.VendorName,
		InvoiceNumber:      req.InvoiceNumber,
		PaymentReference:   req.PaymentReference,
		ServiceDescription: req.ServiceDescription,
		Category:           req.Category,
		Notes:              req.Notes,
		ContractID:         req.ContractID,
		PaymentType:        req.PaymentType,
		PaymentMethod:      req.PaymentMethod,
		Priority:           req.Priority,
		BaseAmount:         req.BaseAmount,
		TaxAmount:          req.TaxAmount,
		DiscountAmount:     req.DiscountAmount,
		PaymentDate:        req.PaymentDate.value(),
		DueDate:            req.DueDate.value(),
		Attachments:        req.Attachments,
		RecurringPayment:   req.RecurringPayment,
		NextPaymentDate:    req.NextPaymentDate.ptr(),
	}
}

type updateRequest struct {
	VendorID           *string          `json:"vendorId"`
	VendorName         *string          `json:"vendorName"`
	InvoiceNumber      *string          `json:"invoiceNumber"`
	ServiceDescription *string          `json:"serviceDescription"`
	Category           *string          `json:"category"`
	Notes              *string          `json:"notes"`
	ContractID         *string          `json:"contractId"`
	PaymentType        *PaymentType     `json:"paymentType"`
	PaymentMethod      *PaymentMethod   `json:"paymentMethod"`
	Priority           *Priority        `json:"priority"`
	BaseAmount         *decimal.Decimal `json:"baseAmount"`
	TaxAmount          *decimal.Decimal `json:"taxAmount"`
	DiscountAmount     *decimal.Decimal `json:"discountAmount"`
	PaymentDate        *Date            `json:"paymentDate"`
	DueDate            *Date            `json:"dueDate"`
	Attachments        []string         `json:"attachments"`
	RecurringPayment   *bool            `json:"recurringPayment"`
	NextPaymentDate    *Date            `json:"nextPaymentDate"`
	// Status is decoded only to reject it.
	Status *string `json:"status"`
	// PaymentReference is immutable after creation.
	PaymentReference *string `json:"paymentReference"`
}

func (req updateRequest) input(version int64) (UpdatePaymentInput, error) {
	verr := newValidationError()
	if req.Status != nil {
		verr.add("status", "status changes only through process, complete, hold, fail or cancel")
	}
	if req.PaymentReference != nil {
		verr.add("paymentReference", "payment reference cannot be changed")
	}
	if !verr.empty() {
		return UpdatePaymentInput{}, verr
	}
	return UpdatePaymentInput{
		VendorID:           req.VendorID,
		VendorName:         req.VendorName,
		InvoiceNumber:      req.InvoiceNumber,
		ServiceDescription: req.ServiceDescription,
		Category:           req.Category,
		Notes:              req.Notes,
		ContractID:         req.ContractID,
		PaymentType:        req.PaymentType,
		PaymentMethod:      req.PaymentMethod,
		Priority:           req.Priority,
		BaseAmount:         req.BaseAmount,
		TaxAmount:          req.TaxAmount,
		DiscountAmount:     req.DiscountAmount,
		PaymentDate:        req.PaymentDate.ptr(),
		DueDate:            req.DueDate.ptr(),
		Attachments:        req.Attachments,
		RecurringPayment:   req.RecurringPayment,
		NextPaymentDate:    req.NextPaymentDate.ptr(),
		ExpectedVersion:    version,
	}, nil
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

type listResponse struct {
	Payments []Payment `json:"payments"`
	Count    int       `json:"count"`
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payments, err := h.service.QueryPayments(r.Context(), PaymentQuery{
		Search:   q.Get("search"),
		Vendor:   q.Get("vendor"),
		Status:   q.Get("status"),
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
		Sort:     SortKey(q.Get("sort")),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Payments: payments, Count: len(payments)})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondPayment(w, http.StatusOK, payment)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	payment, err := h.service.CreatePayment(r.Context(), req.input())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+payment.ID)
	h.respondPayment(w, http.StatusCreated, payment)
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	version, err := expectedVersion(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	input, err := req.input(version)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	payment, err := h.service.UpdatePayment(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondPayment(w, http.StatusOK, payment)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionFunc func(*Service, context.Context, TransitionInput) (Payment, error)

func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := expectedVersion(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		var req transitionRequest
		if r.ContentLength != 0 {
			if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
				return
			}
		}
		payment, err := fn(h.service, r.Context(), TransitionInput{
			PaymentID:       chi.URLParam(r, "id"),
			Reason:          req.Reason,
			ExpectedVersion: version,
		})
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respondPayment(w, http.StatusOK, payment)
	}
}

func (h *Handler) respondPayment(w http.ResponseWriter, status int, p Payment) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(p.Version, 10)))
	httpx.JSON(w, status, p)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, ErrVersionConflict):
		httpx.Problem(w, http.StatusPreconditionFailed, "Version Conflict", err.Error())
	default:
		if !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("vendor payment request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

// expectedVersion reads If-Match. A missing header disables the version check.
func expectedVersion(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	v, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("If-Match must carry a payment version")
	}
	return v, nil
}
