package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const msgPaymentNotFound = "Payment not found"

type paymentRequest struct {
	Email     string           `json:"email"`
	Service   string           `json:"service"`
	Amount    *decimal.Decimal `json:"amount"`
	QRCodeURL *string          `json:"qrCodeUrl"`
	PaymentID string           `json:"paymentId"`
	Status    string           `json:"status"`
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email == "" || req.Service == "" || req.Amount == nil || req.Amount.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing required fields: email, service, amount")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	in := services.CreatePaymentInput{
		Email:     req.Email,
		Service:   req.Service,
		Amount:    *req.Amount,
		QRCodeURL: nonEmpty(req.QRCodeURL),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Status:    strings.TrimSpace(req.Status),
	}
	if userID, ok := userIDFromContext(r.Context()); ok {
		in.UserID = &userID
	}

	p, err := h.payments.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{conflict: "Payment already exists"})
		return
	}

	writeSuccess(w, http.StatusCreated, envelope{
		"paymentId": p.PaymentID,
		"message":   "Payment created successfully",
		"payment":   p,
	})
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{notFound: msgPaymentNotFound})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"payment": p})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	res, err := h.payments.List(r.Context(), page, r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{validation: msgBadPage})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"count":    len(res.Items),
		"total":    res.Total,
		"limit":    res.Limit,
		"offset":   res.Offset,
		"payments": res.Items,
	})
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		writeError(w, http.StatusBadRequest, "Status is required")
		return
	}

	p, err := h.payments.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{
			validation: "Status is required",
			notFound:   msgPaymentNotFound,
		})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"message": "Payment updated successfully",
		"payment": p,
	})
}
