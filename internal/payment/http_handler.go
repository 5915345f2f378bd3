package payment

import (
	"encoding/json"
	"net/http"

	"librarysys/internal/httpx"
	"librarysys/internal/lending"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type payRequest struct {
	PatronID string `json:"patron_id"`
	BookID   int64  `json:"book_id"`
}

type refundRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// Pay handles POST /v1/fees/pay
// @Summary Pay late fees
// @Description Charge the current late fee for a patron and book
// @Tags fees
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/fees/pay [post]
func (h *HTTPHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return
	}
	lending.WriteResult(w, r, h.svc.PayLateFees(r.Context(), req.PatronID, req.BookID))
}

// Refund handles POST /v1/fees/refund
// @Summary Refund a fee payment
// @Description Refund a prior late-fee payment by transaction reference
// @Tags fees
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/fees/refund [post]
func (h *HTTPHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return
	}
	lending.WriteResult(w, r, h.svc.RefundLateFeePayment(r.Context(), req.TransactionID, req.Amount))
}
