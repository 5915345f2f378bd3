package lending

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"librarysys/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type lendRequest struct {
	PatronID string `json:"patron_id"`
	BookID   string `json:"book_id"`
}

// parseLendRequest accepts either form fields or a JSON body carrying
// patron_id and book_id.
func parseLendRequest(r *http.Request) (patronID string, bookID int64, ok bool) {
	var rawPatron, rawBook string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req lendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", 0, false
		}
		rawPatron, rawBook = req.PatronID, req.BookID
	} else {
		rawPatron = r.FormValue("patron_id")
		rawBook = r.FormValue("book_id")
	}

	bookID, err := strconv.ParseInt(strings.TrimSpace(rawBook), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(rawPatron), bookID, true
}

func statusForKind(kind ResultKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindGateway:
		return http.StatusBadGateway
	case KindStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func codeForKind(kind ResultKind) string {
	switch kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindGateway:
		return "GATEWAY_ERROR"
	default:
		return "STORAGE_ERROR"
	}
}

// WriteResult renders an engine Result in the standard envelope. Shared
// with the fee-settlement handlers.
func WriteResult(w http.ResponseWriter, r *http.Request, res Result) {
	if res.OK {
		httpx.JSONSuccess(w, r, map[string]any{"message": res.Message}, nil)
		return
	}
	httpx.JSONError(w, r, statusForKind(res.Kind), codeForKind(res.Kind), res.Message, nil)
}

// Borrow handles POST /v1/borrow
// @Summary Borrow a book
// @Description Lend one copy of a book to a patron
// @Tags lending
// @Accept json
// @Produce json
// @Param patron_id formData string true "6-digit patron ID"
// @Param book_id formData int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/borrow [post]
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	patronID, bookID, ok := parseLendRequest(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book ID.", nil)
		return
	}
	WriteResult(w, r, h.svc.Borrow(r.Context(), patronID, bookID))
}

// Return handles POST /v1/return
// @Summary Return a book
// @Description Close the patron's outstanding loan for a book
// @Tags lending
// @Accept json
// @Produce json
// @Param patron_id formData string true "6-digit patron ID"
// @Param book_id formData int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/return [post]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	patronID, bookID, ok := parseLendRequest(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book ID.", nil)
		return
	}
	WriteResult(w, r, h.svc.Return(r.Context(), patronID, bookID))
}

// LateFee handles GET /v1/late_fee/{patron_id}/{book_id}
// @Summary Late fee lookup
// @Description Current late fee for a patron and book
// @Tags lending
// @Produce json
// @Param patron_id path string true "6-digit patron ID"
// @Param book_id path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/late_fee/{patron_id}/{book_id} [get]
func (h *HTTPHandler) LateFee(w http.ResponseWriter, r *http.Request) {
	patronID := r.PathValue("patron_id")
	bookID, err := strconv.ParseInt(r.PathValue("book_id"), 10, 64)
	if err != nil {
		// Structurally invalid input maps to the same Error status the
		// engine reports for an unknown book.
		httpx.JSONSuccess(w, r, FeeResult{Status: FeeStatusError}, nil)
		return
	}
	httpx.JSONSuccess(w, r, h.svc.LateFee(r.Context(), patronID, bookID), nil)
}

// PatronStatus handles GET /v1/patrons/{patron_id}/status
// @Summary Patron status report
// @Description Outstanding loans, history, and total late fees for a patron
// @Tags lending
// @Produce json
// @Param patron_id path string true "6-digit patron ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/patrons/{patron_id}/status [get]
func (h *HTTPHandler) PatronStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context(), r.PathValue("patron_id"))
	if err != nil {
		if err == ErrInvalidPatronID {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msgInvalidPatronID, nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, status, nil)
}
