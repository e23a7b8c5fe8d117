package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"finance/src/api/controllers"
	"finance/src/clients/quotes"
	"finance/src/repositories"
	"finance/src/utils"

	"github.com/go-chi/jwtauth"
)

type Handler struct {
	Auth   controllers.AuthControllerI
	Trades controllers.TradeControllerI
	Quotes controllers.QuoteControllerI
}

func NewHandler(auth controllers.AuthControllerI, trades controllers.TradeControllerI, quoteController controllers.QuoteControllerI) *Handler {
	return &Handler{
		Auth:   auth,
		Trades: trades,
		Quotes: quoteController,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps domain rejections onto HTTP status codes. Unrecognized
// errors surface as 500 and are never rewritten into a rejection.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case errors.Is(err, controllers.ErrInvalidInput), errors.Is(err, controllers.ErrPasswordMismatch):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusBadRequest)
	case errors.Is(err, quotes.ErrUnknownSymbol):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusNotFound)
	case errors.Is(err, repositories.ErrInsufficientFunds),
		errors.Is(err, repositories.ErrExceedsHoldings),
		errors.Is(err, controllers.ErrNotOwned):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusUnprocessableEntity)
	case errors.Is(err, repositories.ErrUsernameTaken):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusConflict)
	case errors.Is(err, controllers.ErrInvalidCredentials):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusUnauthorized)
	case err != nil:
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	default:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

// userIDFromRequest reads the authenticated user id from the verified JWT
// claims. JSON numbers decode as float64, so both forms are accepted.
func userIDFromRequest(r *http.Request) (int, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, utils.Unauthorized("missing or invalid token")
	}
	switch id := claims["user_id"].(type) {
	case float64:
		return int(id), nil
	case int:
		return id, nil
	case int64:
		return int(id), nil
	default:
		return 0, utils.Unauthorized("token carries no user id")
	}
}
