package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finance/src/schemas"
)

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req = new(schemas.TradeRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	confirmation, err := h.Trades.Buy(ctx, userID, req.Symbol, req.Shares)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, confirmation, http.StatusOK)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req = new(schemas.TradeRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	confirmation, err := h.Trades.Sell(ctx, userID, req.Symbol, req.Shares)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, confirmation, http.StatusOK)
}
