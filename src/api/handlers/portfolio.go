package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	portfolio, err := h.Trades.GetPortfolio(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) GetCashBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	balance, err := h.Trades.GetCashBalance(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, balance, http.StatusOK)
}
