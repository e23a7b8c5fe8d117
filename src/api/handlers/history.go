package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"finance/src/utils"
)

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	entries, err := h.Trades.GetHistory(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, entries, http.StatusOK)
}

func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := userIDFromRequest(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	entries, err := h.Trades.GetHistory(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	header := []string{"symbol", "shares", "kind", "price", "order_ref", "transacted"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Symbol,
			strconv.Itoa(e.Shares),
			e.Kind,
			e.Price.String(),
			e.OrderRef,
			e.Transacted.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := utils.WriteCSV(w, header, rows); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("failed to stream history export")
	}
}
