package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.orders.Store().List(r.Context())
	order.SortByNumber(orders)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("count")
		e.Int(len(orders))
		e.FieldStart("orders")
		e.ArrStart()
		for _, o := range orders {
			encodeOrder(e, o)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Store().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) removeOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, err := h.orders.Store().Remove(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, errors.Wrap(err, "remove order"))
		return
	}
	zctx.From(r.Context()).Info("Order removed", zap.String("id", id), zap.Int("removed", n))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("removed")
		e.Int(n)
		e.ObjEnd()
	})
}

func (h *Handler) removeAllOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Store().RemoveAll(r.Context()); err != nil {
		writeDomainError(w, r, errors.Wrap(err, "remove all orders"))
		return
	}
	zctx.From(r.Context()).Info("All orders removed")
	w.WriteHeader(http.StatusNoContent)
}
