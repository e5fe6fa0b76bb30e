package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

// notPersistedWarning is shown when the order was confirmed but could not be
// recorded.
const notPersistedWarning = "Your order was placed, but we could not save it. Please keep your order number."

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("label")
	e.Str(order.Label(o.ID))
	e.FieldStart("order")
	o.Encode(e)
	e.ObjEnd()
}

// checkout places an order from the cart and clears it. The cart stays locked
// for the whole placement so a concurrent add cannot slip in between reading
// the lines and clearing them; other carts are not affected.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var info order.ShippingInfo
	if err := readBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "shippingInfo" {
				return d.Skip()
			}
			return info.Decode(d)
		})
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var placed *order.Order
	err := h.carts.Update(r.PathValue("id"), func(c *cart.Cart) error {
		o, err := h.orders.PlaceOrder(r.Context(), c.Lines(), info)
		if o != nil {
			placed = o
			c.Clear()
			c.Close()
		}
		return err
	})
	if err != nil && !errors.Is(err, order.ErrNotPersisted) {
		writeDomainError(w, r, err)
		return
	}

	persisted := err == nil
	if !persisted {
		zctx.From(r.Context()).Warn("Order confirmed without being saved",
			zap.String("id", placed.ID),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(order.Label(placed.ID))
		e.FieldStart("persisted")
		e.Bool(persisted)
		if !persisted {
			e.FieldStart("warning")
			e.Str(notPersistedWarning)
		}
		e.FieldStart("order")
		placed.Encode(e)
		e.ObjEnd()
	})
}
