package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

func (h *Handler) encodeCart(e *jx.Encoder, id string, c *cart.Cart) {
	subtotal := c.Subtotal()

	e.ObjStart()
	e.FieldStart("id")
	e.Str(id)
	e.FieldStart("open")
	e.Bool(c.IsOpen())
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range c.Lines() {
		l.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(c.Count())
	e.FieldStart("subtotal")
	e.Int(subtotal)
	e.FieldStart("shippingFee")
	e.Int(h.orders.ShippingFee())
	e.FieldStart("total")
	e.Int(subtotal + h.orders.ShippingFee())
	e.ObjEnd()
}

// respondCart writes the current state of cart id.
func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, status int, id string) {
	var e jx.Encoder
	if err := h.carts.View(id, func(c *cart.Cart) { h.encodeCart(&e, id, c) }); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusCreated, h.carts.Create())
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK, r.PathValue("id"))
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var (
		productID int
		size      string
	)
	if err := readBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				productID, err = d.Int()
			case "size":
				size, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		})
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !product.ValidSize(*p, size) {
		writeDomainError(w, r, errors.Wrapf(product.ErrInvalidSize, "size %q for %s", size, p.Type))
		return
	}

	id := r.PathValue("id")
	if err := h.carts.View(id, func(c *cart.Cart) { c.Add(*p, size) }); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK, id)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		quantity int
		seen     bool
	)
	if err := readBody(r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "quantity" {
				return d.Skip()
			}
			seen = true
			v, err := d.Int()
			quantity = v
			return err
		})
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !seen {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	id := r.PathValue("id")
	if err := h.carts.View(id, func(c *cart.Cart) { c.UpdateQuantity(productID, quantity) }); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK, id)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := h.carts.View(id, func(c *cart.Cart) { c.Remove(productID) }); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK, id)
}
