package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/product"
)

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Int(p.Price)
	e.FieldStart("image")
	e.Str(p.Image)
	e.FieldStart("type")
	e.Str(p.Type)
	e.FieldStart("gender")
	e.Str(p.Gender)
	e.ObjEnd()
}

// parseFilter reads the listing query: minPrice, maxPrice, type and gender
// (repeated or comma separated), q and sort.
func parseFilter(q url.Values) (product.Filter, product.Sort, error) {
	f := product.DefaultFilter()

	for name, dst := range map[string]*int{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return f, "", errors.Errorf("invalid %s %q", name, raw)
		}
		*dst = v
	}
	if f.MinPrice > f.MaxPrice {
		return f, "", errors.Errorf("minPrice %d exceeds maxPrice %d", f.MinPrice, f.MaxPrice)
	}

	f.Types = splitList(q["type"])
	f.Genders = splitList(q["gender"])
	f.Query = strings.TrimSpace(q.Get("q"))
	return f, product.ParseSort(q.Get("sort")), nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, s, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, errors.Wrap(err, "list products"))
		return
	}

	selected := product.Select(all, f, s)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range selected {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

func (h *Handler) productSizes(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, size := range product.SizeOptions(p.Type) {
			e.Str(size)
		}
		e.ArrEnd()
	})
}
