package order

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
)

// Encode writes o as a JSON object in the stored order format.
func (o Order) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range o.Items {
		l.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Int(o.Total)
	e.FieldStart("shippingInfo")
	o.ShippingInfo.Encode(e)
	e.FieldStart("date")
	e.Str(o.Date)
	e.ObjEnd()
}

const (
	hasID uint8 = 1 << iota
	hasItems
	hasTotal
	hasShipping
	hasDate

	hasAll = hasID | hasItems | hasTotal | hasShipping | hasDate
)

// Decode reads o from a JSON object, enforcing the stored order schema:
// string id and date, an items array, a numeric total and a shippingInfo
// object with all seven string fields. Item elements are read leniently:
// non-object elements are skipped and mistyped item fields are left zero.
// Failures wrap ErrInvalidOrder.
func (o *Order) Decode(d *jx.Decoder) error {
	if tt := d.Next(); tt != jx.Object {
		return errors.Wrapf(ErrInvalidOrder, "unexpected %s", tt)
	}

	var seen uint8
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := decodeStr(d, key)
			if err != nil {
				return err
			}
			o.ID = v
			seen |= hasID
		case "items":
			if tt := d.Next(); tt != jx.Array {
				return errors.Errorf("items: unexpected %s", tt)
			}
			o.Items = make([]cart.Line, 0)
			if err := d.Arr(func(d *jx.Decoder) error {
				if d.Next() != jx.Object {
					return d.Skip()
				}
				var l cart.Line
				if err := l.Decode(d); err != nil {
					return err
				}
				o.Items = append(o.Items, l)
				return nil
			}); err != nil {
				return errors.Wrap(err, "items")
			}
			seen |= hasItems
		case "total":
			if tt := d.Next(); tt != jx.Number {
				return errors.Errorf("total: unexpected %s", tt)
			}
			v, err := cart.DecodeInt(d)
			if err != nil {
				return errors.Wrap(err, "total")
			}
			o.Total = v
			seen |= hasTotal
		case "shippingInfo":
			if err := o.ShippingInfo.decodeStored(d); err != nil {
				return errors.Wrap(err, "shippingInfo")
			}
			seen |= hasShipping
		case "date":
			v, err := decodeStr(d, key)
			if err != nil {
				return err
			}
			o.Date = v
			seen |= hasDate
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return errors.Wrapf(ErrInvalidOrder, "%v", err)
	}

	if seen != hasAll {
		return errors.Wrapf(ErrInvalidOrder, "missing fields (have %05b)", seen)
	}
	return nil
}

// Encode writes s as a JSON object.
func (s ShippingInfo) Encode(e *jx.Encoder) {
	e.ObjStart()
	for _, f := range shippingFields {
		e.FieldStart(f.name)
		e.Str(*f.ptr(&s))
	}
	e.ObjEnd()
}

// Decode reads s from a JSON object. Unknown fields are skipped and missing
// ones are left empty for ValidateShipping to report; a non-string value is
// an error.
func (s *ShippingInfo) Decode(d *jx.Decoder) error {
	_, err := s.decode(d)
	return err
}

// decodeStored is Decode for stored orders, where every field is mandatory.
func (s *ShippingInfo) decodeStored(d *jx.Decoder) error {
	n, err := s.decode(d)
	if err != nil {
		return err
	}
	if n != len(shippingFields) {
		return errors.Errorf("%d of %d fields present", n, len(shippingFields))
	}
	return nil
}

func (s *ShippingInfo) decode(d *jx.Decoder) (int, error) {
	if tt := d.Next(); tt != jx.Object {
		return 0, errors.Errorf("unexpected %s", tt)
	}

	seen := make(map[string]struct{}, len(shippingFields))
	err := d.Obj(func(d *jx.Decoder, key string) error {
		f, ok := shippingField(key)
		if !ok {
			return d.Skip()
		}
		v, err := decodeStr(d, key)
		if err != nil {
			return err
		}
		*f.ptr(s) = v
		seen[key] = struct{}{}
		return nil
	})
	return len(seen), err
}

func decodeStr(d *jx.Decoder, field string) (string, error) {
	if tt := d.Next(); tt != jx.String {
		return "", errors.Errorf("%s: unexpected %s", field, tt)
	}
	v, err := d.Str()
	if err != nil {
		return "", errors.Wrap(err, field)
	}
	return v, nil
}

// EncodeOrders serializes orders as a JSON array.
func EncodeOrders(orders []Order) string {
	var e jx.Encoder
	e.ArrStart()
	for _, o := range orders {
		o.Encode(&e)
	}
	e.ArrEnd()
	return string(e.Bytes())
}

// record is a stored order together with the JSON it was read from. Loaded
// records are written back from raw so a rewrite never alters them.
type record struct {
	order Order
	raw   jx.Raw
}

func newRecord(o Order) record {
	var e jx.Encoder
	o.Encode(&e)
	return record{order: o, raw: e.Bytes()}
}

func encodeRecords(records []record) string {
	var e jx.Encoder
	e.ArrStart()
	for _, r := range records {
		e.Raw(r.raw)
	}
	e.ArrEnd()
	return string(e.Bytes())
}

func recordOrders(records []record) []Order {
	orders := make([]Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, r.order)
	}
	return orders
}

func decodeRecords(raw []byte, onDrop func(index int, err error)) ([]record, error) {
	d := jx.DecodeBytes(raw)
	if tt := d.Next(); tt != jx.Array {
		return nil, errors.Errorf("stored orders: unexpected %s", tt)
	}

	records := make([]record, 0)
	index := 0
	if err := d.Arr(func(d *jx.Decoder) error {
		elem, err := d.Raw()
		if err != nil {
			return err
		}
		i := index
		index++

		var o Order
		if err := o.Decode(jx.DecodeBytes(elem)); err != nil {
			if onDrop != nil {
				onDrop(i, err)
			}
			return nil
		}
		// elem aliases the input buffer.
		records = append(records, record{order: o, raw: append(jx.Raw(nil), elem...)})
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "stored orders")
	}
	return records, nil
}

// DecodeOrders parses a JSON array of orders. Elements failing the schema are
// skipped and reported to onDrop (which may be nil) with their index. An
// error is returned only when raw is not a well-formed JSON array.
func DecodeOrders(raw []byte, onDrop func(index int, err error)) ([]Order, error) {
	records, err := decodeRecords(raw, onDrop)
	if err != nil {
		return nil, err
	}
	return recordOrders(records), nil
}

// ParseAndFilter is the tolerant reader over a stored slot value: it returns
// the orders that pass the schema and the number of elements dropped. A value
// that is not a JSON array yields no orders.
func ParseAndFilter(raw []byte) ([]Order, int) {
	dropped := 0
	orders, err := DecodeOrders(raw, func(int, error) { dropped++ })
	if err != nil {
		return []Order{}, 0
	}
	return orders, dropped
}
