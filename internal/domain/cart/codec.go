package cart

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Encode writes l as a JSON object. The field names are part of the stored
// order format.
func (l Line) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(l.ProductID)
	e.FieldStart("name")
	e.Str(l.Name)
	e.FieldStart("price")
	e.Int(l.Price)
	e.FieldStart("image")
	e.Str(l.Image)
	e.FieldStart("type")
	e.Str(l.Type)
	e.FieldStart("gender")
	e.Str(l.Gender)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.FieldStart("size")
	e.Str(l.Size)
	e.ObjEnd()
}

// Decode reads l from a JSON object. Missing fields and fields of the wrong
// type keep their zero value; fractional numbers are truncated. Unknown
// fields are skipped. Only malformed JSON is an error.
func (l *Line) Decode(d *jx.Decoder) error {
	if tt := d.Next(); tt != jx.Object {
		return errors.Errorf("cart line: unexpected %s", tt)
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			l.ProductID, err = lenientInt(d)
		case "name":
			l.Name, err = lenientStr(d)
		case "price":
			l.Price, err = lenientInt(d)
		case "image":
			l.Image, err = lenientStr(d)
		case "type":
			l.Type, err = lenientStr(d)
		case "gender":
			l.Gender, err = lenientStr(d)
		case "quantity":
			l.Quantity, err = lenientInt(d)
		case "size":
			l.Size, err = lenientStr(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "cart line %q", key)
		}
		return nil
	})
}

// DecodeInt reads a JSON number as an int. Fractions are truncated towards
// zero and out-of-range values saturate.
func DecodeInt(d *jx.Decoder) (int, error) {
	n, err := d.Num()
	if err != nil {
		return 0, err
	}
	if n.IsInt() {
		if v, err := n.Int64(); err == nil && v >= math.MinInt && v <= math.MaxInt {
			return int(v), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f):
		return 0, nil
	case f >= math.MaxInt:
		return math.MaxInt, nil
	case f <= math.MinInt:
		return math.MinInt, nil
	}
	return int(f), nil
}

func lenientInt(d *jx.Decoder) (int, error) {
	if d.Next() != jx.Number {
		return 0, d.Skip()
	}
	return DecodeInt(d)
}

func lenientStr(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	return d.Str()
}
