// Package backup reads and writes gzip-compressed order dumps, one JSON
// order per line.
package backup

import (
	"bufio"
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/storefront/internal/domain/order"
)

// maxLine bounds a single encoded order.
const maxLine = 4 << 20

// Export writes orders to w and returns how many were written.
func Export(ctx context.Context, w io.Writer, orders []order.Order) (int, error) {
	gz := pgzip.NewWriter(w)

	var e jx.Encoder
	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			_ = gz.Close()
			return i, err
		}
		e.Reset()
		o.Encode(&e)
		if _, err := gz.Write(append(e.Bytes(), '\n')); err != nil {
			_ = gz.Close()
			return i, errors.Wrapf(err, "write order %s", o.ID)
		}
	}

	if err := gz.Close(); err != nil {
		return len(orders), errors.Wrap(err, "close gzip writer")
	}
	return len(orders), nil
}

// Import reads a dump produced by Export. Blank lines are skipped; any other
// line that is not a valid order is an error naming its line number.
func Import(ctx context.Context, r io.Reader) ([]order.Order, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)

	orders := make([]order.Order, 0)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var o order.Order
		if err := o.Decode(jx.DecodeBytes(scanner.Bytes())); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if err := order.Validate(o); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		orders = append(orders, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan dump")
	}
	return orders, nil
}
