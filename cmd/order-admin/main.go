package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appkg "github.com/xenking/storefront/internal/app"
	"github.com/xenking/storefront/internal/backup"
	"github.com/xenking/storefront/internal/domain/order"
)

const usage = `Usage: order-admin [flags] <command> [args]

Commands:
  list             list stored orders by number
  show <id>        print one order as JSON
  remove <id>      remove an order
  clear            remove every order
  export <file>    write a gzip backup of every order
  import <file>    replace the stored orders with a gzip backup

Flags:
`

func main() {
	var cfg appkg.StorageConfig
	var idPolicy string

	flag.StringVar(&cfg.Backend, "backend", appkg.BackendLevelDB, "slot backend: memory, leveldb or postgres")
	flag.StringVar(&cfg.Path, "path", "data/storefront", "LevelDB directory")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.Key, "key", order.DefaultKey, "storage key of the order collection")
	flag.StringVar(&idPolicy, "id-policy", string(order.IDPolicyCount), "order id policy: count or sequence")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, idPolicy, flag.Args(), os.Stdout); err != nil {
		slog.Error("command failed", slog.String("command", flag.Arg(0)), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newStoreLogger() *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zcfg.OutputPaths = []string{"stderr"}
	lg, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return lg
}

func run(ctx context.Context, cfg appkg.StorageConfig, idPolicy string, args []string, out io.Writer) error {
	policy, err := order.ParseIDPolicy(idPolicy)
	if err != nil {
		return err
	}

	backend, err := appkg.OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	lg := newStoreLogger()
	defer func() { _ = lg.Sync() }()
	store := order.NewStore(backend, lg, order.WithKey(cfg.Key), order.WithIDPolicy(policy))

	cmd, rest := args[0], args[1:]
	arg := func() (string, error) {
		if len(rest) != 1 {
			return "", errors.Errorf("%s: expected one argument", cmd)
		}
		return rest[0], nil
	}

	switch cmd {
	case "list":
		return list(ctx, store, out)
	case "show":
		id, err := arg()
		if err != nil {
			return err
		}
		o, err := store.Get(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "show %s", id)
		}
		_, err = fmt.Fprintln(out, order.EncodeOrders([]order.Order{*o}))
		return err
	case "remove":
		id, err := arg()
		if err != nil {
			return err
		}
		n, err := store.Remove(ctx, id)
		if err != nil {
			return err
		}
		slog.Info("orders removed", slog.String("id", id), slog.Int("count", n))
		return nil
	case "clear":
		if err := store.RemoveAll(ctx); err != nil {
			return err
		}
		slog.Info("all orders removed", slog.String("key", store.Key()))
		return nil
	case "export":
		path, err := arg()
		if err != nil {
			return err
		}
		return exportOrders(ctx, store, path)
	case "import":
		path, err := arg()
		if err != nil {
			return err
		}
		return importOrders(ctx, store, path)
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func list(ctx context.Context, store *order.Store, out io.Writer) error {
	orders := store.List(ctx)
	order.SortByNumber(orders)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%d\n",
			o.ID, o.Date, o.ShippingInfo.FirstName, o.ShippingInfo.LastName, len(o.Items), o.Total)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "write list")
	}
	next, err := store.NextID(ctx)
	if err != nil {
		return err
	}
	slog.Info("listed orders", slog.Int("count", len(orders)), slog.String("next_id", next))
	return nil
}

func exportOrders(ctx context.Context, store *order.Store, path string) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrapf(err, "close %s", path)
		}
	}()

	n, err := backup.Export(ctx, f, store.List(ctx))
	if err != nil {
		return errors.Wrapf(err, "export to %s", path)
	}
	slog.Info("exported orders", slog.String("file", path), slog.Int("count", n))
	return nil
}

func importOrders(ctx context.Context, store *order.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	orders, err := backup.Import(ctx, f)
	if err != nil {
		return errors.Wrapf(err, "import %s", path)
	}
	if err := store.Replace(ctx, orders); err != nil {
		return err
	}
	slog.Info("imported orders", slog.String("file", path), slog.Int("count", len(orders)))
	return nil
}
