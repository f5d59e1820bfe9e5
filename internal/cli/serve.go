package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vrtour/pkg/config"
	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/server"
	"github.com/matzehuels/vrtour/pkg/tour"
)

// storeCloseTimeout bounds flushing and disconnecting the store on exit.
const storeCloseTimeout = 5 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	backend string
	path    string
	imports string // manifest to import into mongo before serving
	noCache bool
}

// serveCommand creates the serve command running the hotspot edit server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve rooms and hotspot edits over HTTP",
		Long: `Serve the rooms of a house over HTTP and accept hotspot edits.

With the file store backend, edits are written back to the manifest file.
With the mongo backend, rooms live in the configured database; --import
loads a manifest into it first.

Edits are streamed to websocket clients on /api/events.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.Config.Server.Addr
			}
			if opts.backend == "" {
				opts.backend = c.Config.Store.Backend
			}
			if opts.path == "" {
				opts.path = firstArg(args)
			}
			if opts.path == "" {
				opts.path = c.Config.Store.Path
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.backend, "store", "", "store backend: file or mongo (default from config)")
	cmd.Flags().StringVar(&opts.imports, "import", "", "manifest file or URL to import into mongo before serving")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache rendered graphs")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := c.openStore(ctx, opts)
	if err != nil {
		return err
	}
	feed := tour.NewFeed(store)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
		defer cancel()
		if err := feed.Close(closeCtx); err != nil {
			logger.Warn("close store", "err", err)
		}
	}()

	ch, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ch.Close()

	srv := server.New(server.Options{
		Store:  feed,
		Feed:   feed,
		Cache:  ch,
		Logger: logger,
	})

	printSuccess("Serving on %s", StyleLink.Render("http://"+opts.addr))
	printKeyValue("Store", opts.backend)
	printKeyValue("Cache", c.cacheLocation())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, opts.addr)
	})
	g.Go(func() error {
		logChanges(ctx, feed, logger)
		return nil
	})
	return g.Wait()
}

// openStore opens the configured backend.
func (c *CLI) openStore(ctx context.Context, opts *serveOpts) (tour.Store, error) {
	switch opts.backend {
	case config.StoreMongo:
		store, err := tour.NewMongoStore(ctx, tour.MongoConfig{
			URI:      c.Config.Store.MongoURI,
			Database: c.Config.Store.MongoDatabase,
			HouseID:  c.Config.Store.HouseID,
		})
		if err != nil {
			return nil, err
		}
		if opts.imports != "" {
			h, err := c.loadHouse(ctx, opts.imports, false, false)
			if err == nil {
				err = store.Import(ctx, h)
			}
			if err != nil {
				_ = store.Close(context.Background())
				return nil, err
			}
			printSuccess("Imported %d room(s)", len(h.Rooms))
		}
		return store, nil

	case config.StoreFile, "":
		if opts.imports != "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--import needs the mongo store")
		}
		if opts.path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no manifest file to serve; pass one or set store.path")
		}
		if errors.IsURL(opts.path) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "the file store cannot write back to %s", opts.path)
		}
		return tour.OpenFileStore(ctx, opts.path)

	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", opts.backend)
	}
}

// logChanges reports every hotspot edit until ctx is done or the feed closes.
func logChanges(ctx context.Context, feed *tour.Feed, logger *log.Logger) {
	changes, cancel := feed.Subscribe(16)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			logger.Debug("change published", "kind", ch.Kind, "room", ch.RoomID, "index", ch.Index)
		}
	}
}
