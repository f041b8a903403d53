package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gurbos/tcgtracker/datastore"
	"github.com/gurbos/tcgtracker/importer"
	"github.com/gurbos/tcgtracker/tcapi"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const shutdownTimeout = 5 * time.Second

type application struct {
	store TrackerDataStore
	conn  datastore.Connector
	cfg   *appConfig
	out   io.Writer
}

// TrackerDataStore is everything the modes below need from the gateway.
type TrackerDataStore interface {
	importer.CatalogStore
	tcapi.CatalogReader
}

func newApplication(conn datastore.Connector, cfg *appConfig, out io.Writer) *application {
	return &application{
		store: datastore.NewPostgresDataStore(conn),
		conn:  conn,
		cfg:   cfg,
		out:   out,
	}
}

func (app *application) migrate(ctx context.Context) error {
	if err := datastore.Migrate(ctx, app.conn); err != nil {
		return err
	}
	log.Println("Schema is up to date")
	return nil
}

// fillDB replaces the catalog. A declined confirmation is not an error.
func (app *application) fillDB(ctx context.Context, cfg importer.Config) error {
	_, err := importer.Run(ctx, cfg, app.store, app.out)
	if errors.Is(err, importer.ErrNotConfirmed) {
		log.Println("Import cancelled, database left untouched")
		return nil
	}
	return err
}

func (app *application) printCounts(ctx context.Context) error {
	counts, err := app.store.CountRows(ctx)
	if err != nil {
		return err
	}
	p := message.NewPrinter(language.English)
	rows := []struct {
		name string
		n    int64
	}{
		{"block sets", counts.BlockSets},
		{"expansion blocks", counts.ExpansionBlocks},
		{"expansions", counts.Expansions},
		{"cards", counts.Cards},
		{"card prints", counts.CardPrints},
		{"users", counts.Users},
		{"collections", counts.Collections},
		{"decks", counts.Decks},
	}
	for _, r := range rows {
		p.Fprintf(app.out, "%-18s %10d\n", r.name, r.n)
	}
	return nil
}

// serve runs the HTTP API until ctx is cancelled.
func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           tcapi.NewRouter(app.store, app.cfg.CorsOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
