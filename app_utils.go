package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gurbos/tcgtracker/datastore"
	"github.com/gurbos/tcgtracker/importer"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

type DBCredentials struct {
	URL      string `env:"DATABASE_URL"`
	Username string `env:"DB_USERNAME"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	DBName   string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// ConnectString constructs a PostgreSQL connection string from the credentials.
// DATABASE_URL wins over the individual parts.
func (cred *DBCredentials) ConnectString() string {
	if cred.URL != "" {
		return cred.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(cred.Host, cred.Port),
		Path:     "/" + cred.DBName,
		RawQuery: url.Values{"sslmode": {cred.SSLMode}}.Encode(),
	}
	if cred.Username != "" {
		u.User = url.UserPassword(cred.Username, cred.Password)
	}
	return u.String()
}

func (cred *DBCredentials) Validate() error {
	if cred.URL != "" {
		return nil
	}
	var missing []string
	if cred.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if cred.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing database settings: %s (or set DATABASE_URL)", strings.Join(missing, ", "))
	}
	return nil
}

// ConnectStringer defines an interface for types that can provide a database connection string.
type ConnectStringer interface {
	ConnectString() string
}

type appConfig struct {
	DB            DBCredentials
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	CorsOrigin    string        `env:"CORS_ORIGIN"`
	ImportTimeout time.Duration `env:"IMPORT_TIMEOUT" envDefault:"10m"`
	Pooled        bool          `env:"DB_POOLED"`
}

// loadConfig reads the environment. Flags override it afterwards.
func loadConfig() (*appConfig, error) {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

type cmd_flags struct {
	fill_db   bool
	serve     bool
	migrate   bool
	counts    bool
	yes       bool
	pooled    bool
	hierarchy string
	cards     string
	prints    string
	timeout   time.Duration
	addr      string
}

func (f *cmd_flags) anyMode() bool {
	return f.fill_db || f.serve || f.migrate || f.counts
}

func initCmdFlags(fs *pflag.FlagSet, args []string) (*cmd_flags, error) {
	var flags cmd_flags
	fs.BoolVarP(&flags.fill_db, "fill-db", "", false, "Replace the catalog with the contents of the fixture files")
	fs.BoolVarP(&flags.serve, "serve", "", false, "Serve the HTTP API")
	fs.BoolVarP(&flags.migrate, "migrate", "", false, "Create or update the database schema")
	fs.BoolVarP(&flags.counts, "counts", "", false, "Print the number of rows in every table")
	fs.BoolVarP(&flags.yes, "yes", "y", false, "Do not ask before deleting the current catalog")
	fs.BoolVarP(&flags.pooled, "pooled", "", false, "Share a connection pool instead of connecting per call")
	fs.StringVarP(&flags.hierarchy, "hierarchy", "", "assets/expansions.json", "Block set / expansion block / expansion fixture")
	fs.StringVarP(&flags.cards, "cards", "", "assets/cards.json", "Card fixture, empty to skip cards")
	fs.StringVarP(&flags.prints, "prints", "", "assets/prints.json", "Card print fixture, empty to skip card prints")
	fs.DurationVarP(&flags.timeout, "timeout", "", 0, "Deadline for the whole import (default IMPORT_TIMEOUT)")
	fs.StringVarP(&flags.addr, "addr", "", "", "HTTP listen address (default HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &flags, nil
}

// apply lets flags override the environment.
func (f *cmd_flags) apply(cfg *appConfig) {
	if f.pooled {
		cfg.Pooled = true
	}
	if f.timeout > 0 {
		cfg.ImportTimeout = f.timeout
	}
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}
}

func importConfig(f *cmd_flags, cfg *appConfig, confirmed bool) importer.Config {
	return importer.Config{
		HierarchyPath: f.hierarchy,
		CardsPath:     f.cards,
		PrintsPath:    f.prints,
		Confirm:       confirmed,
		Timeout:       cfg.ImportTimeout,
	}
}

func isInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirm asks before the catalog is wiped. A blank answer means yes.
// Without a terminal nobody can answer, so the answer is no.
func confirm(in io.Reader, out io.Writer, interactive bool) bool {
	if !interactive {
		fmt.Fprintln(out, "Refusing to delete the catalog without --yes on a non-interactive input")
		return false
	}
	fmt.Fprint(out, "This will delete every block set, card and card print. Continue? [Y/n] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// openConnector returns a per-call connector, or a shared pool when pooled
// is set. Neither connects before the first store call.
func openConnector(cs ConnectStringer, pooled bool) (datastore.Connector, error) {
	if !pooled {
		dc, err := datastore.NewDirectConnector(cs.ConnectString())
		if err != nil {
			return nil, err
		}
		return dc, nil
	}
	config, err := datastore.Config(cs.ConnectString())
	if err != nil {
		return nil, err
	}
	return datastore.OpenPooled(config), nil
}
