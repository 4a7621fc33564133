package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-engine/internal/config"
	"github.com/sells-group/site-engine/internal/engine"
	"github.com/sells-group/site-engine/internal/quality"
	"github.com/sells-group/site-engine/internal/resilience"
	"github.com/sells-group/site-engine/internal/store"
)

// errStoreDisabled is returned by initStore when store.driver is "none".
var errStoreDisabled = eris.New("store: persistence disabled (store.driver=none)")

// initEngine validates c for mode and builds the engine.
func initEngine(c *config.Config, mode string) (*engine.Engine, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}
	if err := quality.ValidateConfig(c.Quality); err != nil {
		return nil, err
	}
	return engine.FromConfig(c)
}

// initStore opens and migrates the configured generation store.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(c.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, nil)
	case "none":
		return nil, errStoreDisabled
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return store.WithRetry(st, resilience.RetryConfig{
		MaxAttempts:    c.Store.RetryAttempts,
		InitialBackoff: time.Duration(c.Store.RetryBackoffMs) * time.Millisecond,
	}), nil
}

// parseNow parses an RFC 3339 --now flag. Empty means the engine clock.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse --now %q", s)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
