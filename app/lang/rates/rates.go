// Package rates supplies currency exchange rates relative to the US dollar.
// Rates are fetched over HTTP, kept in memory for a while, persisted in a
// SQLite database and, when nothing else is available, read from a table
// bundled with the binary.
package rates

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config configures a Service. Zero fields get defaults.
type Config struct {
	Endpoint     string        // JSON rate feed; empty disables fetching
	TTL          time.Duration // how long fetched rates stay fresh
	DatabasePath string        // SQLite file; empty disables persistence
	Timeout      time.Duration // HTTP timeout
	RetryAfter   time.Duration // wait after a failed fetch before the next one
	Logger       *log.Logger
}

// DefaultEndpoint is a free feed of rates relative to USD.
const DefaultEndpoint = "https://open.er-api.com/v6/latest/USD"

const (
	defaultTTL     = time.Hour
	defaultTimeout = 10 * time.Second
	defaultRetry   = 5 * time.Minute
)

// DefaultDatabasePath returns the rate database location in the user cache
// directory, creating the directory when needed.
func DefaultDatabasePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "smartcalc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "rates.db"), nil
}

//go:embed defaults.json
var defaultsJSON []byte

// table is the wire form of a rate table: units of each currency per unit
// of Base.
type table struct {
	Base     string                 `json:"base"`
	BaseCode string                 `json:"base_code"`
	Date     string                 `json:"date"`
	Rates    map[string]json.Number `json:"rates"`
}

// Service loads rates. It is safe for concurrent use.
type Service struct {
	cfg    Config
	client *http.Client
	store  *Store
	now    func() time.Time

	mu        sync.Mutex
	rates     map[string]*big.Rat
	fetchedAt time.Time
	retryAt   time.Time
}

// New returns a Service for cfg, opening the database when one is
// configured.
func New(cfg Config) (*Service, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = defaultRetry
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "rates: ", log.LstdFlags)
	}
	s := &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
	if cfg.DatabasePath != "" {
		st, err := OpenStore(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

// Close releases the database.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// LoadLatestRates returns units of each currency per US dollar. It never
// fails: fresh cached rates win, then a successful fetch, then the last
// known table, then the persisted table, then the bundled defaults. After a
// failed fetch the fallback is served without fetching for RetryAfter.
func (s *Service) LoadLatestRates(ctx context.Context) map[string]*big.Rat {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.rates != nil && (now.Sub(s.fetchedAt) < s.cfg.TTL || now.Before(s.retryAt)) {
		return s.rates
	}
	if s.cfg.Endpoint != "" {
		rates, err := s.fetch(ctx)
		if err == nil {
			s.remember(rates, now)
			if s.store != nil {
				if err := s.store.Save(rates, s.fetchedAt); err != nil {
					s.cfg.Logger.Printf("saving rates: %v", err)
				}
			}
			return s.rates
		}
		s.cfg.Logger.Printf("fetching rates: %v", err)
	}
	s.retryAt = now.Add(s.cfg.RetryAfter)
	if s.rates != nil {
		return s.rates
	}
	if s.store != nil {
		rates, at, err := s.store.Load()
		switch {
		case err != nil:
			s.cfg.Logger.Printf("loading rates: %v", err)
		case len(rates) > 0:
			// keep the stored timestamp so a fetch is retried once it is stale
			s.remember(rates, at)
			return rates
		}
	}
	rates, err := Defaults()
	if err != nil {
		s.cfg.Logger.Printf("bundled rates: %v", err)
		rates = map[string]*big.Rat{"USD": big.NewRat(1, 1)}
	}
	s.remember(rates, time.Time{})
	return rates
}

func (s *Service) remember(rates map[string]*big.Rat, at time.Time) {
	s.rates, s.fetchedAt = rates, at
}

func (s *Service) fetch(ctx context.Context) (map[string]*big.Rat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", s.cfg.Endpoint, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Defaults returns the bundled rate table.
func Defaults() (map[string]*big.Rat, error) {
	return Parse(defaultsJSON)
}

// Parse decodes a JSON rate table and rebases it on USD.
func Parse(data []byte) (map[string]*big.Rat, error) {
	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding rates: %w", err)
	}
	if len(t.Rates) == 0 {
		return nil, fmt.Errorf("decoding rates: empty table")
	}
	base := strings.ToUpper(t.Base)
	if base == "" {
		base = strings.ToUpper(t.BaseCode)
	}
	if base == "" {
		base = "USD"
	}
	out := make(map[string]*big.Rat, len(t.Rates)+1)
	for code, n := range t.Rates {
		r, ok := new(big.Rat).SetString(n.String())
		if !ok || r.Sign() <= 0 {
			return nil, fmt.Errorf("decoding rates: bad rate %q for %s", n, code)
		}
		out[strings.ToUpper(code)] = r
	}
	out[base] = big.NewRat(1, 1)
	usd, ok := out["USD"]
	if !ok {
		return nil, fmt.Errorf("decoding rates: no USD rate in a %s table", base)
	}
	if usd.Cmp(big.NewRat(1, 1)) != 0 {
		for code, r := range out {
			out[code] = new(big.Rat).Quo(r, usd)
		}
	}
	return out, nil
}
