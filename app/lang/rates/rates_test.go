package rates

import (
	"context"
	"io"
	"log"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func quietConfig(cfg Config) Config {
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		code  string
		want  string
	}{
		{`{"base":"USD","rates":{"EUR":0.5,"USD":1}}`, "EUR", "1/2"},
		{`{"base":"USD","rates":{"EUR":"0.25"}}`, "EUR", "1/4"},
		{`{"base":"USD","rates":{"EUR":"0.25"}}`, "USD", "1"},
		// rebased on USD
		{`{"base":"EUR","rates":{"USD":2,"GBP":"1"}}`, "GBP", "1/2"},
		{`{"base":"EUR","rates":{"USD":2,"GBP":"1"}}`, "EUR", "1/2"},
		{`{"result":"success","base_code":"USD","rates":{"USD":1,"JPY":150.5}}`, "JPY", "301/2"},
	}
	for _, tt := range tests {
		got, err := Parse([]byte(tt.input))
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		r, ok := got[tt.code]
		if !ok {
			t.Errorf("Parse(%q)[%s] missing", tt.input, tt.code)
			continue
		}
		if r.RatString() != tt.want {
			t.Errorf("Parse(%q)[%s] = %s, want %s", tt.input, tt.code, r.RatString(), tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`not json`,
		`{"base":"USD","rates":{}}`,
		`{"base":"USD","rates":{"EUR":-1}}`,
		`{"base":"EUR","rates":{"GBP":1}}`,
	}
	for _, input := range tests {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestDefaults(t *testing.T) {
	rates, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"USD", "EUR", "GBP", "JPY", "CAD"} {
		if _, ok := rates[code]; !ok {
			t.Errorf("Defaults() missing %s", code)
		}
	}
	if rates["USD"].Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("Defaults()[USD] = %s, want 1", rates["USD"].RatString())
	}
}

func TestServiceFetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"base":"USD","rates":{"EUR":"0.5"}}`)
	}))
	defer srv.Close()

	s, err := New(quietConfig(Config{Endpoint: srv.URL, TTL: time.Hour}))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if got := s.LoadLatestRates(ctx)["EUR"].RatString(); got != "1/2" {
			t.Fatalf("EUR = %s, want 1/2", got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("fetched %d times, want 1", n)
	}
	now = now.Add(2 * time.Hour)
	s.LoadLatestRates(ctx)
	if n := hits.Load(); n != 2 {
		t.Errorf("fetched %d times after expiry, want 2", n)
	}
}

func TestServiceFallsBackToStoreThenDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	ctx := context.Background()

	s, err := New(quietConfig(Config{Endpoint: srv.URL}))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Defaults()
	if got := s.LoadLatestRates(ctx)["EUR"]; got.Cmp(want["EUR"]) != 0 {
		t.Errorf("EUR = %s, want bundled %s", got.RatString(), want["EUR"].RatString())
	}

	path := filepath.Join(t.TempDir(), "rates.db")
	st, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(map[string]*big.Rat{"USD": big.NewRat(1, 1), "EUR": big.NewRat(3, 4)}, time.Now()); err != nil {
		t.Fatal(err)
	}
	st.Close()

	s, err = New(quietConfig(Config{Endpoint: srv.URL, DatabasePath: path}))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got := s.LoadLatestRates(ctx)["EUR"].RatString(); got != "3/4" {
		t.Errorf("EUR = %s, want stored 3/4", got)
	}
}

func TestServiceWaitsBeforeRetryingAFailedFetch(t *testing.T) {
	var hits atomic.Int32
	var up atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !up.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"base":"USD","rates":{"EUR":"0.8"}}`)
	}))
	defer srv.Close()

	s, err := New(quietConfig(Config{Endpoint: srv.URL, TTL: time.Hour, RetryAfter: 10 * time.Minute}))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	want, _ := Defaults()
	for i := 0; i < 5; i++ {
		if got := s.LoadLatestRates(ctx)["EUR"]; got.Cmp(want["EUR"]) != 0 {
			t.Fatalf("EUR = %s, want bundled %s", got.RatString(), want["EUR"].RatString())
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("fetched %d times while the feed is down, want 1", n)
	}

	now = now.Add(11 * time.Minute)
	s.LoadLatestRates(ctx)
	if n := hits.Load(); n != 2 {
		t.Errorf("fetched %d times after the retry delay, want 2", n)
	}

	up.Store(true)
	now = now.Add(11 * time.Minute)
	if got := s.LoadLatestRates(ctx)["EUR"].RatString(); got != "4/5" {
		t.Errorf("EUR = %s once the feed is back, want 4/5", got)
	}
	s.LoadLatestRates(ctx)
	if n := hits.Load(); n != 3 {
		t.Errorf("fetched %d times, want 3", n)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st, err := OpenStore(filepath.Join(t.TempDir(), "rates.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if err := st.Save(map[string]*big.Rat{"EUR": big.NewRat(23, 25), "GBP": big.NewRat(4, 5)}, at); err != nil {
		t.Fatal(err)
	}
	if err := st.Save(map[string]*big.Rat{"EUR": big.NewRat(9, 10)}, at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, gotAt, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["EUR"].RatString() != "9/10" {
		t.Errorf("Load() = %v, want only EUR 9/10", got)
	}
	if !gotAt.Equal(at.Add(time.Hour)) {
		t.Errorf("Load() time = %v, want %v", gotAt, at.Add(time.Hour))
	}
}
