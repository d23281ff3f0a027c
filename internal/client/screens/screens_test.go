package screens

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atinyakov/MailerAdmin/internal/client/api"
	"github.com/atinyakov/MailerAdmin/internal/client/notify"
)

// counter counts requests per route pattern.
type counter struct {
	hits map[string]*int32
}

func (c *counter) wrap(pattern string, h http.HandlerFunc) (string, http.HandlerFunc) {
	n := new(int32)
	c.hits[pattern] = n
	return pattern, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(n, 1)
		h(w, r)
	}
}

func (c *counter) count(pattern string) int {
	if n, ok := c.hits[pattern]; ok {
		return int(atomic.LoadInt32(n))
	}
	return 0
}

type fixture struct {
	env   Env
	rec   *notify.Recorder
	mux   *http.ServeMux
	calls *counter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rec:   &notify.Recorder{},
		mux:   http.NewServeMux(),
		calls: &counter{hits: map[string]*int32{}},
	}
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL)
	require.NoError(t, err)
	f.env = Env{
		Clients:  StaticClient{C: client.WithToken("tok")},
		Notifier: f.rec,
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(f.calls.wrap(pattern, h))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
