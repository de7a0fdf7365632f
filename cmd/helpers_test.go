package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/config"
)

type cmdFactory func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error)

// syncBuffer is safe for the concurrent writes made by a running monitor.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newBaseCmd() *cmd.BaseCmd {
	base := &cmd.BaseCmd{}
	base.SetLogger(hclog.NewNullLogger())
	return base
}

// newCommand builds a command isolated from the process environment.
func newCommand(
	t *testing.T,
	factory cmdFactory,
	env map[string]string,
	out io.Writer,
	args []string,
	opt ...cmdopts.CmdOption,
) *cobra.Command {
	t.Helper()

	opts := append([]cmdopts.CmdOption{cmdopts.WithEnvLookup(lookupFrom(env))}, opt...)
	c, err := factory(newBaseCmd(), opts...)
	require.NoError(t, err)

	c.SetOut(out)
	c.SetErr(io.Discard)
	c.SetArgs(args)

	return c
}

// newTarget serves the built-in check paths, failing the ones listed.
func newTarget(t *testing.T, failing ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, path := range failing {
			if r.URL.Path == path {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
				return
			}
		}

		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte("<title>Welcome to Dduksang</title>"))
		case "/api/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

// alertCollector records the text of every webhook message it receives.
type alertCollector struct {
	mu    sync.Mutex
	texts []string
	srv   *httptest.Server
}

func newAlertCollector(t *testing.T) *alertCollector {
	t.Helper()

	c := &alertCollector{}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		c.mu.Lock()
		c.texts = append(c.texts, r.URL.Path+" "+msg.Text)
		c.mu.Unlock()

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(c.srv.Close)

	return c
}

func (c *alertCollector) Texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func (c *alertCollector) Contains(substr string) bool {
	for _, text := range c.Texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}
