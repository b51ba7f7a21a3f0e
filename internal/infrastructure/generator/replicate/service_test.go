package replicate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/internal/infrastructure/generator/replicate"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	fixtures := []struct {
		name string
		raw  string
		kind ports.GeneratorOutputKind
	}{
		{"url", `"https://replicate.delivery/out.jpg"`, ports.OutputUrl},
		{"url list", `["https://replicate.delivery/out.jpg"]`, ports.OutputUrlList},
		{"file object", `{"url":"https://replicate.delivery/out.jpg"}`, ports.OutputLazyUrl},
		{"data uri", `"data:image/jpeg;base64,aGVsbG8="`, ports.OutputBytes},
		{"number", `42`, ports.OutputUnknown},
		{"null", `null`, ports.OutputUnknown},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			out, err := replicate.ParseOutput(json.RawMessage(f.raw))
			require.NoError(t, err)
			require.Equal(t, f.kind, out.Kind)
		})
	}

	t.Run("list of file objects", func(t *testing.T) {
		out, err := replicate.ParseOutput(json.RawMessage(`[{"url":"https://a/b.jpg"}]`))
		require.NoError(t, err)
		require.Len(t, out.UrlList, 1)
		require.Equal(t, ports.OutputLazyUrl, out.UrlList[0].Kind)
		url, err := out.UrlList[0].LazyUrl(context.Background())
		require.NoError(t, err)
		require.Equal(t, "https://a/b.jpg", url)
	})

	t.Run("data uri bytes", func(t *testing.T) {
		out, err := replicate.ParseOutput(json.RawMessage(`"data:image/jpeg;base64,aGVsbG8="`))
		require.NoError(t, err)
		require.Equal(t, []byte("hello"), out.Bytes)
	})
}

func TestRun(t *testing.T) {
	input := map[string]any{"prompt": "a beast", "prompt_upsampling": true}

	t.Run("sync", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/models/black-forest-labs/flux-1.1-pro/predictions", r.URL.Path)
			require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "a beast", body["input"].(map[string]any)["prompt"])
			// nolint:errcheck
			fmt.Fprint(w, `{"id":"p1","status":"succeeded","output":"https://replicate.delivery/p1.jpg"}`)
		}))
		defer server.Close()

		svc, err := replicate.NewService("token", replicate.WithBaseUrl(server.URL))
		require.NoError(t, err)

		out, err := svc.Run(context.Background(), "black-forest-labs/flux-1.1-pro", input)
		require.NoError(t, err)
		require.Equal(t, ports.OutputUrl, out.Kind)
		require.Equal(t, "https://replicate.delivery/p1.jpg", out.Url)
	})

	t.Run("polls until done", func(t *testing.T) {
		var polls int32
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				// nolint:errcheck
				fmt.Fprintf(w, `{"id":"p2","status":"starting","urls":{"get":"%s/predictions/p2"}}`, server.URL)
				return
			}
			require.Equal(t, "/predictions/p2", r.URL.Path)
			if atomic.AddInt32(&polls, 1) < 2 {
				// nolint:errcheck
				fmt.Fprintf(w, `{"id":"p2","status":"processing","urls":{"get":"%s/predictions/p2"}}`, server.URL)
				return
			}
			// nolint:errcheck
			fmt.Fprint(w, `{"id":"p2","status":"succeeded","output":["https://replicate.delivery/p2.jpg"]}`)
		}))
		defer server.Close()

		svc, err := replicate.NewService(
			"token", replicate.WithBaseUrl(server.URL),
			replicate.WithPollInterval(10*time.Millisecond),
		)
		require.NoError(t, err)

		out, err := svc.Run(context.Background(), "black-forest-labs/flux-1.1-pro", input)
		require.NoError(t, err)
		require.Equal(t, ports.OutputUrlList, out.Kind)
		require.Equal(t, int32(2), atomic.LoadInt32(&polls))
	})

	t.Run("failed prediction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// nolint:errcheck
			fmt.Fprint(w, `{"id":"p3","status":"failed","error":"NSFW content detected"}`)
		}))
		defer server.Close()

		svc, err := replicate.NewService("token", replicate.WithBaseUrl(server.URL))
		require.NoError(t, err)

		out, err := svc.Run(context.Background(), "owner/model", input)
		require.Error(t, err)
		require.Nil(t, out)
		require.True(t, mintderrors.Is(err, mintderrors.GENERATION_FAILED))
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			// nolint:errcheck
			fmt.Fprint(w, `{"detail":"Unauthenticated"}`)
		}))
		defer server.Close()

		svc, err := replicate.NewService("token", replicate.WithBaseUrl(server.URL))
		require.NoError(t, err)

		_, err = svc.Run(context.Background(), "owner/model", input)
		require.Error(t, err)
		require.Contains(t, err.Error(), "401")
	})

	t.Run("missing token", func(t *testing.T) {
		svc, err := replicate.NewService("")
		require.Nil(t, svc)
		require.True(t, mintderrors.Is(err, mintderrors.CONFIGURATION_MISSING))
	})
}
