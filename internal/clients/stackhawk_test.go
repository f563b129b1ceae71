package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ethanolivertroy/secreport/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newStackHawk(t *testing.T, srv *httptest.Server) *StackHawkClient {
	t.Helper()
	return NewStackHawkClient("hawk-key",
		WithBaseURL(srv.URL+"/"),
		WithLogger(logging.Nop()),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
}

func TestFetchLatestScan_FallsThroughToThirdShape(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer hawk-key", r.Header.Get("Authorization"))

		if r.URL.Path == "/api/v1/scans/app-1/latest" {
			fmt.Fprint(w, `{"id":"scan-9","status":"COMPLETED","startedAt":"2026-01-01T00:00:00Z"}`)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	scan, err := newStackHawk(t, srv).FetchLatestScan(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "scan-9", scan.ID)
	assert.Equal(t, "COMPLETED", scan.Status)
	assert.Equal(t, []string{"/api/v1/app/app-1/scans/latest", "/api/v1/scans", "/api/v1/scans/app-1/latest"}, paths)
}

func TestFetchLatestScan_ListBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/app/app-1/scans/latest":
			http.NotFound(w, r)
		case "/api/v1/scans":
			assert.Equal(t, "app-1", r.URL.Query().Get("applicationId"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `[{"scanId":"from-list"},{"scanId":"older"}]`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	scan, err := newStackHawk(t, srv).FetchLatestScan(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "from-list", scan.ID)
}

func TestFetchLatestScan_EmptyListFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/app/app-1/scans/latest":
			fmt.Fprint(w, `[]`)
		case "/api/v1/scans":
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, `{"id":"direct"}`)
		}
	}))
	defer srv.Close()

	scan, err := newStackHawk(t, srv).FetchLatestScan(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "direct", scan.ID)
}

func TestFetchLatestScan_NotFound(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	scan, err := newStackHawk(t, srv).FetchLatestScan(context.Background(), "app-1")
	assert.ErrorIs(t, err, ErrScanNotFound)
	assert.Nil(t, scan)
	assert.Equal(t, 3, calls)
}

func TestFetchScanFindings_Pagination(t *testing.T) {
	page := func(start, n int) string {
		items := make([]string, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, fmt.Sprintf(`{"id":"%d","severity":"High"}`, start+i))
		}
		return `{"findings":[` + strings.Join(items, ",") + `]}`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/scans/scan-9/findings", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("perPage"))

		p, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch p {
		case 1, 2:
			fmt.Fprint(w, page((p-1)*100, 100))
		case 3:
			fmt.Fprint(w, page(200, 5))
		default:
			t.Errorf("unexpected page %d", p)
		}
	}))
	defer srv.Close()

	findings := newStackHawk(t, srv).FetchScanFindings(context.Background(), "scan-9")
	require.Len(t, findings, 205)
	assert.Equal(t, "204", findings[204].ID)
}

func TestFetchScanFindings_ErrorKeepsPartialResult(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			items := make([]string, 100)
			for i := range items {
				items[i] = `{"id":"x"}`
			}
			fmt.Fprint(w, `{"findings":[`+strings.Join(items, ",")+`]}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	findings := newStackHawk(t, srv).FetchScanFindings(context.Background(), "scan-9")
	assert.Len(t, findings, 100)
}

func TestFetchScanFindings_KeepsDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"findings":[{"pluginId":"10038","findingName":"CSP","severity":"Medium","paths":[{"path":"/"}]}]}`)
	}))
	defer srv.Close()

	findings := newStackHawk(t, srv).FetchScanFindings(context.Background(), "scan-9")
	require.Len(t, findings, 1)
	assert.Equal(t, "CSP", findings[0].Title)

	out, err := json.Marshal(findings[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"paths"`)
}

func TestPaginate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := paginate(ctx, func(ctx context.Context, page int) ([]int, error) {
		t.Fatal("fetch must not be called")
		return nil, nil
	})
	assert.Error(t, err)
	assert.Empty(t, items)
}
