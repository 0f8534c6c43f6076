package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/idalon-client/internal/config"
	"github.com/Sternrassler/idalon-client/internal/testutil"
	"github.com/Sternrassler/idalon-client/pkg/metrics"
	"github.com/Sternrassler/idalon-client/pkg/pagination"
	"github.com/alicebob/miniredis/v2"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nightID = "d4bad0ba-5b5a-412b-a75a-e92e24c4f908"

// newTestApp returns an app whose transport is mock and whose output is captured.
func newTestApp(t *testing.T, mock *testutil.MockAPI) (*app, *bytes.Buffer) {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &app{
		config:    cfg,
		transport: mock,
		out:       out,
		logger:    zerolog.Nop(),
	}, out
}

func nightItem(i int) any {
	return map[string]any{
		"uuid":            fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
		"averageRealTime": float64(300 + i),
		"users":           []any{},
	}
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.ObserveLeaderboard("nights", 1, 1, 1)

	server := httptest.NewServer(newMux())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "idalon_leaderboard_median_seconds")
}

func TestLeaderboardCmd_AllPages(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetCollection("/v2/nights", 60, nightItem)

	a, out := newTestApp(t, mock)

	cmd := &LeaderboardCmd{Resource: resourceNights}
	require.NoError(t, cmd.Run(context.Background(), a))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "nights page 0: 25 of 60 records, median 312.00s, average 312.00s", lines[0])
	assert.Equal(t, "nights page 1: 25 of 60 records, median 337.00s, average 337.00s", lines[1])
	assert.Equal(t, "nights page 2: 10 of 60 records, median 354.50s, average 354.50s", lines[2])
}

func TestLeaderboardCmd_PageLimit(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetCollection("/v2/nights", 500, nightItem)

	a, out := newTestApp(t, mock)

	cmd := &LeaderboardCmd{Resource: resourceNights, Pages: 2}
	require.NoError(t, cmd.Run(context.Background(), a))

	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 2)
	assert.Equal(t, 2, mock.RequestCount())
}

func TestLeaderboardCmd_RunsSkipUntimed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetCollection("/v2/runs", 4, func(i int) any {
		run := map[string]any{
			"uuid":           fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			"extractionTime": 10.0,
			"night":          map[string]any{"users": []any{}},
		}
		if i%2 == 0 {
			run["realTime"] = float64(400 + i)
		}
		return run
	})

	a, out := newTestApp(t, mock)

	cmd := &LeaderboardCmd{Resource: resourceRuns}
	require.NoError(t, cmd.Run(context.Background(), a))

	assert.Equal(t, "runs page 0: 2 of 4 records, median 401.00s, average 401.00s\n", out.String())
	assert.Equal(t, "50", mock.LastQuery().Get("limit"))
	assert.Equal(t, "realTime", mock.LastQuery().Get("orderBy"))
}

func TestLeaderboardCmd_FailureEndsEarly(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	paged := testutil.PagedHandler(100, nightItem)
	mock.SetHandler("/v2/nights", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "25" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		paged(w, r)
	})

	a, out := newTestApp(t, mock)

	err := (&LeaderboardCmd{Resource: resourceNights}).Run(context.Background(), a)
	require.Error(t, err)
	assert.ErrorIs(t, err, pagination.ErrBadStatus)

	// The page fetched before the failure is still reported.
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestLeaderboardCmd_NegativePages(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	a, _ := newTestApp(t, mock)

	err := (&LeaderboardCmd{Resource: resourceNights, Pages: -1}).Run(context.Background(), a)
	assert.Error(t, err)
	assert.Equal(t, 0, mock.RequestCount())
}

func TestNightCmd(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v2/nights/"+nightID, testutil.NewJSONResponse(`{"uuid": "`+nightID+`", "averageRealTime": 412.5, "users": []}`))

	a, out := newTestApp(t, mock)

	require.NoError(t, (&NightCmd{ID: nightID}).Run(context.Background(), a))
	assert.Contains(t, out.String(), `"averageRealTime": 412.5`)
	assert.Contains(t, out.String(), nightID)
}

func TestRunCmd_NotFound(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	a, out := newTestApp(t, mock)

	err := (&RunCmd{ID: nightID}).Run(context.Background(), a)
	assert.ErrorIs(t, err, pagination.ErrBadStatus)
	assert.Empty(t, out.String())
}

func TestLookup_InvalidID(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	a, _ := newTestApp(t, mock)

	err := (&NightCmd{ID: "not-a-uuid"}).Run(context.Background(), a)
	assert.Error(t, err)
	assert.Equal(t, 0, mock.RequestCount())
}

func TestRefresh(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetCollection("/v2/nights", 3, nightItem)
	mock.SetResponse("/v2/runs", testutil.NewErrorResponse(http.StatusServiceUnavailable))

	runsErrors := promtest.ToFloat64(metrics.LeaderboardRefreshErrors.WithLabelValues(resourceRuns))

	refresh(context.Background(), mock, []string{resourceNights, resourceRuns}, zerolog.Nop())

	assert.Equal(t, 301.0, promtest.ToFloat64(metrics.LeaderboardMedian.WithLabelValues(resourceNights)))
	assert.Equal(t, 301.0, promtest.ToFloat64(metrics.LeaderboardAverage.WithLabelValues(resourceNights)))
	assert.Equal(t, 3.0, promtest.ToFloat64(metrics.LeaderboardRecords.WithLabelValues(resourceNights)))
	assert.Equal(t, runsErrors+1, promtest.ToFloat64(metrics.LeaderboardRefreshErrors.WithLabelValues(resourceRuns)))
}

func TestWatchCmd_StopsOnCancel(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetCollection("/v2/nights", 3, nightItem)
	mock.SetCollection("/v2/runs", 0, nightItem)

	a, _ := newTestApp(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- (&WatchCmd{Addr: "127.0.0.1:0", Interval: time.Hour}).Run(ctx, a)
	}()

	require.Eventually(t, func() bool { return mock.RequestCount() >= 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestNewApp(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("IDALON_REDIS_ADDR", mr.Addr())

	a, err := newApp(context.Background(), Globals{LogLevel: "disabled"}, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "disabled", a.config.Logging.Level)
	assert.NotNil(t, a.transport)
	assert.Len(t, a.closers, 2)
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name    string
		globals Globals
		env     map[string]string
	}{
		{name: "unknown log level", globals: Globals{LogLevel: "loud"}},
		{name: "missing config file", globals: Globals{Config: "/nonexistent/idalon.yaml"}},
		{name: "unreachable redis", globals: Globals{LogLevel: "disabled"}, env: map[string]string{"IDALON_REDIS_ADDR": "127.0.0.1:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := newApp(context.Background(), tt.globals, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}
