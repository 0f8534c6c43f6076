package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestObserveLeaderboard(t *testing.T) {
	ObserveLeaderboard("nights", 402.5, 410.25, 25)

	if got := testutil.ToFloat64(LeaderboardMedian.WithLabelValues("nights")); got != 402.5 {
		t.Errorf("median gauge = %v, want 402.5", got)
	}
	if got := testutil.ToFloat64(LeaderboardAverage.WithLabelValues("nights")); got != 410.25 {
		t.Errorf("average gauge = %v, want 410.25", got)
	}
	if got := testutil.ToFloat64(LeaderboardRecords.WithLabelValues("nights")); got != 25 {
		t.Errorf("records gauge = %v, want 25", got)
	}

	ObserveLeaderboard("nights", 0, 0, 0)
	if got := testutil.ToFloat64(LeaderboardMedian.WithLabelValues("nights")); got != 0 {
		t.Errorf("median gauge after reset = %v, want 0", got)
	}
}

func TestHandler(t *testing.T) {
	ObserveLeaderboard("runs", 390, 395, 50)

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	if !strings.Contains(string(body), `idalon_leaderboard_median_seconds{resource="runs"} 390`) {
		t.Errorf("metrics output does not contain the runs median gauge:\n%s", body)
	}
}
