package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveIterations(2)
	r.ObserveRequest(40*time.Millisecond, 0, nil)
	r.ObserveRequest(60*time.Millisecond, 12, nil)
	r.ObserveRequest(15*time.Second, 0, errors.New("i/o timeout"))
	r.ObserveSession("action.generate_mobile_traffic", nil)
	r.ObserveSession("action.crash", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Requests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Requests.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.BytesReceived))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Iterations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Sessions.WithLabelValues("action.crash", "error")))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveRequest(time.Millisecond, 0, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Requests.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Requests.WithLabelValues("ok")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveIterations(5)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fgharness_exercise_iterations 5")
}
