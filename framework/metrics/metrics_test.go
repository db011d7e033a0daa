package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/metrics"
)

type widget struct{}

func TestCollector_Resolved(t *testing.T) {
	m := metrics.New()
	ref := container.RefOf[*widget](container.Named{Value: "w"})

	m.Resolved(ref, time.Millisecond, nil)
	m.Resolved(ref, time.Millisecond, nil)
	m.Resolved(ref, time.Millisecond, errors.New("boom"))

	name := `@Named("w") *metrics_test.widget`
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Lookups.WithLabelValues(name, "resolved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues(name, "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupDuration))
}

func TestCollector_ObservesContainer(t *testing.T) {
	m := metrics.New()
	cfg := container.NewContextConfig(container.WithObserver(m))
	require.NoError(t, container.Instance[string](cfg, "value"))
	c, err := cfg.Build()
	require.NoError(t, err)

	container.MustResolve[string](c)
	container.MustResolve[string](c)
	_, ok, err := container.Resolve[int](c)
	require.NoError(t, err)
	require.False(t, ok)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Lookups.WithLabelValues("string", "resolved")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Lookups), "unbound lookups are not recorded")
}

func TestCollector_ObserveRequest(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest("GET", "/engines/{name}", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/engines/{name}", 404, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/engines/{name}", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/engines/{name}", "404")))
}

func TestCollector_Handler(t *testing.T) {
	m := metrics.New()
	m.Bindings.Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "goinject_container_bindings 3")
}

func TestCollector_PrivateRegistries(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.Bindings.Set(1)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Bindings))
}
