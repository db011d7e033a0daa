package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/metrics"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

func TestFrameworkProviders(t *testing.T) {
	conf := &config.Config{
		Container: config.ContainerConfig{PoolSize: 2},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/stats"},
	}
	collector := metrics.New()
	router := &providers.RoutingServiceProvider{}
	router.Routes(func(r *routing.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	})

	reg := container.NewProviderRegistry(container.NewContextConfig())
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Config: conf}))
	require.NoError(t, reg.Register(&providers.MetricsServiceProvider{Collector: collector}))
	require.NoError(t, reg.Register(router))
	assert.Nil(t, router.Router())

	c, err := reg.Boot()
	require.NoError(t, err)

	assert.Same(t, conf, container.MustResolve[*config.Config](c))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.Bindings))
	require.NotNil(t, router.Router())

	tests := []struct {
		path string
		want int
	}{
		{"/ping", http.StatusAccepted},
		{"/health", http.StatusNoContent},
		{"/bindings", http.StatusOK},
		{"/stats", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRoutingServiceProvider_WithoutFrameworkBindings(t *testing.T) {
	router := &providers.RoutingServiceProvider{}
	reg := container.NewProviderRegistry(container.NewContextConfig())
	require.NoError(t, reg.Register(router))
	_, err := reg.Boot()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bindings", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}
