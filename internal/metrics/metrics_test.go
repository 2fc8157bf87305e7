package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/genie/internal/metrics"
	"github.com/aretw0/genie/internal/runtime"
	"github.com/aretw0/genie/internal/testutils"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/script"
	"github.com/aretw0/genie/pkg/scripts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsSessionLifecycle(t *testing.T) {
	store, err := script.Load(scripts.Quality())
	require.NoError(t, err)

	c := metrics.New()
	var forwarded int
	hooks := c.Hooks(domain.LifecycleHooks{
		OnStepEnter: func(context.Context, *domain.StepEvent) { forwarded++ },
	})

	clock := testutils.NewManualScheduler()
	sess := runtime.NewSession("m1", store, runtime.WithScheduler(clock), runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	_, err = sess.Initialize(ctx)
	require.NoError(t, err)
	_, err = sess.Submit(ctx, "check-genealogy")
	require.Error(t, err)
	clock.RunAll()

	_, err = sess.Submit(ctx, "check-genealogy")
	require.NoError(t, err)
	clock.RunAll()
	_, err = sess.Submit(ctx, "root-cause")
	require.NoError(t, err)
	_, err = sess.Reset(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StepEntries.WithLabelValues("initial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StepEntries.WithLabelValues("genealogy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StepEntries.WithLabelValues("root-cause")))
	assert.Equal(t, 3, forwarded)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.Entries.WithLabelValues(string(domain.AuthorAssistant))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Entries.WithLabelValues(string(domain.AuthorUser))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues(domain.ReasonBusy)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Navigations.WithLabelValues("engineer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Resets))
	assert.Equal(t, 1, testutil.CollectAndCount(c.ResponseLatency))
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New()
	c.Resets.Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "genie_session_resets_total 1"))
}
