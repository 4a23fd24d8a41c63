package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_Reasoner(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)

	idx := ontology.NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	r := elgo.New(idx, elgo.WithMetricsObserver(obs))
	defer r.Close()
	require.NoError(t, r.AddAxioms(ontology.SubClassOf(a, b)))

	_, err := r.Classify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(obs.contexts))
	assert.Equal(t, 3.0, testutil.ToFloat64(obs.rules.WithLabelValues("init")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.rules.WithLabelValues("subsumer_propagation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.incremental.WithLabelValues("full")))
	assert.Equal(t, 1, testutil.CollectAndCount(obs.classifyLatency))

	n, err := testutil.GatherAndCount(reg, "elgo_rule_applications_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestObserver_Statuses(t *testing.T) {
	obs := NewObserver(nil)

	obs.OnClassify(time.Millisecond, 10, true, nil)
	obs.OnClassify(time.Millisecond, 10, false, nil)
	obs.OnClassify(time.Millisecond, 10, true, errors.New("boom"))
	obs.OnProgress(7, 3)
	obs.OnIncremental(2, 5, false)

	assert.Equal(t, 3, testutil.CollectAndCount(obs.classifyLatency))
	assert.Equal(t, 7.0, testutil.ToFloat64(obs.processed))
	assert.Equal(t, 3.0, testutil.ToFloat64(obs.backlog))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.incremental.WithLabelValues("incremental")))
	assert.Equal(t, 5.0, testutil.ToFloat64(obs.invalidated))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.seeds))
}
