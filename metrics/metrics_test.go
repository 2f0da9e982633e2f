package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_FundsRequests(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())

	m.RecordFundsRequest()("success")
	m.RecordFundsRequest()("success")
	m.RecordFundsRequest()("server")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fundsRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fundsRequests.WithLabelValues("server")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fundsRequestDuration))
}

func TestMetrics_Gauges(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())

	m.RecordUp()
	m.RecordInfo("v0.1.0")
	m.RecordCaptchaReady(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.up))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.captchaReady))

	m.RecordCaptchaReady(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.captchaReady))

	expected := `
# HELP faucet_web_info Pseudo-metric tracking version info
# TYPE faucet_web_info gauge
faucet_web_info{version="v0.1.0"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.info, strings.NewReader(expected)))
}

func TestMetrics_Submissions(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())

	m.RecordSubmission("accepted")
	m.RecordSubmission("invalid")
	m.RecordSubmission("invalid")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("invalid")))
}

func TestNoopMetrics(t *testing.T) {
	var m Metricer = NoopMetrics{}
	m.RecordUp()
	m.RecordInfo("")
	m.RecordCaptchaReady(true)
	m.RecordSubmission("busy")
	m.RecordFundsRequest()("success")
}
