package metrics

type NoopMetrics struct{}

var _ Metricer = NoopMetrics{}

func (NoopMetrics) RecordInfo(string) {}

func (NoopMetrics) RecordUp() {}

func (NoopMetrics) RecordCaptchaReady(bool) {}

func (NoopMetrics) RecordFundsRequest() func(string) {
	return func(string) {}
}

func (NoopMetrics) RecordSubmission(string) {}
