package metrics

type Metricer interface {
	RecordInfo(version string)
	RecordUp()
	RecordCaptchaReady(ready bool)

	// RecordFundsRequest starts timing a call to the faucet API. The returned
	// func must be called once with the outcome label.
	RecordFundsRequest() (onDone func(outcome string))
	RecordSubmission(result string)
}
