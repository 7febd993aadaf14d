package observability

import "time"

// Recorder receives the service's request-level measurements. Collector
// keeps them for Prometheus scraping; CloudWatchMetrics ships them to
// CloudWatch where no scraper can reach the process.
type Recorder interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
	ObserveQuery(queryType string, duration time.Duration, err error)
	ObserveLLM(duration time.Duration, err error)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
