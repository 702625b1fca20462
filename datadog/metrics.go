package datadog

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/artist-analytics/logger"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var StatsdClient *statsd.Client

const serviceName = "artist-analytics"

func Initialise(addr string) {
	if addr == "" {
		logger.Logger.Warning("No statsd address configured, metrics are disabled")
		return
	}

	statsdClient, err := statsd.New(addr, statsd.WithNamespace(serviceName+"."))

	if err != nil {
		logger.Logger.Fatalf("Failed to start statsd client %v", err)
	}

	StatsdClient = statsdClient
}

func StartTracer(env string) {
	tracer.Start(
		tracer.WithService(serviceName),
		tracer.WithEnv(env),
	)
}

func Stop() {
	tracer.Stop()

	if StatsdClient != nil {
		_ = StatsdClient.Close()
	}
}

func Increment(count int, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Count(metric, int64(count), tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to increment metric %s with tags %s by %d %v", metric, tags, count, err)
	}
}

func Gauge(value int, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Gauge(metric, float64(value), tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to send gauge value %d to %s with tags %s %v", value, metric, tags, err)
	}
}

func Distribution(duration time.Duration, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Distribution(metric, float64(duration.Milliseconds()), tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to send distribution %s to %s with tags %s %v", duration, metric, tags, err)
	}
}
