package clientcommon

import (
	"time"

	"github.com/artist-analytics/datadog"
)

func SendRequestMetric(provider string, requestType string, err error) {
	success := err == nil

	datadog.Increment(1, datadog.ApiRequests,
		datadog.Provider.Tag(provider),
		datadog.RequestType.Tag(requestType),
		datadog.Success.TagBool(success),
	)
}

func SendRequestTiming(provider string, requestType string, start time.Time) {
	datadog.Distribution(time.Since(start), datadog.ApiRequestTime,
		datadog.Provider.Tag(provider),
		datadog.RequestType.Tag(requestType),
	)
}
