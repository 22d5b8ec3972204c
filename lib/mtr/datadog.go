package mtr

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

type statsClient struct {
	client *statsd.Client
	rate   float64
}

func toDatadogTags(tags map[string]string) []string {
	var retTags []string
	for key, val := range tags {
		retTags = append(retTags, fmt.Sprintf("%s:%s", key, val))
	}

	return retTags
}

func (s *statsClient) Flush() {
	_ = s.client.Flush()
}

func (s *statsClient) Count(name string, value int64, tags map[string]string) {
	_ = s.client.Count(name, value, toDatadogTags(tags), s.rate)
}

func (s *statsClient) Timing(name string, value time.Duration, tags map[string]string) {
	_ = s.client.Timing(name, value, toDatadogTags(tags), s.rate)
}

func (s *statsClient) Incr(name string, tags map[string]string) {
	_ = s.client.Incr(name, toDatadogTags(tags), s.rate)
}

func (s *statsClient) Gauge(name string, value float64, tags map[string]string) {
	_ = s.client.Gauge(name, value, toDatadogTags(tags), s.rate)
}
