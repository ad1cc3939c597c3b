package observability

import (
	"jobanalyzer/internal/config"
)

// GetObservabilityConfig creates observability config from the application config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:     obs.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obs.ServiceInstance,
		Enabled:         obs.Enabled,
		ConsoleOutput:   obs.ConsoleOutput,
		SampleRate:      obs.SampleRate,
		Tracing:         obs.Tracing.Enabled,
		Metrics:         obs.Metrics.Enabled,
		Interval:        obs.Metrics.CollectionInterval,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP: obs.OTLP,
	}
}
