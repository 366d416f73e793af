package tracing

// Config holds the OTLP exporter settings.
type Config struct {
	// Endpoint is the OTLP/HTTP collector host:port (no scheme).
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS toward the collector. Default false.
	Insecure bool `yaml:"insecure,omitempty"`

	// ServiceName identifies this process in traces. Default "ideavault".
	ServiceName string `yaml:"service_name,omitempty"`

	// SampleRatio is the fraction of root traces to sample, 0..1.
	// Default 1.0 (sample everything).
	SampleRatio float64 `yaml:"sample_ratio,omitempty"`

	// Headers are extra HTTP headers sent to the collector, e.g. auth.
	Headers map[string]string `yaml:"headers,omitempty"`
}

func (c *Config) defaults() {
	if c.ServiceName == "" {
		c.ServiceName = "ideavault"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1.0
	}
}
