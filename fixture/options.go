package fixture

import (
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dbprime/dialect"
	"github.com/kbukum/dbprime/logger"
	"github.com/kbukum/dbprime/observability"
)

// Option configures Create.
type Option func(*options)

type options struct {
	registry *dialect.Registry
	log      *logger.Logger
	tracer   trace.Tracer
	metrics  *observability.Metrics
}

// defaultMetrics is built once on the global meter provider, which
// delegates to whatever provider is installed later.
var defaultMetrics = sync.OnceValue(observability.DefaultMetrics)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = dialect.Default()
	}
	if o.log == nil {
		o.log = logger.Get(logger.ComponentFixture)
	}
	if o.tracer == nil {
		o.tracer = observability.Tracer()
	}
	if o.metrics == nil {
		o.metrics = defaultMetrics()
	}
	return o
}

// WithRegistry selects dialects from reg instead of dialect.Default().
func WithRegistry(reg *dialect.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithLogger sets the logger lifecycle events are written to.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTracer sets the tracer for fixture.insert and fixture.delete spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithMetrics sets the lifecycle counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
