package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports whether the status is StatusHealthy.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Component is a resource with an explicit acquire/release lifecycle.
// Fixtures implement it so test helpers own their teardown.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start acquires the resource.
	Start(ctx context.Context) error

	// Stop releases the resource.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Resetter is optionally implemented by components that can return to a
// freshly started state without being rebuilt.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Description holds summary information about a component.
type Description struct {
	// Name is the human-readable display name. If empty, Name() is used.
	Name string
	// Type categorizes the component, e.g. "fixture".
	Type string
	// Details is a one-liner such as "widgets.id=42 (postgres)".
	Details string
}

// Describable is optionally implemented by components that can describe
// themselves in logs and failure messages.
type Describable interface {
	Describe() Description
}

// Describe returns c's description, falling back to its name.
func Describe(c Component) Description {
	if d, ok := c.(Describable); ok {
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = c.Name()
		}
		return desc
	}
	return Description{Name: c.Name()}
}
