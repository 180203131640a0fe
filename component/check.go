package component

import "context"

// Check is a health-only Component. Start and Stop do nothing.
type Check struct {
	name        string
	fn          func(ctx context.Context) Health
	description Description
}

var (
	_ Component   = (*Check)(nil)
	_ Describable = (*Check)(nil)
)

// NewCheck wraps fn as a Component named name. The returned Health is
// always reported under name.
func NewCheck(name string, fn func(ctx context.Context) Health) *Check {
	return &Check{name: name, fn: fn, description: Description{Name: name}}
}

// WithDescription sets the startup summary entry.
func (c *Check) WithDescription(d Description) *Check {
	if d.Name == "" {
		d.Name = c.name
	}
	c.description = d
	return c
}

func (c *Check) Name() string                  { return c.name }
func (c *Check) Start(_ context.Context) error { return nil }
func (c *Check) Stop(_ context.Context) error  { return nil }

// Health runs the check function.
func (c *Check) Health(ctx context.Context) Health {
	if c.fn == nil {
		return Health{Name: c.name, Status: StatusHealthy}
	}
	h := c.fn(ctx)
	h.Name = c.name
	return h
}

// Describe returns the startup summary entry.
func (c *Check) Describe() Description { return c.description }
