package component

import (
	"context"
	"fmt"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "media", health: Health{Name: "media", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "media"}
	r.Register(c)

	err := r.Register(&mockComponent{name: "media"})
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "media"}
	r.Register(c)

	got := r.Get("media")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "media" {
		t.Errorf("expected 'media', got %q", got.Name())
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry()
	got := r.Get("missing")
	if got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{
		name: "media", startOrder: &order,
		health: Health{Name: "media", Status: StatusHealthy},
	})
	r.Register(&mockComponent{
		name: "transcription", startOrder: &order,
		health: Health{Name: "transcription", Status: StatusHealthy},
	})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(order))
	}
	if order[0] != "media" || order[1] != "transcription" {
		t.Errorf("expected start order [media, transcription], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "media", startErr: fmt.Errorf("ffmpeg not found")})

	err := r.StartAll(context.Background())
	if err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "media", stopOrder: &order, health: Health{Name: "media", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "transcription", stopOrder: &order, health: Health{Name: "transcription", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "watcher", stopOrder: &order, health: Health{Name: "watcher", Status: StatusHealthy}})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(order))
	}
	if order[0] != "watcher" || order[1] != "transcription" || order[2] != "media" {
		t.Errorf("expected reverse stop order [watcher, transcription, media], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "media", stopOrder: &order})

	// Don't start, then stop
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name: "media", stopErr: fmt.Errorf("stop failed"),
		health: Health{Name: "media", Status: StatusHealthy},
	})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name:   "media",
		health: Health{Name: "media", Status: StatusHealthy, Message: "ffmpeg found"},
	})
	r.Register(&mockComponent{
		name:   "transcription",
		health: Health{Name: "transcription", Status: StatusUnhealthy, Message: "no candidate passed"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected media healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected transcription unhealthy, got %s", results[1].Status)
	}
}

func TestCheck(t *testing.T) {
	c := NewCheck("media", func(ctx context.Context) Health {
		return Health{Name: "ignored", Status: StatusDegraded, Message: "ffprobe missing"}
	}).WithDescription(Description{Type: "toolchain", Details: "ffmpeg"})

	if err := c.Start(context.Background()); err != nil {
		t.Errorf("expected no-op start, got %v", err)
	}
	h := c.Health(context.Background())
	if h.Name != "media" {
		t.Errorf("expected health reported under %q, got %q", "media", h.Name)
	}
	if h.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
	if d := c.Describe(); d.Name != "media" || d.Type != "toolchain" {
		t.Errorf("unexpected description %+v", d)
	}
	if got := NewCheck("noop", nil).Health(context.Background()).Status; got != StatusHealthy {
		t.Errorf("expected nil check to be healthy, got %s", got)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"unresolved counts as healthy", []HealthStatus{StatusHealthy, StatusUnresolved}, StatusHealthy},
		{"degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			results := make([]Health, len(tc.statuses))
			for i, s := range tc.statuses {
				results[i] = Health{Status: s}
			}
			if got := Overall(results); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
