package reconcile

import (
	"context"
	"time"
)

// Clock abstracts time.Now() for deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ListEntry is one container as reported by the runtime's list operation.
// Fields the runtime leaves unset stay empty rather than failing the list.
type ListEntry struct {
	ID     string
	State  string // structured lifecycle state: "running", "exited", "created", ...
	Status string // human-readable status line: "Up 3 seconds", "Exited (1) 2 minutes ago", ...
}

// ReplicaDetail is the inspect view of one container.
type ReplicaDetail struct {
	Labels map[string]string
}

// PortMapping publishes one container port on the host.
type PortMapping struct {
	HostPort      uint16
	ContainerPort uint16
	Protocol      string
}

// CreateConfig describes one replica to create.
type CreateConfig struct {
	Name   string
	Image  string
	Labels map[string]string
	Ports  []PortMapping
}

// ContainerRuntime abstracts the container engine operations the reconciler
// issues.
// Production: adapter/docker.Runtime (wrapping a Docker *client.Client)
// Testing: adapter/fake.ContainerRuntime
type ContainerRuntime interface {
	ContainerList(ctx context.Context, labelFilter map[string]string) ([]ListEntry, error)
	ContainerInspect(ctx context.Context, id string) (ReplicaDetail, error)
	ContainerCreate(ctx context.Context, cfg CreateConfig) (string, error)
	ContainerStart(ctx context.Context, id string) error
	ContainerStop(ctx context.Context, id string, grace time.Duration) error
	ContainerRemove(ctx context.Context, id string, force bool) error
}

// boundRuntime wraps every call in a deadline so a hung engine call fails
// the tick instead of stalling the loop forever. The timeout surfaces as the
// failing operation's RuntimeError.
type boundRuntime struct {
	rt      ContainerRuntime
	timeout time.Duration
}

func (b boundRuntime) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

func (b boundRuntime) ContainerList(ctx context.Context, labelFilter map[string]string) ([]ListEntry, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerList(ctx, labelFilter)
}

func (b boundRuntime) ContainerInspect(ctx context.Context, id string) (ReplicaDetail, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerInspect(ctx, id)
}

func (b boundRuntime) ContainerCreate(ctx context.Context, cfg CreateConfig) (string, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerCreate(ctx, cfg)
}

func (b boundRuntime) ContainerStart(ctx context.Context, id string) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerStart(ctx, id)
}

func (b boundRuntime) ContainerStop(ctx context.Context, id string, grace time.Duration) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerStop(ctx, id, grace)
}

func (b boundRuntime) ContainerRemove(ctx context.Context, id string, force bool) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return b.rt.ContainerRemove(ctx, id, force)
}
