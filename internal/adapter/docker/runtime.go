package docker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shepherd/internal/reconcile"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	dockerfilters "github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

var _ reconcile.ContainerRuntime = (*Runtime)(nil)

// Runtime implements reconcile.ContainerRuntime using the Docker Engine API.
type Runtime struct {
	cli *client.Client
}

// NewRuntime creates a Runtime with a new Docker client from the environment.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing Docker client.
func NewRuntimeFromClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

func (r *Runtime) WaitReady(ctx context.Context) error {
	return WaitReady(ctx, r.cli)
}

// ContainerList reports all containers matching the label filter, stopped
// ones included. Entries the engine reports without an id, state or status
// come back with those fields empty rather than failing the whole list.
func (r *Runtime) ContainerList(ctx context.Context, labelFilter map[string]string) ([]reconcile.ListEntry, error) {
	filters := dockerfilters.NewArgs()
	for key, value := range labelFilter {
		filters.Add("label", key+"="+value)
	}

	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	out := make([]reconcile.ListEntry, 0, len(containers))
	for _, c := range containers {
		out = append(out, reconcile.ListEntry{
			ID:     c.ID,
			State:  c.State,
			Status: c.Status,
		})
	}
	return out, nil
}

func (r *Runtime) ContainerInspect(ctx context.Context, id string) (reconcile.ReplicaDetail, error) {
	info, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return reconcile.ReplicaDetail{}, fmt.Errorf("inspect container %q: %w", id, err)
	}
	labels := map[string]string{}
	if info.Config != nil {
		labels = info.Config.Labels
	}
	return reconcile.ReplicaDetail{Labels: labels}, nil
}

func (r *Runtime) ContainerCreate(ctx context.Context, cfg reconcile.CreateConfig) (string, error) {
	cc := &container.Config{
		Image:  cfg.Image,
		Labels: cfg.Labels,
	}
	hc := &container.HostConfig{}

	if len(cfg.Ports) > 0 {
		portBindings := make(nat.PortMap, len(cfg.Ports))
		exposedPorts := make(nat.PortSet, len(cfg.Ports))
		for _, p := range cfg.Ports {
			proto := strings.ToLower(strings.TrimSpace(p.Protocol))
			if proto == "" {
				proto = "tcp"
			}
			containerPort := nat.Port(fmt.Sprintf("%d/%s", p.ContainerPort, proto))
			exposedPorts[containerPort] = struct{}{}
			portBindings[containerPort] = []nat.PortBinding{{HostPort: strconv.Itoa(int(p.HostPort))}}
		}
		cc.ExposedPorts = exposedPorts
		hc.PortBindings = portBindings
	}

	resp, err := r.cli.ContainerCreate(ctx, cc, hc, nil, nil, cfg.Name)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (r *Runtime) ContainerStart(ctx context.Context, id string) error {
	return r.cli.ContainerStart(ctx, id, container.StartOptions{})
}

func (r *Runtime) ContainerStop(ctx context.Context, id string, grace time.Duration) error {
	secs := int(grace / time.Second)
	return r.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &secs})
}

func (r *Runtime) ContainerRemove(ctx context.Context, id string, force bool) error {
	if err := r.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: force}); err != nil && !errdefs.IsNotFound(err) {
		return err
	}
	return nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}
