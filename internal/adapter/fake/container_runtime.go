package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shepherd/internal/reconcile"
)

var _ reconcile.ContainerRuntime = (*ContainerRuntime)(nil)

type replicaState struct {
	State  string
	Status string
	Labels map[string]string
}

// ContainerRuntime is an in-memory implementation of
// reconcile.ContainerRuntime. List order is insertion order, so tests can
// assert head-of-sequence behavior deterministically.
type ContainerRuntime struct {
	CallRecorder
	mu         sync.Mutex
	order      []string
	containers map[string]*replicaState

	ContainerListErr    func(ctx context.Context, labelFilter map[string]string) error
	ContainerInspectErr func(ctx context.Context, id string) error
	ContainerCreateErr  func(ctx context.Context, cfg reconcile.CreateConfig) error
	ContainerStartErr   func(ctx context.Context, id string) error
	ContainerStopErr    func(ctx context.Context, id string) error
	ContainerRemoveErr  func(ctx context.Context, id string, force bool) error
}

// NewContainerRuntime creates an empty ContainerRuntime.
func NewContainerRuntime() *ContainerRuntime {
	return &ContainerRuntime{containers: make(map[string]*replicaState)}
}

// AddContainer seeds one container, preserving insertion order for list.
func (r *ContainerRuntime) AddContainer(id, state, status string, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.containers[id]; !ok {
		r.order = append(r.order, id)
	}
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	r.containers[id] = &replicaState{State: state, Status: status, Labels: cp}
}

// IDs returns the ids of all stored containers in list order.
func (r *ContainerRuntime) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *ContainerRuntime) ContainerList(ctx context.Context, labelFilter map[string]string) ([]reconcile.ListEntry, error) {
	r.record("ContainerList", labelFilter)
	if r.ContainerListErr != nil {
		if err := r.ContainerListErr(ctx, labelFilter); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []reconcile.ListEntry
	for _, id := range r.order {
		cs := r.containers[id]
		if !labelsMatch(cs.Labels, labelFilter) {
			continue
		}
		out = append(out, reconcile.ListEntry{ID: id, State: cs.State, Status: cs.Status})
	}
	return out, nil
}

func (r *ContainerRuntime) ContainerInspect(ctx context.Context, id string) (reconcile.ReplicaDetail, error) {
	r.record("ContainerInspect", id)
	if r.ContainerInspectErr != nil {
		if err := r.ContainerInspectErr(ctx, id); err != nil {
			return reconcile.ReplicaDetail{}, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs, ok := r.containers[id]
	if !ok {
		return reconcile.ReplicaDetail{}, fmt.Errorf("container %q not found", id)
	}
	labels := make(map[string]string, len(cs.Labels))
	for k, v := range cs.Labels {
		labels[k] = v
	}
	return reconcile.ReplicaDetail{Labels: labels}, nil
}

func (r *ContainerRuntime) ContainerCreate(ctx context.Context, cfg reconcile.CreateConfig) (string, error) {
	r.record("ContainerCreate", cfg)
	if r.ContainerCreateErr != nil {
		if err := r.ContainerCreateErr(ctx, cfg); err != nil {
			return "", err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.containers[cfg.Name]; ok {
		return "", fmt.Errorf("container name %q already in use", cfg.Name)
	}
	labels := make(map[string]string, len(cfg.Labels))
	for k, v := range cfg.Labels {
		labels[k] = v
	}
	r.order = append(r.order, cfg.Name)
	r.containers[cfg.Name] = &replicaState{State: "created", Status: "Created", Labels: labels}
	return cfg.Name, nil
}

func (r *ContainerRuntime) ContainerStart(ctx context.Context, id string) error {
	r.record("ContainerStart", id)
	if r.ContainerStartErr != nil {
		if err := r.ContainerStartErr(ctx, id); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs, ok := r.containers[id]
	if !ok {
		return fmt.Errorf("container %q not found", id)
	}
	cs.State = "running"
	cs.Status = "Up 1 second"
	return nil
}

func (r *ContainerRuntime) ContainerStop(ctx context.Context, id string, grace time.Duration) error {
	r.record("ContainerStop", id, grace)
	if r.ContainerStopErr != nil {
		if err := r.ContainerStopErr(ctx, id); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs, ok := r.containers[id]
	if !ok {
		return fmt.Errorf("container %q not found", id)
	}
	cs.State = "exited"
	cs.Status = "Exited (0) 1 second ago"
	return nil
}

func (r *ContainerRuntime) ContainerRemove(ctx context.Context, id string, force bool) error {
	r.record("ContainerRemove", id, force)
	if r.ContainerRemoveErr != nil {
		if err := r.ContainerRemoveErr(ctx, id, force); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cs, ok := r.containers[id]
	if !ok {
		return nil
	}
	if cs.State == "running" && !force {
		return fmt.Errorf("container %q is running, use force to remove", id)
	}
	delete(r.containers, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func labelsMatch(labels, filter map[string]string) bool {
	for k, v := range filter {
		if labels[k] != v {
			return false
		}
	}
	return true
}
