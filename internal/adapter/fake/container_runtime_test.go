package fake

import (
	"context"
	"testing"
	"time"

	"shepherd/internal/reconcile"
)

func TestContainerRuntime_ListFiltersByLabel(t *testing.T) {
	rt := NewContainerRuntime()
	rt.AddContainer("a", "running", "Up 1 second", map[string]string{"shepherd.service": "web"})
	rt.AddContainer("b", "running", "Up 1 second", map[string]string{"shepherd.service": "db"})
	rt.AddContainer("c", "exited", "Exited (0)", map[string]string{"shepherd.service": "web"})

	entries, err := rt.ContainerList(context.Background(), map[string]string{"shepherd.service": "web"})
	if err != nil {
		t.Fatalf("ContainerList failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "c" {
		t.Fatalf("entries = %v, want insertion order a, c", entries)
	}
}

func TestContainerRuntime_RemoveRunningRequiresForce(t *testing.T) {
	rt := NewContainerRuntime()
	rt.AddContainer("a", "running", "Up 1 second", nil)

	if err := rt.ContainerRemove(context.Background(), "a", false); err == nil {
		t.Fatal("expected error removing a running container without force")
	}
	if err := rt.ContainerRemove(context.Background(), "a", true); err != nil {
		t.Fatalf("forced remove failed: %v", err)
	}
	if got := len(rt.IDs()); got != 0 {
		t.Fatalf("%d containers left, want 0", got)
	}
}

func TestContainerRuntime_RemoveMissingIsIdempotent(t *testing.T) {
	rt := NewContainerRuntime()
	if err := rt.ContainerRemove(context.Background(), "ghost", true); err != nil {
		t.Fatalf("remove of missing container: %v, want nil", err)
	}
}

func TestContainerRuntime_CreateRejectsDuplicateName(t *testing.T) {
	rt := NewContainerRuntime()
	cfg := reconcile.CreateConfig{Name: "a", Image: "nginx:1.27"}

	if _, err := rt.ContainerCreate(context.Background(), cfg); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := rt.ContainerCreate(context.Background(), cfg); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestContainerRuntime_StartAndStopTransitionState(t *testing.T) {
	rt := NewContainerRuntime()
	id, err := rt.ContainerCreate(context.Background(), reconcile.CreateConfig{Name: "a", Image: "nginx:1.27"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := rt.ContainerStart(context.Background(), id); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	entries, _ := rt.ContainerList(context.Background(), nil)
	if entries[0].State != "running" {
		t.Fatalf("state after start = %q, want running", entries[0].State)
	}

	if err := rt.ContainerStop(context.Background(), id, 5*time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	entries, _ = rt.ContainerList(context.Background(), nil)
	if entries[0].State != "exited" {
		t.Fatalf("state after stop = %q, want exited", entries[0].State)
	}
}
