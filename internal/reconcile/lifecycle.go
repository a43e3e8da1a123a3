package reconcile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

const (
	// stopGrace is the SIGTERM-to-SIGKILL window on graceful removal.
	stopGrace = 5 * time.Second

	replicaNameRandomBytes = 2
	replicaNameMaxLen      = 255
)

// replicaName generates a container name with a random suffix.
// Format: shepherd-{service}-{4-char-random}
func replicaName(service string) string {
	suffix := randomReplicaSuffix()
	const fixedLen = len("shepherd--")
	if limit := replicaNameMaxLen - fixedLen - len(suffix); len(service) > limit {
		service = service[:limit]
	}
	return fmt.Sprintf("shepherd-%s-%s", service, suffix)
}

func randomReplicaSuffix() string {
	b := make([]byte, replicaNameRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%0*x", replicaNameRandomBytes*2, 0)
	}
	return hex.EncodeToString(b)
}

// spawn creates and starts one replica of the desired image, labeled so the
// observer finds it on subsequent ticks. A created but unstarted container
// is not rolled back on start failure — the next tick classifies it dead
// and cleans it up.
func spawn(ctx context.Context, rt ContainerRuntime, spec Spec) (string, error) {
	name := replicaName(spec.Service)
	id, err := rt.ContainerCreate(ctx, CreateConfig{
		Name:  name,
		Image: spec.Image,
		Labels: map[string]string{
			LabelService:   spec.Service,
			LabelManagedBy: managedByValue,
			LabelVersion:   spec.Image,
		},
		Ports: spec.Ports,
	})
	if err != nil {
		return "", opError(OpCreate, name, err)
	}
	if err := rt.ContainerStart(ctx, id); err != nil {
		return "", opError(OpStart, id, err)
	}
	return id, nil
}

// gracefulRemove stops a replica with a short grace period, then forces
// removal. Stop errors are ignored — the replica may already be stopped.
func gracefulRemove(ctx context.Context, rt ContainerRuntime, id string) error {
	if err := rt.ContainerStop(ctx, id, stopGrace); err != nil {
		slog.Debug("stop before remove failed", "replica", id, "err", err)
	}
	if err := rt.ContainerRemove(ctx, id, true); err != nil {
		return opError(OpRemove, id, err)
	}
	return nil
}
