package reconcile

import (
	"context"
	"strings"
)

// Observe lists every container labeled with the service name and
// classifies each as running or dead. A list failure propagates as a
// RuntimeError (OpList) and is not retried here — the next tick observes
// again from scratch.
func Observe(ctx context.Context, rt ContainerRuntime, service string) (Inventory, error) {
	entries, err := rt.ContainerList(ctx, map[string]string{LabelService: service})
	if err != nil {
		return Inventory{}, opError(OpList, "", err)
	}

	var inv Inventory
	for _, e := range entries {
		if IsRunning(e.State, e.Status) {
			inv.Running = append(inv.Running, e.ID)
		} else {
			inv.Dead = append(inv.Dead, e.ID)
		}
	}
	return inv, nil
}

// IsRunning classifies one replica from the two health signals the engine
// reports. Engines are not consistent about the structured state versus the
// human-readable status line, so a replica counts as running when either
// signal says so. The status text format is not contractually stable; keep
// the rule in this one place.
func IsRunning(state, status string) bool {
	if state == "running" {
		return true
	}
	s := strings.ToLower(status)
	return strings.Contains(s, "up") || strings.Contains(s, "running")
}
