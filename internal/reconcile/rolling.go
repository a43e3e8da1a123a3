package reconcile

import (
	"context"
	"time"
)

// defaultSettleDelay is 3s: long enough for most containers to come up,
// short enough to keep a full update quick.
const defaultSettleDelay = 3 * time.Second

// rollingUpdate replaces every replica in plan with a freshly spawned one,
// in observed order, spawn-before-kill: the replacement is started and given
// the settle delay before its predecessor is removed, so the service never
// drops below the desired count during the update. The first error aborts
// the remaining replacements; already-replaced replicas stay — the next
// tick's drift check resumes the update for whatever remains outdated.
func (r *Reconciler) rollingUpdate(ctx context.Context, rt ContainerRuntime, plan []string) error {
	for _, old := range plan {
		id, err := spawn(ctx, rt, r.Spec)
		if err != nil {
			return err
		}
		r.emit("update.spawned", id)

		if err := sleep(ctx, r.settleDelay()); err != nil {
			return err
		}

		if err := gracefulRemove(ctx, rt, old); err != nil {
			return err
		}
		r.emit("update.replaced", old)
	}
	return nil
}

// sleep pauses for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
