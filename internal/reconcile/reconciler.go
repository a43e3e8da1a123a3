package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shepherd/internal/check"
)

const (
	// defaultInterval is 5s: one reconciliation pass per tick.
	defaultInterval = 5 * time.Second
	// defaultCallTimeout is 30s: deadline on each individual runtime call.
	defaultCallTimeout = 30 * time.Second
)

// Reconciler converges the actual replica set toward Spec, one tick at a
// time. Ticks never overlap and all actions within a tick are issued
// sequentially.
type Reconciler struct {
	Spec    Spec
	Runtime ContainerRuntime
	Backoff *Backoff
	Skew    *SkewChecker // optional: warns when wall-clock drift undermines the backoff windows

	// OnEvent, when set, receives a notification per reconciliation action.
	OnEvent func(eventType, message string)

	Interval    time.Duration // tick cadence; defaults to defaultInterval
	Settle      time.Duration // rolling-update settle delay; defaults to defaultSettleDelay
	CallTimeout time.Duration // per-call deadline; defaults to defaultCallTimeout
}

func (r *Reconciler) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return defaultInterval
}

// settleDelay defaults when Settle is zero; a negative Settle disables the
// pause entirely (used by tests).
func (r *Reconciler) settleDelay() time.Duration {
	if r.Settle == 0 {
		return defaultSettleDelay
	}
	return r.Settle
}

func (r *Reconciler) callTimeout() time.Duration {
	if r.CallTimeout > 0 {
		return r.CallTimeout
	}
	return defaultCallTimeout
}

func (r *Reconciler) emit(eventType, message string) {
	if r.OnEvent != nil {
		r.OnEvent(eventType, message)
	}
	slog.Debug("reconcile event", "event", eventType, "message", message)
}

// Run executes ticks at the configured interval until the context ends.
// Every tick error is logged and the loop continues — no per-tick failure
// is fatal to the process.
func (r *Reconciler) Run(ctx context.Context) error {
	check.Assert(r.Runtime != nil, "Reconciler.Run: Runtime must not be nil")
	check.Assert(r.Backoff != nil, "Reconciler.Run: Backoff must not be nil")

	if r.Skew != nil {
		go r.Skew.Run(ctx)
	}

	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()

	for {
		if err := r.Tick(ctx); err != nil {
			slog.Error("reconcile tick failed", "service", r.Spec.Service, "err", err)
			r.emit("reconcile.error", err.Error())
		}
		r.warnOnClockSkew()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs one reconciliation pass: observe, update the backoff state,
// clean up dead replicas, then either roll outdated replicas or correct the
// replica count. Version drift preempts scale adjustments — a tick that
// performs a rolling update does nothing else.
func (r *Reconciler) Tick(ctx context.Context) error {
	rt := boundRuntime{rt: r.Runtime, timeout: r.callTimeout()}

	inv, err := Observe(ctx, rt, r.Spec.Service)
	if err != nil {
		return err
	}
	slog.Info("observed inventory",
		"service", r.Spec.Service,
		"running", len(inv.Running),
		"dead", len(inv.Dead),
		"backoff", r.Backoff.InBackoff(),
	)

	if len(inv.Dead) > 0 {
		r.Backoff.RegisterFailure()
	} else {
		r.Backoff.MaybeReset()
	}

	// Dead replicas are removed every tick, backoff or not. The first
	// removal failure aborts the tick; the next tick retries the rest.
	for _, id := range inv.Dead {
		if err := gracefulRemove(ctx, rt, id); err != nil {
			return fmt.Errorf("clean up dead replica: %w", err)
		}
		r.emit("cleanup.removed", id)
	}

	outdated, err := r.anyDrift(ctx, rt, inv.Running)
	if err != nil {
		return err
	}
	if outdated {
		r.emit("update.started", fmt.Sprintf("service %q: %d replicas outdated", r.Spec.Service, len(inv.Running)))
		return r.rollingUpdate(ctx, rt, inv.Running)
	}

	running := len(inv.Running)
	switch {
	case running < r.Spec.Replicas:
		toSpawn := r.Spec.Replicas - running
		if r.Backoff.InBackoff() {
			slog.Warn("respawn suppressed by backoff",
				"service", r.Spec.Service,
				"failures", r.Backoff.Failures(),
				"missing", toSpawn,
			)
			r.emit("reconcile.skip_backoff", fmt.Sprintf("%d replicas missing", toSpawn))
			return nil
		}
		for range toSpawn {
			id, err := spawn(ctx, rt, r.Spec)
			if err != nil {
				return err
			}
			r.emit("scale.spawned", id)
		}
	case running > r.Spec.Replicas:
		// Victims come from the head of the observed order; no fairness
		// guarantee beyond that.
		for _, id := range inv.Running[:running-r.Spec.Replicas] {
			if err := gracefulRemove(ctx, rt, id); err != nil {
				return err
			}
			r.emit("scale.removed", id)
		}
	}
	return nil
}

// anyDrift reports whether any running replica's version label differs from
// the desired image. A missing label counts as drift — every managed
// replica is created with one.
func (r *Reconciler) anyDrift(ctx context.Context, rt ContainerRuntime, running []string) (bool, error) {
	for _, id := range running {
		detail, err := rt.ContainerInspect(ctx, id)
		if err != nil {
			return false, opError(OpInspect, id, err)
		}
		if detail.Labels[LabelVersion] != r.Spec.Image {
			return true, nil
		}
	}
	return false, nil
}

func (r *Reconciler) warnOnClockSkew() {
	if r.Skew == nil {
		return
	}
	st := r.Skew.Status()
	if st.CheckedAt.IsZero() || st.Healthy {
		return
	}
	slog.Warn("system clock unhealthy; backoff windows may misfire",
		"offset", st.Offset, "err", st.Error)
}
