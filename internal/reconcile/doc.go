// Package reconcile drives the set of running containers for one service
// toward its declared desired state.
//
// A single loop observes the runtime once per tick, classifies replicas as
// running or dead, and issues the minimum create/start/stop/remove actions
// to close the gap: dead cleanup first, then version drift (rolling update),
// then replica-count correction. Repeated failures pause respawns through a
// backoff gate; everything else keeps running every tick. Ticks are strictly
// serialized — the effects of one tick are applied (or the tick aborted on
// its first error) before the next observation.
package reconcile
