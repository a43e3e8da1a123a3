package reconcile

// Container labels attached to every managed replica.
const (
	LabelService   = "shepherd.service"
	LabelManagedBy = "shepherd.managed-by"
	LabelVersion   = "shepherd.version"

	managedByValue = "shepherd"
)

// Spec is the desired state the reconciler converges toward. Set once at
// process start from config; never mutated afterwards.
type Spec struct {
	Service  string
	Image    string
	Replicas int
	Ports    []PortMapping
}

// Inventory partitions the observed replicas of one service into running
// and dead, preserving the runtime's list order. The two slices are
// disjoint and together cover every observed replica.
type Inventory struct {
	Running []string
	Dead    []string
}
