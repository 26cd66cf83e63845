package binding

import (
	"github.com/schemaforge/schemaforge/internal/common"
)

// SchemaKey identifies a logical schema within a logical database. Bindings
// are keyed by these stable string identifiers rather than object references.
type SchemaKey struct {
	Database string
	Schema   string
}

// String returns the canonical database/schema form used in logs.
func (k SchemaKey) String() string {
	return k.Database + "/" + k.Schema
}

type pairKey struct {
	schema SchemaKey
	target string
}

// Hooks receive binding lifecycle notifications. Each hook fires
// synchronously after the reconciler has applied the state change.
type Hooks struct {
	// OnActivate fires exactly once per valid (schema, target) pair, when
	// both the claim and the generator-side registration exist.
	OnActivate func(schema SchemaKey, target string)
	// OnOrphan fires when a previously active pair loses its claim. The
	// receiver should disable, not delete, the associated work unit.
	OnOrphan func(schema SchemaKey, target string)
}

// Reconciler tracks the mutable many-to-many mapping between schemas and
// named generation targets as declarations evolve, enforcing that each
// target is claimed by at most one schema across the whole run.
//
// All mutation happens synchronously within one configuration pass; the
// reconciler is not safe for concurrent use and does not need to be.
type Reconciler struct {
	hooks Hooks

	// claims maps a target name to the single schema claiming it.
	claims map[string]SchemaKey
	// claimOrder holds each schema's claim list in declaration order.
	claimOrder map[SchemaKey][]string
	// schemas preserves schema declaration order for validation.
	schemas []SchemaKey
	// registered holds generator-side target names.
	registered      map[string]bool
	registeredOrder []string
	// active tracks pairs whose activation hook already fired.
	active map[pairKey]bool

	logger *common.Logger
}

// NewReconciler creates a reconciler with the given lifecycle hooks.
// Either hook may be nil.
func NewReconciler(hooks Hooks) *Reconciler {
	return &Reconciler{
		hooks:      hooks,
		claims:     make(map[string]SchemaKey),
		claimOrder: make(map[SchemaKey][]string),
		registered: make(map[string]bool),
		active:     make(map[pairKey]bool),
		logger:     common.GetLogger().WithComponent("binding"),
	}
}

// DeclareSchema records a schema declaration. Declaring the same schema
// again is a no-op; claims survive re-declaration.
func (r *Reconciler) DeclareSchema(schema SchemaKey) {
	if _, known := r.claimOrder[schema]; known {
		return
	}
	r.claimOrder[schema] = nil
	r.schemas = append(r.schemas, schema)
}

// RegisterTarget records a generator-side target name and reconciles any
// pending claim on it.
func (r *Reconciler) RegisterTarget(name string) {
	if r.registered[name] {
		return
	}
	r.registered[name] = true
	r.registeredOrder = append(r.registeredOrder, name)
	if schema, claimed := r.claims[name]; claimed {
		r.activate(schema, name)
	}
}

// MergeClaims adds names to a schema's claim set without disturbing
// existing claims. Re-declaring a schema merges, never replaces.
func (r *Reconciler) MergeClaims(schema SchemaKey, names []string) error {
	r.DeclareSchema(schema)
	for _, name := range names {
		if err := r.claim(schema, name); err != nil {
			return err
		}
	}
	return nil
}

// SetClaims replaces a schema's claim set. Names no longer present are
// orphaned: their deregistration hook fires and tracking is dropped.
// Names retained across the call keep their active state untouched.
func (r *Reconciler) SetClaims(schema SchemaKey, names []string) error {
	r.DeclareSchema(schema)

	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	for _, name := range r.claimOrder[schema] {
		if !keep[name] {
			r.orphan(schema, name)
		}
	}

	return r.MergeClaims(schema, names)
}

// claim transitions one (schema, target) pair to claimed, failing fast when
// the target already belongs to a different schema.
func (r *Reconciler) claim(schema SchemaKey, name string) error {
	if owner, claimed := r.claims[name]; claimed {
		if owner == schema {
			return nil
		}
		return NewDuplicateTargetClaimError(name, owner, schema)
	}

	r.claims[name] = schema
	r.claimOrder[schema] = append(r.claimOrder[schema], name)
	r.logger.Debug("target claimed", "target", name, "schema", schema.String())

	if r.registered[name] {
		r.activate(schema, name)
	}
	return nil
}

// activate fires the activation hook exactly once per pair.
func (r *Reconciler) activate(schema SchemaKey, name string) {
	key := pairKey{schema: schema, target: name}
	if r.active[key] {
		return
	}
	r.active[key] = true
	r.logger.Debug("binding active", "target", name, "schema", schema.String())
	if r.hooks.OnActivate != nil {
		r.hooks.OnActivate(schema, name)
	}
}

// orphan withdraws one claim: the deregistration hook fires when the pair
// was active, and the pair is removed from tracking.
func (r *Reconciler) orphan(schema SchemaKey, name string) {
	key := pairKey{schema: schema, target: name}
	wasActive := r.active[key]
	delete(r.active, key)
	delete(r.claims, name)

	kept := r.claimOrder[schema][:0]
	for _, n := range r.claimOrder[schema] {
		if n != name {
			kept = append(kept, n)
		}
	}
	r.claimOrder[schema] = kept

	r.logger.Debug("binding orphaned", "target", name, "schema", schema.String())
	if wasActive && r.hooks.OnOrphan != nil {
		r.hooks.OnOrphan(schema, name)
	}
}

// Claims returns a schema's current claim set in declaration order.
func (r *Reconciler) Claims(schema SchemaKey) []string {
	return append([]string(nil), r.claimOrder[schema]...)
}

// Owner returns the schema claiming a target, if any.
func (r *Reconciler) Owner(name string) (SchemaKey, bool) {
	schema, ok := r.claims[name]
	return schema, ok
}

// Validate runs end-of-run checks in declaration order: every schema must
// claim at least one target and every claim must resolve to a registered
// target. Registered targets nobody claimed are logged as warnings only.
func (r *Reconciler) Validate() error {
	for _, schema := range r.schemas {
		claims := r.claimOrder[schema]
		if len(claims) == 0 {
			return NewEmptyClaimSetError(schema)
		}
		for _, name := range claims {
			if !r.registered[name] {
				return NewUnresolvedTargetError(schema, name)
			}
		}
	}

	for _, name := range r.Unclaimed() {
		r.logger.Warn("registered target is never claimed by any schema", "target", name)
	}
	return nil
}

// Unclaimed returns registered target names no schema claims, in
// registration order.
func (r *Reconciler) Unclaimed() []string {
	var out []string
	for _, name := range r.registeredOrder {
		if _, claimed := r.claims[name]; !claimed {
			out = append(out, name)
		}
	}
	return out
}
