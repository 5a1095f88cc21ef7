package component

import (
	"fmt"
	"log/slog"
	"sort"
)

// entry pairs a descriptor with the live component instance it governs.
type entry struct {
	desc Descriptor
	comp Component
}

// Registry holds component descriptors keyed by name, validates the
// declared dependency graph, and produces a bound Executor per world.
//
// Register follows the teacher's Registry.Register semantics: a duplicate
// name silently replaces the previous entry rather than erroring, since the
// registry is expected to be built once at startup from a fixed manifest.
type Registry struct {
	log     *slog.Logger
	entries map[string]*entry
	order   []string // insertion order, for stable iteration before build
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:     log.With("subsystem", "component-registry"),
		entries: make(map[string]*entry),
	}
}

// Register inserts a component under its descriptor's name. A duplicate name
// overwrites the previous registration silently.
func (r *Registry) Register(desc Descriptor, comp Component) {
	if _, exists := r.entries[desc.Name]; !exists {
		r.order = append(r.order, desc.Name)
	}
	r.entries[desc.Name] = &entry{desc: desc, comp: comp}
}

// descriptors returns all registered descriptors in registration order.
func (r *Registry) descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].desc)
	}
	return out
}

// BuildRoutes runs the validation pipeline described in spec §4.1 and
// returns a Plan that Executor(world) can use to produce bound executors.
// The first validation failure is returned as a *GraphError.
func (r *Registry) BuildRoutes() (*Plan, error) {
	descs := r.descriptors()

	if err := validateRoleDisjoint(descs); err != nil {
		return nil, err
	}
	if err := validatePeerSymmetry(descs); err != nil {
		return nil, err
	}

	g := buildMergedGraph(descs)

	if err := validateEdgeTargetsExist(descs, g); err != nil {
		return nil, err
	}

	order, err := g.topoOrderByPeeling()
	if err != nil {
		return nil, err
	}

	var bound []boundComponent
	for _, nodeID := range order {
		for _, name := range g.membersOf(nodeID) {
			e := r.entries[name]
			bound = append(bound, boundComponent{name: e.desc.Name, comp: e.comp})
		}
	}

	plan := &Plan{
		registry: r,
		graph:    g,
		order:    order,
		bound:    bound,
	}

	// Channels, including peer links and notify routes, are bound once here
	// across every component regardless of world: a peer or notify relation
	// may legitimately cross the UI/background split (spec §4.3's paired
	// game-state readers are exactly this), so wiring happens on the full
	// component set before Executor(world) ever splits it.
	senders, err := plan.bindChannels(bound)
	if err != nil {
		return nil, err
	}
	plan.senders = senders

	r.log.Debug("build routes succeeded", "merged_nodes", len(order))
	return plan, nil
}

// validateRoleDisjoint enforces spec §4.1 step 1: for every descriptor, the
// three role sets (peers, requirements, notifies) must have no member in
// common.
func validateRoleDisjoint(descs []Descriptor) error {
	for _, d := range descs {
		seen := make(map[string]string, len(d.Peers)+len(d.Requirements)+len(d.Notifies))
		check := func(role string, names []string) error {
			for _, n := range names {
				if prev, ok := seen[n]; ok {
					return newGraphError(
						fmt.Sprintf("component %q declares %q in both %s and %s roles", d.Name, n, prev, role),
						d.Name, n,
					)
				}
				seen[n] = role
			}
			return nil
		}
		if err := check("peer", d.Peers); err != nil {
			return err
		}
		if err := check("requirement", d.Requirements); err != nil {
			return err
		}
		if err := check("notify", d.Notifies); err != nil {
			return err
		}
	}
	return nil
}

// validatePeerSymmetry enforces spec §4.1 step 2: every declared peer
// relation must be mutual.
func validatePeerSymmetry(descs []Descriptor) error {
	byName := make(map[string]Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}
	for _, d := range descs {
		for _, p := range d.Peers {
			peer, ok := byName[p]
			if !ok {
				return newGraphError("peer mismatch: referenced component not registered", d.Name, p)
			}
			if !contains(peer.Peers, d.Name) {
				return newGraphError(fmt.Sprintf("peer mismatch %s<->%s", d.Name, p), d.Name, p)
			}
		}
	}
	return nil
}

// validateEdgeTargetsExist enforces spec §4.1 step 4: every name referenced
// by a requires edge must exist as a hosted component.
func validateEdgeTargetsExist(descs []Descriptor, g *mergedGraph) error {
	hosted := make(map[string]bool, len(descs))
	for _, d := range descs {
		hosted[d.Name] = true
	}
	var missing []string
	for _, d := range descs {
		for _, req := range d.Requirements {
			if !hosted[req] {
				missing = append(missing, req)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return newGraphError("requirement references unregistered component", missing...)
	}
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Plan is the result of a successful BuildRoutes: a validated graph,
// invocation order, and fully bound channel set from which per-world
// executors can be derived.
type Plan struct {
	registry *Registry
	graph    *mergedGraph
	order    []string // merged-node ids, producers before consumers
	bound    []boundComponent
	senders  map[string]*Broadcast[any]
}

// Executor builds the Executor for the given world: every bound component
// tagged with that world, in the order derived by BuildRoutes. Channels were
// already allocated and handed to every component's Bind in BuildRoutes.
func (p *Plan) Executor(world World) (*Executor, error) {
	var worldBound []boundComponent
	for _, b := range p.bound {
		if p.registry.entries[b.name].desc.World == world {
			worldBound = append(worldBound, b)
		}
	}

	return &Executor{
		world:      world,
		log:        p.registry.log.With("world", string(world)),
		components: worldBound,
		senders:    p.senders,
	}, nil
}

// bindChannels allocates and distributes the channel bundle for every
// component in bound, per spec §4.1 "Binding". It returns the broadcast
// sender for each component so the Executor can publish Tick's return value.
func (p *Plan) bindChannels(bound []boundComponent) (map[string]*Broadcast[any], error) {
	reg := p.registry

	broadcasts := make(map[string]*Broadcast[any], len(bound))
	for _, b := range bound {
		broadcasts[b.name] = NewBroadcast[any]()
	}

	peerPairs := make(map[pairKey]*peerPair)
	notifyReceivers := make(map[string]chan NotifyMsg)

	for _, b := range bound {
		d := reg.entries[b.name].desc
		if d.AcceptNotifications {
			notifyReceivers[b.name] = make(chan NotifyMsg, notifyBufferSize)
		}
	}

	for _, b := range bound {
		d := reg.entries[b.name].desc

		ch := Channels{
			Requirements: make(map[string]*Receiver[any], len(d.Requirements)),
			Peers:        make(map[string]PeerLink, len(d.Peers)),
			Notify:       make(map[string]chan<- NotifyMsg, len(d.Notifies)),
		}

		for _, req := range d.Requirements {
			bc, ok := broadcasts[req]
			if !ok {
				return nil, newGraphError("requirement not hosted", b.name, req)
			}
			ch.Requirements[req] = bc.Subscribe()
		}

		for _, peerName := range d.Peers {
			key := pairKeyFor(b.name, peerName)
			pair, ok := peerPairs[key]
			if !ok {
				pair = newPeerPair()
				peerPairs[key] = pair
			}
			ch.Peers[peerName] = pair.sideFor(b.name, peerName)
		}

		if d.AcceptNotifications {
			ch.Incoming = notifyReceivers[b.name]
		}
		for _, target := range d.Notifies {
			recv, ok := notifyReceivers[target]
			if !ok {
				return nil, newGraphError("notify target does not accept notifications", b.name, target)
			}
			ch.Notify[target] = recv
		}

		reg.entries[b.name].comp.Bind(ch)
	}

	return broadcasts, nil
}

type boundComponent struct {
	name string
	comp Component
}

const notifyBufferSize = 64
