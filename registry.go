package camfov

import "sync"

// RigRegistry owns every rig by id. Rigs are never removed.
type RigRegistry struct {
	mu    sync.RWMutex
	order []string
	rigs  map[string]*Rig
}

func NewRigRegistry() *RigRegistry {
	return &RigRegistry{rigs: make(map[string]*Rig)}
}

// Register inserts rig, or replaces the rig with the same id in place.
func (reg *RigRegistry) Register(rig *Rig) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rigs[rig.ID]; !ok {
		reg.order = append(reg.order, rig.ID)
	}
	reg.rigs[rig.ID] = rig
}

func (reg *RigRegistry) Lookup(id string) (*Rig, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rigs[id]
	return r, ok
}

func (reg *RigRegistry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.order)
}

// All returns rigs in insertion order.
func (reg *RigRegistry) All() []*Rig {
	return reg.filter(func(*Rig) bool { return true })
}

func (reg *RigRegistry) Oscillating() []*Rig {
	return reg.filter(func(r *Rig) bool { return r.Kind.Oscillates() })
}

func (reg *RigRegistry) Confined() []*Rig {
	return reg.filter(func(r *Rig) bool { return r.Confined })
}

// Projecting returns rigs that own a footprint mesh.
func (reg *RigRegistry) Projecting() []*Rig {
	return reg.filter(func(r *Rig) bool { return r.Projector != nil })
}

func (reg *RigRegistry) filter(keep func(*Rig) bool) []*Rig {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Rig, 0, len(reg.order))
	for _, id := range reg.order {
		if r := reg.rigs[id]; keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type RegistryModule struct{}

func (RegistryModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewRigRegistry())
}
