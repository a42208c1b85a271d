package config

import (
	"fmt"
	"sync"

	"github.com/vdt/jetpants/pkg/models"
)

type provider struct {
	mu  sync.RWMutex
	cfg *Configuration
	// lookupIndex maps every identifier a user may type (name, alias,
	// address, user@address:port) to the machine's inventory name.
	lookupIndex map[string]string
}

func NewProvider(cfg *Configuration) Provider {
	p := &provider{
		cfg:         cfg,
		lookupIndex: make(map[string]string),
	}
	for name := range cfg.Machines {
		p.index(name)
	}
	return p
}

// index registers a machine and all of its identifiers.
func (p *provider) index(name string) {
	m, ok := p.cfg.Machines[name]
	if !ok {
		return
	}
	p.lookupIndex[name] = name
	if m.Address != "" {
		p.lookupIndex[m.Address] = name
		p.lookupIndex[fmt.Sprintf("%s:%d", m.Address, m.Port)] = name
	}
	if id, ok := p.cfg.Identities[m.IdentityRef]; ok && id.User != "" {
		p.lookupIndex[fmt.Sprintf("%s@%s:%d", id.User, m.Address, m.Port)] = name
	}
	for _, alias := range m.Alias {
		if alias == "" {
			continue
		}
		p.lookupIndex[alias] = name
	}
}

// Find matches user input against the lookup index.
func (p *provider) Find(input string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if name, ok := p.lookupIndex[input]; ok {
		return name
	}
	return ""
}

func (p *provider) GetMachine(name string) (models.Machine, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.cfg.Machines[name]
	return m, ok
}

func (p *provider) GetIdentity(name string) (models.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.cfg.Machines[name]
	if !ok {
		return models.Identity{}, false
	}
	id, ok := p.cfg.Identities[m.IdentityRef]
	return id, ok
}

func (p *provider) AddMachine(name string, m models.Machine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Machines[name] = m
	p.index(name)
}

func (p *provider) AddIdentity(name string, id models.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Identities[name] = id
}

func (p *provider) ListMachines() map[string]models.Machine {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]models.Machine, len(p.cfg.Machines))
	for k, v := range p.cfg.Machines {
		out[k] = v
	}
	return out
}

func (p *provider) GetMachinesByTag(tag string) map[string]models.Machine {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]models.Machine)
	for name, m := range p.cfg.Machines {
		for _, t := range m.Tags {
			if t == tag {
				out[name] = m
				break
			}
		}
	}
	return out
}
