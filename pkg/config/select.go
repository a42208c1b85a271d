package config

import "github.com/vdt/jetpants/pkg/models"

// Select resolves a MachineFilter against the inventory. Names and tags
// are unioned; an empty filter selects every machine.
func Select(p Provider, f models.MachineFilter) map[string]models.Machine {
	if len(f.Names) == 0 && len(f.Tags) == 0 {
		return p.ListMachines()
	}
	out := make(map[string]models.Machine)
	for _, input := range f.Names {
		if name := p.Find(input); name != "" {
			if m, ok := p.GetMachine(name); ok {
				out[name] = m
			}
		}
	}
	for _, tag := range f.Tags {
		for name, m := range p.GetMachinesByTag(tag) {
			out[name] = m
		}
	}
	return out
}
