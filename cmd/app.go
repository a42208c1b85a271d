package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/config"
	"github.com/vdt/jetpants/pkg/host"
	"github.com/vdt/jetpants/pkg/models"
)

// app wires the inventory, the SSH dialer and the handle registry
// together for one command invocation.
type app struct {
	store    config.Store
	cfg      *config.Configuration
	provider config.Provider
	dialCfg  host.DialConfig
	registry *host.Registry
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	store := config.NewDefaultStore(path)
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load inventory %s: %w", path, err)
	}
	provider := config.NewProvider(cfg)

	dialCfg := host.DialConfig{
		Resolve: func(addr string) (models.Identity, int, bool) {
			name := provider.Find(addr)
			if name == "" {
				return models.Identity{}, 0, false
			}
			m, ok := provider.GetMachine(name)
			if !ok {
				return models.Identity{}, 0, false
			}
			id, ok := provider.GetIdentity(name)
			return id, m.Port, ok
		},
	}
	return &app{
		store:    store,
		cfg:      cfg,
		provider: provider,
		dialCfg:  dialCfg,
		registry: host.NewRegistry(host.NewSSHDial(dialCfg)),
	}, nil
}

func (a *app) close() {
	a.registry.CloseAll()
}

// resolveOne maps user input (inventory name, alias, or bare address)
// to a Host handle.
func (a *app) resolveOne(input string) *host.Host {
	if name := a.provider.Find(input); name != "" {
		if m, ok := a.provider.GetMachine(name); ok {
			return a.registry.Resolve(m.Address)
		}
	}
	return a.registry.Resolve(input)
}

// resolveMany expands a comma-separated machine list and an optional
// tag into handles. Tag selection wins when both are given.
func (a *app) resolveMany(hostList, tag string) ([]*host.Host, error) {
	if tag != "" {
		machines := a.provider.GetMachinesByTag(tag)
		if len(machines) == 0 {
			return nil, fmt.Errorf("tag %q matches no machines", tag)
		}
		hosts := make([]*host.Host, 0, len(machines))
		for _, m := range machines {
			hosts = append(hosts, a.registry.Resolve(m.Address))
		}
		return hosts, nil
	}
	var hosts []*host.Host
	for _, part := range strings.Split(hostList, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hosts = append(hosts, a.resolveOne(part))
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no machines given")
	}
	return hosts, nil
}
