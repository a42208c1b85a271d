package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vdt/jetpants/pkg/models"
)

func TestLoadMissingFileIsEmptyInventory(t *testing.T) {
	s := NewDefaultStore(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Machines) != 0 || len(cfg.Identities) != 0 {
		t.Fatalf("expected empty inventory, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	s := NewDefaultStore(path)

	cfg := &Configuration{
		Identities: map[string]models.Identity{
			"ops": {User: "ops", KeyPaths: []string{"~/.ssh/id_ed25519"}},
		},
		Machines: map[string]models.Machine{
			"db101": {
				Address:     "10.0.0.1",
				Port:        22,
				Tags:        []string{"mysql", "pool-a"},
				Alias:       []string{"master"},
				IdentityRef: "ops",
			},
		},
	}
	if err := s.Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, ok := got.Machines["db101"]
	if !ok {
		t.Fatalf("machine missing after round trip: %+v", got)
	}
	if m.Address != "10.0.0.1" || m.Port != 22 || m.IdentityRef != "ops" {
		t.Fatalf("machine fields not preserved: %+v", m)
	}
	id, ok := got.Identities["ops"]
	if !ok || id.User != "ops" || len(id.KeyPaths) != 1 {
		t.Fatalf("identity not preserved: %+v", got.Identities)
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("machines: [not: a: map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDefaultStore(path).Load(); err == nil {
		t.Fatalf("expected a parse error")
	}
}
