package config

import (
	"testing"

	"github.com/vdt/jetpants/pkg/models"
)

func testConfig() *Configuration {
	return &Configuration{
		Identities: map[string]models.Identity{
			"ops": {User: "ops"},
		},
		Machines: map[string]models.Machine{
			"db101": {
				Address:     "10.0.0.1",
				Port:        22,
				Tags:        []string{"mysql"},
				Alias:       []string{"master"},
				IdentityRef: "ops",
			},
			"db102": {
				Address:     "10.0.0.2",
				Port:        2222,
				Tags:        []string{"mysql", "standby"},
				IdentityRef: "ops",
			},
		},
	}
}

func TestFindMatchesEveryIdentifierForm(t *testing.T) {
	p := NewProvider(testConfig())
	for _, input := range []string{"db101", "master", "10.0.0.1", "10.0.0.1:22", "ops@10.0.0.1:22"} {
		if got := p.Find(input); got != "db101" {
			t.Fatalf("Find(%q) = %q, want db101", input, got)
		}
	}
	if got := p.Find("nonexistent"); got != "" {
		t.Fatalf("Find on unknown input = %q, want empty", got)
	}
}

func TestGetMachinesByTag(t *testing.T) {
	p := NewProvider(testConfig())
	mysql := p.GetMachinesByTag("mysql")
	if len(mysql) != 2 {
		t.Fatalf("expected both machines tagged mysql, got %v", mysql)
	}
	standby := p.GetMachinesByTag("standby")
	if len(standby) != 1 {
		t.Fatalf("expected one standby, got %v", standby)
	}
	if _, ok := standby["db102"]; !ok {
		t.Fatalf("wrong standby machine: %v", standby)
	}
}

func TestAddMachineIndexesIdentifiers(t *testing.T) {
	p := NewProvider(testConfig())
	p.AddMachine("db103", models.Machine{
		Address:     "10.0.0.3",
		Port:        22,
		Alias:       []string{"spare"},
		IdentityRef: "ops",
	})
	if got := p.Find("spare"); got != "db103" {
		t.Fatalf("new machine's alias not indexed, Find returned %q", got)
	}
	if got := p.Find("10.0.0.3:22"); got != "db103" {
		t.Fatalf("new machine's address not indexed, Find returned %q", got)
	}
}

func TestSelectUnionsNamesAndTags(t *testing.T) {
	p := NewProvider(testConfig())

	all := Select(p, models.MachineFilter{})
	if len(all) != 2 {
		t.Fatalf("empty filter must select everything, got %v", all)
	}

	byAlias := Select(p, models.MachineFilter{Names: []string{"master"}})
	if len(byAlias) != 1 {
		t.Fatalf("alias selection failed: %v", byAlias)
	}
	if _, ok := byAlias["db101"]; !ok {
		t.Fatalf("alias resolved to the wrong machine: %v", byAlias)
	}

	union := Select(p, models.MachineFilter{Names: []string{"db101"}, Tags: []string{"standby"}})
	if len(union) != 2 {
		t.Fatalf("names and tags must union: %v", union)
	}
}

func TestGetIdentityFollowsRef(t *testing.T) {
	p := NewProvider(testConfig())
	id, ok := p.GetIdentity("db101")
	if !ok || id.User != "ops" {
		t.Fatalf("identity not resolved through the machine's ref: %v %v", id, ok)
	}
	if _, ok := p.GetIdentity("nonexistent"); ok {
		t.Fatalf("unknown machine must not resolve an identity")
	}
}
