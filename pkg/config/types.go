package config

import "github.com/vdt/jetpants/pkg/models"

// Configuration is the top-level structure of the inventory yaml file.
type Configuration struct {
	Identities map[string]models.Identity `yaml:"identities"`
	Machines   map[string]models.Machine  `yaml:"machines"`
}

// Provider is the lookup surface the commands and the connector consume.
type Provider interface {
	GetMachine(name string) (models.Machine, bool)
	GetIdentity(name string) (models.Identity, bool)
	AddMachine(name string, m models.Machine)
	AddIdentity(name string, id models.Identity)
	ListMachines() map[string]models.Machine
	GetMachinesByTag(tag string) map[string]models.Machine
	Find(input string) string
}
