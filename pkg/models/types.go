package models

// Identity holds the credentials used to open SSH sessions.
type Identity struct {
	User       string   `yaml:"user"`
	KeyPaths   []string `yaml:"key_paths,omitempty"` // tried in order
	Passphrase string   `yaml:"passphrase,omitempty"`
	Password   string   `yaml:"password,omitempty"`
}

// Machine is one administered machine in the inventory.
type Machine struct {
	Alias       []string `yaml:"alias,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Address     string   `yaml:"address"` // IP or domain name
	Port        int      `yaml:"port"`
	IdentityRef string   `yaml:"identity_ref"`
}

// MachineFilter selects machines for batch operations.
type MachineFilter struct {
	Names []string // exact name match
	Tags  []string // any matching tag selects the machine
}
