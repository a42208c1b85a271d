package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/config"
	"github.com/vdt/jetpants/pkg/models"
)

var machineCmd = &cobra.Command{
	Use:   "machine",
	Short: "Manage the machine inventory",
}

func newCmdMachineList() *cobra.Command {
	var names, tags []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inventory machines, optionally filtered by name or tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			machines := config.Select(a.provider, models.MachineFilter{Names: names, Tags: tags})
			sorted := make([]string, 0, len(machines))
			for name := range machines {
				sorted = append(sorted, name)
			}
			sort.Strings(sorted)
			for _, name := range sorted {
				m := machines[name]
				fmt.Printf("%s\t%s:%d\ttags=%s\n", name, m.Address, m.Port, strings.Join(m.Tags, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&names, "host", nil, "select these machines by name, alias or address")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "select every machine carrying one of these tags")
	return cmd
}

func newCmdMachineAdd() *cobra.Command {
	var m models.Machine
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a machine to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if m.Address == "" {
				return fmt.Errorf("an address must be given")
			}
			if m.Port == 0 {
				m.Port = 22
			}
			a.provider.AddMachine(args[0], m)
			if err := a.store.Save(a.cfg); err != nil {
				return fmt.Errorf("save inventory: %w", err)
			}
			fmt.Printf("added %s (%s:%d)\n", args[0], m.Address, m.Port)
			return nil
		},
	}
	cmd.Flags().StringVarP(&m.Address, "address", "a", "", "IP or domain name")
	cmd.Flags().IntVarP(&m.Port, "port", "p", 22, "SSH port")
	cmd.Flags().StringSliceVar(&m.Alias, "alias", nil, "alternate names")
	cmd.Flags().StringSliceVarP(&m.Tags, "tag", "t", nil, "tags for batch selection")
	cmd.Flags().StringVarP(&m.IdentityRef, "identity", "i", "", "identity name to connect with")
	return cmd
}

func newCmdIdentityAdd() *cobra.Command {
	var id models.Identity
	var promptPassword bool
	cmd := &cobra.Command{
		Use:   "add-identity <name>",
		Short: "Add SSH credentials to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if promptPassword {
				pass, err := readPasswordFromTerminal(fmt.Sprintf("password for %s: ", id.User))
				if err != nil {
					return err
				}
				id.Password = pass
			}
			if id.User == "" {
				return fmt.Errorf("a user must be given")
			}
			a.provider.AddIdentity(args[0], id)
			if err := a.store.Save(a.cfg); err != nil {
				return fmt.Errorf("save inventory: %w", err)
			}
			fmt.Printf("added identity %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&id.User, "user", "u", "", "SSH user")
	cmd.Flags().StringSliceVarP(&id.KeyPaths, "key", "i", nil, "private key files, tried in order")
	cmd.Flags().StringVar(&id.Passphrase, "passphrase", "", "private key passphrase")
	cmd.Flags().BoolVarP(&promptPassword, "password", "P", false, "prompt for an SSH password")
	return cmd
}

func init() {
	machineCmd.AddCommand(newCmdMachineList())
	machineCmd.AddCommand(newCmdMachineAdd())
	machineCmd.AddCommand(newCmdIdentityAdd())
	rootCmd.AddCommand(machineCmd)
}
