package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
)

type CompareOptions struct {
	Source string
	Base   string
	Dests  []string
	Files  []string
}

func NewCmdCompare() *cobra.Command {
	o := &CompareOptions{}
	cmd := &cobra.Command{
		Use:   "compare <source> <base-dir> <dest[:dir]>...",
		Short: "Verify that a tree is replicated identically on other machines",
		Long: `Walk the tree under base-dir on the source machine and require
every entry to exist with the identical size on every destination.
Entries present only on a destination are tolerated.

Example:
  jetpants compare db1 /var/lib/mysql db2 db3:/data/mysql`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Source, o.Base, o.Dests = args[0], args[1], args[2:]
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringSliceVar(&o.Files, "file", nil, "restrict the comparison to these top-level entries")
	return cmd
}

func (o *CompareOptions) Run(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	src := a.resolveOne(o.Source)
	targets := make([]host.Target, len(o.Dests))
	for i, spec := range o.Dests {
		name, dir := splitDestSpec(spec)
		targets[i] = host.Target{Host: a.resolveOne(name), Dir: dir}
	}

	if err := src.CompareTrees(context.Background(), o.Base, targets, host.CompareOptions{Files: o.Files}); err != nil {
		return err
	}
	fmt.Printf("%s:%s matches on all %d machines\n", src.Addr, o.Base, len(targets))
	return nil
}

func init() {
	rootCmd.AddCommand(NewCmdCompare())
}
