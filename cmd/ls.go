package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
)

var lsCmd = &cobra.Command{
	Use:   "ls <machine> <path>",
	Short: "List a remote directory as a size map",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		h := a.resolveOne(args[0])
		listing, err := h.ListDirectory(context.Background(), args[1])
		if err != nil {
			return err
		}

		names := make([]string, 0, len(listing))
		for name := range listing {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if listing[name] == host.SizeDir {
				fmt.Printf("%12s  %s/\n", "DIR", name)
				continue
			}
			fmt.Printf("%12d  %s\n", listing[name], name)
		}
		return nil
	},
}

var duCmd = &cobra.Command{
	Use:   "du <machine> <path>",
	Short: "Sum the size of a remote directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		h := a.resolveOne(args[0])
		total, err := h.TotalSize(context.Background(), args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s:%s\n", total, h.Addr, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(duCmd)
}
