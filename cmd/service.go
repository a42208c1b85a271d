package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var serviceCmd = &cobra.Command{
	Use:   "service <machine> <name> <start|stop|restart>",
	Short: "Control a service on a machine",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		h := a.resolveOne(args[0])
		ctx := context.Background()
		var out string
		switch args[2] {
		case "start":
			out, err = h.ServiceStart(ctx, args[1])
		case "stop":
			out, err = h.ServiceStop(ctx, args[1])
		case "restart":
			out, err = h.ServiceRestart(ctx, args[1])
		default:
			return fmt.Errorf("unknown action %q", args[2])
		}
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var schedulerCmd = &cobra.Command{
	Use:   "scheduler <machine> <device> [scheduler]",
	Short: "Show or set the I/O scheduler of a block device",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		h := a.resolveOne(args[0])
		ctx := context.Background()
		if len(args) == 3 {
			if err := h.SetIOScheduler(ctx, args[1], args[2]); err != nil {
				return err
			}
		}
		active, err := h.IOScheduler(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %s\n", h.Addr, args[1], active)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <machine>",
	Short: "Show a machine's hostname, core count and reachability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		h := a.resolveOne(args[0])
		ctx := context.Background()
		if !h.Reachable(ctx) {
			return fmt.Errorf("%s is unreachable", h.Addr)
		}
		hostname, err := h.Hostname(ctx)
		if err != nil {
			return err
		}
		cores, err := h.Cores(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: hostname=%s cores=%d\n", h.Addr, hostname, cores)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(infoCmd)
}
