package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
)

type CopyOptions struct {
	Source    string
	Base      string
	Dests     []string
	Files     []string
	Overwrite bool
	Port      int
	Progress  bool
}

func NewCmdCopy() *cobra.Command {
	o := &CopyOptions{}
	cmd := &cobra.Command{
		Use:   "copy <source> <base-dir> <dest[:dir]>...",
		Short: "Stream a directory tree to many machines through a relay chain",
		Long: `Stream the tree under base-dir from the source machine to every
destination. The source sends exactly once; each destination relays
the stream onward to the next, so source egress does not grow with
the destination count. The transfer only counts as successful after
every destination verifies identical to the source.

Destinations receive into base-dir unless a dest:dir override is
given. Do not blindly re-run a failed copy: the chain is not
idempotent.

Examples:
  jetpants copy db1 /var/lib/mysql db2 db3
  jetpants copy db1 /var/lib/mysql db2:/data/mysql --file ibdata1 --overwrite`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Source, o.Base, o.Dests = args[0], args[1], args[2:]
			return o.Run(cmd)
		},
	}

	cmd.Flags().StringSliceVar(&o.Files, "file", nil, "restrict the transfer to these top-level entries")
	cmd.Flags().BoolVar(&o.Overwrite, "overwrite", false, "permit copying onto non-empty destinations")
	cmd.Flags().IntVar(&o.Port, "port", host.DefaultChainPort, "relay port")
	cmd.Flags().BoolVar(&o.Progress, "progress", true, "show transfer progress")

	return cmd
}

func (o *CopyOptions) Run(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	src := a.resolveOne(o.Source)
	targets := make([]host.Target, len(o.Dests))
	for i, spec := range o.Dests {
		name, dir := splitDestSpec(spec)
		targets[i] = host.Target{Host: a.resolveOne(name), Dir: dir}
	}

	stopProgress := func() {}
	if o.Progress {
		stopProgress = watchProgress(ctx, src, o.Base, targets[len(targets)-1])
	}
	err = src.CopyChain(ctx, o.Base, targets, host.CopyOptions{
		Files:     o.Files,
		Overwrite: o.Overwrite,
		Port:      o.Port,
	})
	stopProgress()
	if err != nil {
		return err
	}
	fmt.Printf("copied and verified %s:%s on %d machines\n", src.Addr, o.Base, len(targets))
	return nil
}

// watchProgress polls the chain tail's tree size against the source
// total while the transfer runs. Polling is speculative: errors while
// the destination tree is still forming are ignored.
func watchProgress(ctx context.Context, src *host.Host, base string, tail host.Target) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		total, err := src.TotalSize(ctx, base)
		if err != nil || total == 0 {
			return
		}
		bar := progressbar.DefaultBytes(total, "copying")
		defer bar.Finish()
		dir := tail.Dir
		if dir == "" {
			dir = base
		}
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if n, err := tail.Host.TotalSize(ctx, dir); err == nil {
					bar.Set64(n)
				}
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// splitDestSpec splits "machine:dir" into its parts; the dir part is
// optional.
func splitDestSpec(spec string) (name, dir string) {
	if i := strings.Index(spec, ":"); i != -1 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

func init() {
	rootCmd.AddCommand(NewCmdCopy())
}
