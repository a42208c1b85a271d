package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
	"github.com/vdt/jetpants/pkg/models"
	"github.com/vdt/jetpants/pkg/runner"
)

type ExecOptions struct {
	Hosts     string
	Tag       string
	User      string
	Password  string
	KeyFile   string
	Command   string
	ShellFile string
	TaskCount int
	Attempts  int

	args []string
}

func NewExecOptions() *ExecOptions {
	return &ExecOptions{
		TaskCount: 3,
		Attempts:  host.DefaultAttempts,
	}
}

func NewCmdExec() *cobra.Command {
	o := NewExecOptions()
	cmd := &cobra.Command{
		Use:   "exec [flags] [command]",
		Short: "Run a command on one or more machines",
		Long: `Run a command on one or more machines. Commands go through the
pooled executor, so transient failures are retried with backoff.
Examples:
  jetpants exec -H db1,db2 -c "uptime"
  jetpants exec -t shard-1 -c "uptime"
  jetpants exec -H db1 --shell script.sh
  jetpants exec db1 "df -h"

Pass --attempts 1 for commands that are not safe to retry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Complete(cmd, args)
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd)
		},
	}

	cmd.Flags().StringVarP(&o.Hosts, "host", "H", "", "target machines, comma separated")
	cmd.Flags().StringVarP(&o.Tag, "tag", "t", "", "run against every machine carrying this tag")
	cmd.Flags().StringVarP(&o.User, "user", "u", "", "SSH user for machines not in the inventory")
	cmd.Flags().StringVarP(&o.Password, "password", "P", "", "SSH password for machines not in the inventory")
	cmd.Flags().StringVarP(&o.KeyFile, "key", "i", "", "SSH private key file")
	cmd.Flags().StringVarP(&o.Command, "cmd", "c", "", "command to run")
	cmd.Flags().StringVar(&o.ShellFile, "shell", "", "local shell script to run remotely")
	cmd.Flags().IntVar(&o.TaskCount, "task", 3, "number of machines to run against in parallel")
	cmd.Flags().IntVar(&o.Attempts, "attempts", host.DefaultAttempts, "per-command attempt budget")

	cmd.MarkFlagsMutuallyExclusive("host", "tag")
	cmd.MarkFlagsMutuallyExclusive("cmd", "shell")

	return cmd
}

func (o *ExecOptions) Complete(cmd *cobra.Command, args []string) {
	o.args = args
	if len(args) == 0 {
		return
	}
	// positional form: jetpants exec HOST "command ..."
	if o.Hosts == "" && o.Tag == "" {
		o.Hosts = args[0]
		args = args[1:]
	}
	if o.Command == "" && o.ShellFile == "" && len(args) > 0 {
		o.Command = strings.Join(args, " ")
	}
}

func (o *ExecOptions) Validate() error {
	if o.Command == "" && o.ShellFile == "" {
		return fmt.Errorf("a command or script must be given")
	}
	if o.Hosts == "" && o.Tag == "" {
		return fmt.Errorf("target machines or a tag must be given")
	}
	if o.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1")
	}
	return nil
}

func (o *ExecOptions) Run(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if o.User != "" || o.KeyFile != "" || o.Password != "" {
		if o.Password == "" && o.KeyFile == "" {
			pass, err := readPasswordFromTerminal(fmt.Sprintf("password for %s: ", o.User))
			if err != nil {
				return err
			}
			o.Password = pass
		}
		a.dialCfg.Default = models.Identity{
			User:     o.User,
			Password: o.Password,
			KeyPaths: []string{o.KeyFile},
		}
		a.registry = host.NewRegistry(host.NewSSHDial(a.dialCfg))
	}

	execCmd := o.Command
	if o.ShellFile != "" {
		content, err := os.ReadFile(o.ShellFile)
		if err != nil {
			return fmt.Errorf("read script file: %w", err)
		}
		execCmd = string(content)
	}

	hosts, err := a.resolveMany(o.Hosts, o.Tag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	results := runner.RunParallel(ctx, hosts, o.TaskCount, func(ctx context.Context, h *host.Host) (string, error) {
		return h.Execute(ctx, []string{execCmd}, o.Attempts)
	})

	failed := 0
	for res := range results {
		if res.Error != nil {
			failed++
			fmt.Printf("[ERROR] %s\n------------\n%s\nerror: %v\n", res.Host.Addr, res.Output, res.Error)
			continue
		}
		fmt.Printf("[SUCCESS] %s\n------------\n%s\n", res.Host.Addr, res.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d machines failed", failed, len(hosts))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(NewCmdExec())
}
