package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
	"github.com/vdt/jetpants/pkg/sftp"
)

// put/get seed single files or small trees over SFTP. Bulk
// distribution to many machines belongs to the copy chain.

var putCmd = &cobra.Command{
	Use:   "put <machine> <local-path> <remote-path>",
	Short: "Upload a file or directory to a machine over SFTP",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transfer(cmd, args[0], func(ctx context.Context, c *sftp.Client, progress sftp.ProgressCallback) error {
			return c.Upload(ctx, args[1], args[2], progress)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <machine> <remote-path> <local-path>",
	Short: "Download a file or directory from a machine over SFTP",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transfer(cmd, args[0], func(ctx context.Context, c *sftp.Client, progress sftp.ProgressCallback) error {
			return c.Download(ctx, args[1], args[2], progress)
		})
	},
}

func transfer(cmd *cobra.Command, machine string, run func(context.Context, *sftp.Client, sftp.ProgressCallback) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	addr := a.resolveOne(machine).Addr
	sshCli, err := host.DialSSHClient(ctx, addr, a.dialCfg)
	if err != nil {
		return err
	}
	client, err := sftp.NewClient(sshCli)
	if err != nil {
		sshCli.Close()
		return err
	}
	defer client.Close()

	bar := progressbar.DefaultBytes(-1, "transferring")
	defer bar.Finish()
	if err := run(ctx, client, func(n int) { bar.Add(n) }); err != nil {
		return fmt.Errorf("transfer with %s: %w", addr, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
}
