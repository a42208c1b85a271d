/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net"
	"time"

	ping "github.com/prometheus-community/pro-bing"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping <machine> [port]",
	Short: "Probe a machine with ICMP, or check whether a TCP port is open",
	Long: `Two modes:
1. ICMP ping (one argument): send ICMP echo requests to test basic
   network connectivity before blaming SSH.
   Example: jetpants ping db1

2. TCP port check (two arguments): attempt a TCP connection to decide
   whether the port is open.
   Example: jetpants ping db1 3306`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		addr := a.resolveOne(args[0]).Addr

		if len(args) == 2 {
			port := args[1]
			target := net.JoinHostPort(addr, port)
			conn, err := net.DialTimeout("tcp", target, 5*time.Second)
			if err != nil {
				fmt.Printf("%s port %s is closed or filtered: %v\n", addr, port, err)
				return nil
			}
			conn.Close()
			fmt.Printf("%s port %s is open\n", addr, port)
			return nil
		}

		pinger, err := ping.NewPinger(addr)
		if err != nil {
			return fmt.Errorf("create pinger: %w", err)
		}
		// Raw ICMP sockets need root on Linux, which a fleet tool
		// normally runs as anyway.
		pinger.SetPrivileged(true)
		pinger.Count = 4
		pinger.Interval = time.Second
		pinger.Timeout = 4 * time.Second

		pinger.OnFinish = func(stats *ping.Statistics) {
			fmt.Printf("\n--- %s ping statistics ---\n", stats.Addr)
			fmt.Printf("%d packets transmitted, %d received, %v%% packet loss\n",
				stats.PacketsSent, stats.PacketsRecv, stats.PacketLoss)
			fmt.Printf("rtt min/avg/max/stddev = %v/%v/%v/%v\n",
				stats.MinRtt, stats.AvgRtt, stats.MaxRtt, stats.StdDevRtt)
		}

		return pinger.Run()
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
