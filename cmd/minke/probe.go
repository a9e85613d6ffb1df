package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/app"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/ssh"
)

// NewProbeCommand creates the probe command
func NewProbeCommand(cio *IO) *cobra.Command {
	var (
		port        int
		knownHosts  string
		skipHostKey bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe <ip>",
		Short: "Check the stored credentials with an SSH login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			srv, ok := s.Registry.Get(args[0])
			if !ok {
				return errors.New(errors.CodeServerNotFound, "server not found", map[string]any{"ip": args[0]})
			}

			sshCfg := GlobalConfig.Resolved.SSH
			if cmd.Flags().Changed("port") {
				sshCfg.Port = port
			}
			if cmd.Flags().Changed("known-hosts") {
				sshCfg.KnownHostsFile = knownHosts
			}
			if cmd.Flags().Changed("skip-host-key") {
				sshCfg.SkipHostKey = skipHostKey
			}
			if cmd.Flags().Changed("timeout") {
				sshCfg.Timeout = timeout
			}
			if sshCfg.SkipHostKey {
				printer(cmd).Warn("host key verification disabled")
			}

			GlobalConfig.Logger.Info("probing server", "ip", srv.IP, "user", srv.User)
			res, xe := ssh.Probe(ctx, app.ProbeOptions(sshCfg, srv))
			if xe != nil {
				return xe
			}
			return cio.W.WriteOK(format, res)
		},
	}
	cmd.Flags().IntVar(&port, "port", ssh.DefaultPort, "SSH port (config: ssh.port)")
	cmd.Flags().StringVar(&knownHosts, "known-hosts", "", "known_hosts file (config: ssh.known_hosts_file)")
	cmd.Flags().BoolVar(&skipHostKey, "skip-host-key", false, "Skip known_hosts verification (dangerous)")
	cmd.Flags().DurationVar(&timeout, "timeout", ssh.DefaultTimeout, "Dial and handshake timeout")
	return cmd
}
