package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/kotfind/geomserver/internal/config"
	"github.com/kotfind/geomserver/internal/server"
)

var (
	bindAddr   string
	printAddr  bool
	writeAddr  string
	configPath string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the geometric scripting language over HTTP",
	Long: `Listen for the closed set of JSON/HTTP routes (ping, session, clear,
eval, exec, func/list, items/get, items/get_all, rm, set, json/dump,
json/load, svg/dump) and serve sessions against them.

Examples:
  # Bind to a fixed address
  geomserver server --bind 127.0.0.1:8080

  # Bind to an ephemeral port and discover it from a file (used by tests)
  geomserver server --bind 127.0.0.1:0 --write-addr /tmp/geomserver.addr`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&bindAddr, "bind", "127.0.0.1:0", "address to listen on")
	serverCmd.Flags().BoolVar(&printAddr, "print-addr", false, "print the bound address to stderr")
	serverCmd.Flags().StringVar(&writeAddr, "write-addr", "", "write the bound address to this file")
	serverCmd.Flags().StringVar(&configPath, "config", "", "path to an optional YAML config file")
}

func runServer(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// Flags win over the config file: only fall back to a config value
		// when the corresponding flag was not given on the command line.
		if !cmd.Flags().Changed("bind") && cfg.Bind != "" {
			bindAddr = cfg.Bind
		}
		if !cmd.Flags().Changed("print-addr") && cfg.PrintAddr {
			printAddr = true
		}
		if !cmd.Flags().Changed("write-addr") && cfg.WriteAddr != "" {
			writeAddr = cfg.WriteAddr
		}
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", bindAddr, err)
	}

	addr := ln.Addr().String()
	if printAddr {
		fmt.Fprintf(os.Stderr, "listener_addr:%s\n", addr)
	}
	if writeAddr != "" {
		if err := os.WriteFile(writeAddr, []byte(addr), 0o644); err != nil {
			return fmt.Errorf("writing address to %s: %w", writeAddr, err)
		}
	}

	log.Info("listening", "addr", addr)
	srv := server.New(log)
	return http.Serve(ln, srv.Handler())
}
