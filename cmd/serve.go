/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/defsky/uterm/console"
	"github.com/defsky/uterm/script"
	"github.com/defsky/uterm/session"
	"github.com/defsky/uterm/shared"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the terminal endpoint",
	Long: `connect to the controller transport and service framed command
packets until the controller interrupts the session`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runServe(cmd))
	},
}

var serveFlags Config

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.StringVar(&serveFlags.Network, "network", "unix", "controller transport network (unix or tcp)")
	f.StringVar(&serveFlags.Addr, "addr", "comm", "controller transport address")
	f.StringVar(&serveFlags.Console, "console", "raw", "console backend: raw, screen or relay")
	f.StringVar(&serveFlags.RelayNetwork, "relay-network", "unix", "relay console transport network")
	f.StringVar(&serveFlags.RelayAddr, "relay-addr", "", "relay console transport address")
	f.StringVar(&serveFlags.Termspec, "termspec", session.DefaultTermspec, "terminal capability string")
	f.IntVar(&serveFlags.KeyBufferSize, "key-buffer", session.DefaultKeyBufferSize, "keyboard buffer size")
	f.BoolVar(&serveFlags.Echo, "echo", true, "echo captured keystrokes locally")
	f.BoolVar(&serveFlags.RegionSwitch, "region-switch", false, "bracket display output with region-switch escapes")
	f.StringVar(&serveFlags.Charset, "charset", "UTF-8", "charset of relayed keystrokes")
	f.StringVarP(&serveFlags.Script, "file", "f", "", "specify startup script file name")
	f.StringVar(&serveFlags.LogFile, "log-file", "", "log destination (default stderr)")
	f.StringVar(&serveFlags.LogLevel, "log-level", "info", "log level")
}

func runServe(cmd *cobra.Command) int {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	mergeServeFlags(cmd, &cfg)
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()

	conn, err := net.Dial(cfg.Network, cfg.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Addr).Msg("dial controller transport")
		return 1
	}
	t := session.NewNetTransport(conn)
	defer t.Close()

	con, err := openConsole(cfg)
	if err != nil {
		log.Error().Err(err).Str("console", cfg.Console).Msg("open console")
		return 1
	}
	defer con.Close()

	opt := &session.Option{
		Termspec:      cfg.Termspec,
		Echo:          cfg.Echo,
		KeyBufferSize: cfg.KeyBufferSize,
	}
	if cfg.Script != "" {
		if err := runScript(cfg.Script, opt, con); err != nil {
			log.Error().Err(err).Str("script", cfg.Script).Msg("startup script")
			return 1
		}
	}

	log.Info().Str("addr", cfg.Addr).Str("console", cfg.Console).Msg("session started")

	if err := session.New(t, con, opt, log).Run(); err != nil {
		log.Error().Err(err).Msg("session failed")
		return 1
	}
	return 0
}

// mergeServeFlags lays explicitly set flags over the file config.
func mergeServeFlags(cmd *cobra.Command, cfg *Config) {
	overrides := map[string]func(){
		"network":       func() { cfg.Network = serveFlags.Network },
		"addr":          func() { cfg.Addr = serveFlags.Addr },
		"console":       func() { cfg.Console = serveFlags.Console },
		"relay-network": func() { cfg.RelayNetwork = serveFlags.RelayNetwork },
		"relay-addr":    func() { cfg.RelayAddr = serveFlags.RelayAddr },
		"termspec":      func() { cfg.Termspec = serveFlags.Termspec },
		"key-buffer":    func() { cfg.KeyBufferSize = serveFlags.KeyBufferSize },
		"echo":          func() { cfg.Echo = serveFlags.Echo },
		"region-switch": func() { cfg.RegionSwitch = serveFlags.RegionSwitch },
		"charset":       func() { cfg.Charset = serveFlags.Charset },
		"file":          func() { cfg.Script = serveFlags.Script },
		"log-file":      func() { cfg.LogFile = serveFlags.LogFile },
		"log-level":     func() { cfg.LogLevel = serveFlags.LogLevel },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func newLogger(cfg Config) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	w := os.Stderr
	closeLog := func() {}
	if cfg.LogFile != "" {
		fd, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w = fd
		closeLog = func() { fd.Close() }
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closeLog, nil
}

func openConsole(cfg Config) (console.Console, error) {
	switch cfg.Console {
	case "raw":
		return console.NewRaw(cfg.RegionSwitch)
	case "screen":
		return console.NewScreen()
	case "relay":
		conn, err := net.Dial(cfg.RelayNetwork, cfg.RelayAddr)
		if err != nil {
			return nil, err
		}
		return console.NewRelay(session.NewNetTransport(conn), shared.Charset(cfg.Charset)), nil
	default:
		return nil, fmt.Errorf("unknown console backend %q", cfg.Console)
	}
}

func runScript(path string, opt *session.Option, con console.Console) error {
	opts := &script.Options{
		Termspec: opt.Termspec,
		Echo:     opt.Echo,
	}
	engine := script.NewEngine()
	defer engine.Stop()

	err := engine.Run(path, opts, func(text string) error {
		for _, c := range []byte(text) {
			if err := con.WriteChar(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	opt.Termspec = opts.Termspec
	opt.Echo = opts.Echo
	return nil
}
