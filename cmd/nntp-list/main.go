// Command nntp-list connects to an NNTP server, sends CAPABILITIES, LIST and
// QUIT in one pipeline, and prints the decoded replies.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pior/nntp"
	"github.com/pior/nntp/metrics"
	"github.com/pior/nntp/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "nntp-list [host[:port]]",
		Short:        "List the capabilities and newsgroups of an NNTP server",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath, args)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.level())
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.StringSlice("server", nil, "server address, host[:port] (repeatable)")
	flags.StringP("username", "u", "", "AUTHINFO user")
	flags.StringP("password", "p", "", "AUTHINFO password")
	flags.Bool("reader-mode", false, "send MODE READER after the greeting")
	flags.Duration("timeout", 30*time.Second, "deadline for the whole session")
	flags.StringP("wildmat", "w", "", "only list groups matching this wildmat")
	flags.BoolP("descriptions", "d", false, "list group descriptions instead of the active file")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.Bool("metrics", false, "print client counters in Prometheus text format when done")

	return cmd
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func listCommand(cfg *Config) wire.Command {
	switch {
	case cfg.Descriptions:
		return wire.List{Variant: wire.ListNewsgroups, Wildmat: cfg.Wildmat}
	case cfg.Wildmat != "":
		return wire.List{Variant: wire.ListActive, Wildmat: cfg.Wildmat}
	default:
		return wire.List{}
	}
}

func run(ctx context.Context, out io.Writer, cfg *Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := nntp.NewClient(nntp.NewStaticServers(cfg.Servers...), nntp.Config{
		Logger:     logger,
		ReaderMode: cfg.ReaderMode,
		Username:   cfg.Username,
		Password:   cfg.Password,
	})
	if err != nil {
		return err
	}

	conn, err := client.Dial(ctx, cfg.Wildmat)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	logger.Info("connected", "addr", conn.Addr(), "greeting", conn.Greeting().Text)

	replies, err := conn.Pipeline(ctx, wire.Capabilities{}, listCommand(cfg), wire.Quit{})
	for _, reply := range replies {
		printReply(out, reply, logger)
	}
	if err != nil {
		return err
	}

	stats := client.Stats()
	logger.Debug("done", "commands", stats.Commands, "blocks", stats.Blocks, "skipped", stats.SkippedLines)

	if cfg.Metrics {
		return writeMetrics(out, client)
	}
	return nil
}

func writeMetrics(w io.Writer, client *nntp.Client) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(client))

	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func printReply(out io.Writer, reply nntp.Reply, logger *slog.Logger) {
	fmt.Fprintln(out, reply.Response)

	if reply.Err != nil {
		logger.Warn("command failed", "command", reply.Command.Keyword(), "error", reply.Err)
		return
	}

	switch reply.Response.Kind {
	case wire.KindCapabilitiesFollow:
		caps, err := reply.Capabilities()
		if err != nil {
			logger.Warn("bad capabilities", "error", err)
			return
		}
		for _, c := range caps {
			fmt.Fprintf(out, "  %s\n", c)
		}

	case wire.KindInformationFollows:
		if list, ok := reply.Command.(wire.List); ok && list.Variant == wire.ListNewsgroups {
			descs, err := reply.Descriptions()
			if err != nil {
				logger.Warn("bad newsgroup descriptions", "error", err)
				return
			}
			for _, d := range descs {
				fmt.Fprintf(out, "  %-40s %s\n", d.Name, d.Description)
			}
			return
		}

		groups, err := reply.Newsgroups()
		if err != nil {
			logger.Warn("bad newsgroup list", "error", err)
			return
		}
		for _, g := range groups {
			fmt.Fprintf(out, "  %-40s %10d %10d %s\n", g.Name, g.High, g.Low, g.Posting)
		}
	}
}
