package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/buddysim/logger"
	"github.com/QuangTung97/buddysim/server"
	"github.com/QuangTung97/buddysim/trace"
)

var (
	serveListen      string
	serveMaxSessions int
	serveTraceDB     string
)

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default from BUDDYSIM_LISTEN or :8080)")
	cmd.Flags().IntVar(&serveMaxSessions, "max-sessions", 0, "Maximum number of live sessions")
	cmd.Flags().StringVar(&serveTraceDB, "trace-db", "", "Export every session history to this SQLite database")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve allocator sessions as a JSON API",
		Long: `The serve command starts an HTTP server that lets an external renderer
create sessions, issue allocate/free/reset operations and read every
recorded step.

Example:
  buddysim serve --listen :8080
  buddysim serve --max-sessions 8 --trace-db sessions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
	return cmd
}

func runServe(ctx context.Context) error {
	listen := conf.Listen
	if serveListen != "" {
		listen = serveListen
	}
	maxSessions := conf.MaxSessions
	if serveMaxSessions > 0 {
		maxSessions = serveMaxSessions
	}
	dbPath := conf.TraceDB
	if serveTraceDB != "" {
		dbPath = serveTraceDB
	}

	srvConf := server.Config{
		MaxSessions:     maxSessions,
		DefaultCapacity: conf.Capacity,
		Logger:          logger.L,
	}

	if dbPath != "" {
		w := trace.NewSQLiteWriter(dbPath)
		if err := w.Init(); err != nil {
			return err
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.L.Error("failed to close trace", "error", err)
			}
		}()
		srvConf.Trace = w
	}

	printf("Serving buddy allocator sessions on %s\n", listen)
	return server.New(srvConf).ListenAndServe(ctx, listen, nil)
}
