package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/buddysim"
	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/logger"
	"github.com/QuangTung97/buddysim/script"
	"github.com/QuangTung97/buddysim/trace"
)

// cliSessionID names the single session of a run in logs and traces
const cliSessionID = "cli"

var (
	runTraceDB string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runTraceDB, "trace-db", "", "Export the history to this SQLite database (without extension)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script|->",
		Short: "Run an allocation script",
		Long: `The run command executes a script of operations, one per line:

  alloc NAME SIZE
  free NAME
  reset [CAPACITY]

Lines starting with # are ignored. Use - to read the script from stdin.

Example:
  buddysim run scenario.txt --capacity 1000
  buddysim run scenario.txt -v
  echo "alloc P1 200" | buddysim run - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.InOrStdin(), args[0])
		},
	}
	return cmd
}

type runOutput struct {
	Capacity  int                      `json:"capacity"`
	Results   []runResult              `json:"results"`
	Occupants []allocator.Occupant     `json:"occupants"`
	Usage     allocator.Usage          `json:"usage"`
	History   []allocator.HistoryEntry `json:"history,omitempty"`
}

type runResult struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func openScript(stdin io.Reader, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	return f, nil
}

func runScript(stdin io.Reader, path string) error {
	r, err := openScript(stdin, path)
	if err != nil {
		return err
	}
	defer r.Close()

	cmds, err := script.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	hooks, closeTrace, err := runHooks()
	if err != nil {
		return err
	}
	defer closeTrace()

	sess := buddysim.NewSession(buddysim.SessionConfig{ID: cliSessionID, Capacity: conf.Capacity, Hooks: hooks})
	logger.L.Info("running script", "path", path, "commands", len(cmds), "session", sess.ID())

	results := script.Run(sess, cmds)
	return printRun(sess, results)
}

// runHooks builds the log hook and, when requested, the sqlite trace hook
func runHooks() ([]allocator.Hook, func(), error) {
	hooks := []allocator.Hook{trace.NewLogHook(logger.L, cliSessionID)}

	dbPath := runTraceDB
	if dbPath == "" {
		dbPath = conf.TraceDB
	}
	if dbPath == "" {
		return hooks, func() {}, nil
	}

	w := trace.NewSQLiteWriter(dbPath)
	if err := w.Init(); err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := w.Close(); err != nil {
			logger.L.Error("failed to close trace", "error", err)
		}
	}
	logger.L.Info("tracing history", "db", w.FileName())
	return append(hooks, w.Hook(cliSessionID)), closeFn, nil
}

func printRun(sess *buddysim.Session, results []script.Result) error {
	a := sess.Allocator()

	if jsonOut {
		output := runOutput{
			Capacity:  a.Capacity(),
			Occupants: a.ListOccupants(),
			Usage:     a.Stats(),
		}
		for _, r := range results {
			output.Results = append(output.Results, runResult{
				Line:    r.Command.Line,
				Command: r.Command.String(),
				OK:      r.OK,
				Message: r.Message,
			})
		}
		if verbose {
			output.History = a.History()
		}
		return printJSON(output)
	}

	if verbose {
		for _, e := range a.History() {
			printf("%4d  %-11s %s\n", e.Step, e.Kind, e.Message)
		}
		printf("\n")
	}

	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "FAILED"
		}
		printf("line %d: %-20s %-6s %s\n", r.Command.Line, r.Command.String(), status, r.Message)
	}

	printf("\nCapacity: %d\n", a.Capacity())
	printTree(a.CurrentState(), "")
	printUsage(a.Stats())
	return nil
}

func printTree(b *allocator.Block, indent string) {
	switch {
	case !b.IsLeaf():
		printf("%s[%d]\n", indent, b.Size())
		printTree(b.Left(), indent+"  ")
		printTree(b.Right(), indent+"  ")
	case b.IsFree():
		printf("%s%d free\n", indent, b.Size())
	default:
		occ, _ := b.Occupant()
		printf("%s%d %s (color %d)\n", indent, b.Size(), occ.Name, occ.ColorID)
	}
}

func printUsage(u allocator.Usage) {
	printf("Blocks: %d  Free: %d  Used: %d  Used memory: %d  Fragmentation: %d%%\n",
		u.Blocks, u.FreeBlocks, u.UsedBlocks, u.UsedMemory, u.Fragmentation)
}
