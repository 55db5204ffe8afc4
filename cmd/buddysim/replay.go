package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/buddysim/trace"
)

var (
	replaySession  string
	replaySegments bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().StringVar(&replaySession, "session", "", "Only show this session")
	cmd.Flags().BoolVar(&replaySegments, "segments", false, "Show the memory layout of every step")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace-db>",
		Short: "Print a recorded trace",
		Long: `The replay command reads a SQLite trace written by run or serve and
prints every recorded step.

Example:
  buddysim replay buddysim_trace_cn2v3l0
  buddysim replay sessions --session cn2v3l0 --segments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0])
		},
	}
	return cmd
}

type replayOutput struct {
	Session string             `json:"session"`
	Steps   []trace.StepRecord `json:"steps"`
}

func runReplay(path string) error {
	r := trace.NewSQLiteReader(path)
	if err := r.Init(); err != nil {
		return err
	}
	defer r.Close()

	sessions := []string{replaySession}
	if replaySession == "" {
		var err error
		sessions, err = r.ListSessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
	}

	var outputs []replayOutput
	for _, s := range sessions {
		steps, err := r.ListSteps(s)
		if err != nil {
			return fmt.Errorf("failed to list steps of %s: %w", s, err)
		}
		outputs = append(outputs, replayOutput{Session: s, Steps: steps})
	}

	if jsonOut {
		return printJSON(outputs)
	}

	for _, o := range outputs {
		printf("Session %s (%d steps)\n", o.Session, len(o.Steps))
		for _, st := range o.Steps {
			printf("  %d.%-4d %-11s %s\n", st.Generation, st.Step, st.Kind, st.Message)
			if !replaySegments {
				continue
			}
			segments, err := r.ListSegments(o.Session, st.Generation, st.Step)
			if err != nil {
				return fmt.Errorf("failed to list segments: %w", err)
			}
			for _, seg := range segments {
				name := "free"
				if seg.Occupant != nil {
					name = seg.Occupant.Name
				}
				printf("         @%-6d %-6d %s\n", seg.Start, seg.Size, name)
			}
		}
	}
	return nil
}
