package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/simkernel/world"
)

var (
	tickCount int
)

func openWorld() (*world.World, error) {
	logger := newLogger()
	w, err := world.NewWorld(schemaDir, world.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if worldFile != "" {
		if err := w.LoadFromFile(worldFile); err != nil {
			return nil, fmt.Errorf("load world snapshot: %w", err)
		}
	}
	return w, nil
}

func registerWorldCommand(root *cobra.Command) {
	worldCmd := &cobra.Command{
		Use:   "world",
		Short: "Drive a world instance from the command line",
	}
	worldCmd.PersistentFlags().StringVar(&worldFile, "state", "", "world snapshot file to load before running")

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Advance the world by one or more turns and print the new turn counter",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorld()
			if err != nil {
				return err
			}
			for i := 0; i < tickCount; i++ {
				w.Tick()
			}
			fmt.Printf("turn=%d time_of_day=%.4f\n", w.Turn(), w.TimeOfDay())
			if worldFile != "" {
				return w.SaveToFile(worldFile)
			}
			return nil
		},
	}
	tickCmd.Flags().IntVar(&tickCount, "count", 1, "number of turns to advance")

	dumpCmd := &cobra.Command{
		Use:   "debug-dump",
		Short: "Print every live entity, its components, and every job (terminal ones included) as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorld()
			if err != nil {
				return err
			}
			dump := map[string]any{
				"turn":        w.Turn(),
				"time_of_day": w.TimeOfDay(),
				"mode":        w.Mode(),
			}
			entities := map[string]map[string]any{}
			for _, e := range w.Entities() {
				comps := map[string]any{}
				for _, kind := range w.ListComponents() {
					if !w.ComponentStore().Has(e, kind) {
						continue
					}
					value, err := w.GetComponent(e, kind)
					if err != nil {
						continue
					}
					comps[kind] = value
				}
				entities[fmt.Sprintf("%d", e)] = comps
			}
			dump["entities"] = entities
			jobs := w.ListJobs(true)
			dump["jobs"] = jobs
			out, err := json.MarshalIndent(dump, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	replayCmd := &cobra.Command{
		Use:   "replay-log <job-event-log-file>",
		Short: "Load a saved job event log and replay its state transitions onto the job board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorld()
			if err != nil {
				return err
			}
			if err := w.LoadJobEventLog(args[0]); err != nil {
				return err
			}
			w.ReplayJobEventLog()
			fmt.Printf("replayed %d log entries\n", len(w.GetJobEventLog()))
			if worldFile != "" {
				return w.SaveToFile(worldFile)
			}
			return nil
		},
	}

	worldCmd.AddCommand(tickCmd)
	worldCmd.AddCommand(dumpCmd)
	worldCmd.AddCommand(replayCmd)
	root.AddCommand(worldCmd)
}
