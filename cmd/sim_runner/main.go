package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/miretskiy/ossim/config"
	"github.com/miretskiy/ossim/simulator"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	logLevel string
	output   string
	logger   zerolog.Logger
}

func main() {
	opts := &options{logger: config.NewLogger(config.Default(), os.Stderr)}
	if err := buildRootCmd(opts).Execute(); err != nil {
		opts.logger.Error().Err(err).Msg("sim_runner failed")
		os.Exit(1)
	}
}

func buildRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "sim_runner",
		Short:         "Run OS scheduling, paging and disk algorithms from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Write JSON here instead of stdout")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := config.ParseLevel(opts.logLevel); err != nil {
			return err
		}
		opts.logger = config.NewLogger(config.Config{LogLevel: opts.logLevel, LogFormat: "console"}, cmd.ErrOrStderr())
		return nil
	}

	root.AddCommand(
		buildRunCmd(opts),
		buildCompareCmd(opts),
		buildCPUCmd(opts),
		buildPageCmd(opts),
		buildDiskCmd(opts),
	)
	return root
}

func buildRunCmd(opts *options) *cobra.Command {
	var input string
	var play bool
	var speedMs int
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run one algorithm described by a request file",
		Example: "  sim_runner run --input request.yaml --output run.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(input)
			if err != nil {
				return err
			}
			run, err := execute(opts, req)
			if err != nil {
				return err
			}
			if play {
				if err := playTrace(cmd.ErrOrStderr(), run, speedMs); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, run)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file (.json, .yaml or .toml)")
	cmd.Flags().BoolVar(&play, "play", false, "Step through the trace on stderr before writing the result")
	cmd.Flags().IntVar(&speedMs, "speed", 0, "Playback interval in ms (defaults to the request's stepIntervalMs)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func buildCompareCmd(opts *options) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every algorithm of the request's family on the same input",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(input)
			if err != nil {
				return err
			}
			start := time.Now()
			cmp, err := simulator.Compare(req)
			if err != nil {
				return err
			}
			opts.logger.Info().Str("family", cmp.Family.String()).Dur("elapsed", time.Since(start)).Msg("comparison complete")
			return writeOutput(cmd.OutOrStdout(), opts.output, cmp)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file (.json, .yaml or .toml)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func buildCPUCmd(opts *options) *cobra.Command {
	var algorithm, arrivals, bursts string
	var quantum int
	cmd := &cobra.Command{
		Use:     "cpu",
		Short:   "Schedule processes given as arrival and burst lists",
		Example: `  sim_runner cpu --algorithm rr --arrivals "0 1 2" --bursts "4 3 5" --quantum 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			processes, err := simulator.ParseProcesses(arrivals, bursts)
			if err != nil {
				return err
			}
			req := simulator.DefaultRequest()
			req.Family = simulator.FamilyCPU
			req.Algorithm = algorithm
			req.Processes = processes
			req.Config.Quantum = quantum
			run, err := execute(opts, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, run)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "fcfs", "fcfs|sjf|rr")
	cmd.Flags().StringVar(&arrivals, "arrivals", "", "Arrival times, e.g. \"0 1 2\"")
	cmd.Flags().StringVar(&bursts, "bursts", "", "Burst times, e.g. \"4 3 5\"")
	cmd.Flags().IntVarP(&quantum, "quantum", "q", simulator.DefaultRunConfig().Quantum, "Round robin time slice")
	_ = cmd.MarkFlagRequired("arrivals")
	_ = cmd.MarkFlagRequired("bursts")
	return cmd
}

func buildPageCmd(opts *options) *cobra.Command {
	var algorithm, refs string
	var frames int
	cmd := &cobra.Command{
		Use:     "page",
		Short:   "Replay a page reference string",
		Example: `  sim_runner page --algorithm lru --refs "7 0 1 2 0 3 0 4" --frames 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			references, err := simulator.ParseIntSequence(refs)
			if err != nil {
				return err
			}
			req := simulator.DefaultRequest()
			req.Family = simulator.FamilyPaging
			req.Algorithm = algorithm
			req.References = references
			req.Config.FrameCount = frames
			run, err := execute(opts, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, run)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "fifo", "fifo|lru|optimal")
	cmd.Flags().StringVar(&refs, "refs", "", "Reference string, e.g. \"7 0 1 2\"")
	cmd.Flags().IntVarP(&frames, "frames", "f", simulator.DefaultRunConfig().FrameCount, "Number of physical frames")
	_ = cmd.MarkFlagRequired("refs")
	return cmd
}

func buildDiskCmd(opts *options) *cobra.Command {
	var algorithm, requests, direction string
	var start, maxTrack int
	def := simulator.DefaultRunConfig()
	cmd := &cobra.Command{
		Use:     "disk",
		Short:   "Schedule a list of disk track requests",
		Example: `  sim_runner disk --algorithm scan --requests "98 183 37 122 14 124 65 67" --start 53`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracks, err := simulator.ParseIntSequence(requests)
			if err != nil {
				return err
			}
			dir, err := simulator.ParseDirection(direction)
			if err != nil {
				return simulator.ErrInvalidConfig(err.Error())
			}
			req := simulator.DefaultRequest()
			req.Family = simulator.FamilyDisk
			req.Algorithm = algorithm
			req.Requests = tracks
			req.Config.MaxTrack = maxTrack
			req.Config.StartingTrack = start
			req.Config.Direction = dir
			run, err := execute(opts, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, run)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "fcfs", "fcfs|sstf|scan|cscan|look|clook")
	cmd.Flags().StringVar(&requests, "requests", "", "Track requests, e.g. \"98 183 37\"")
	cmd.Flags().IntVar(&start, "start", def.StartingTrack, "Initial head position")
	cmd.Flags().IntVar(&maxTrack, "max-track", def.MaxTrack, "Highest track number")
	cmd.Flags().StringVar(&direction, "direction", def.Direction.String(), "Initial sweep direction: up|down")
	_ = cmd.MarkFlagRequired("requests")
	return cmd
}

// readRequest decodes a request file by extension. Config fields the file
// leaves out keep their defaults.
func readRequest(path string) (simulator.Request, error) {
	req := simulator.DefaultRequest()
	b, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := config.Decode(path, b, &req); err != nil {
		return req, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func execute(opts *options, req simulator.Request) (*simulator.Run, error) {
	run, err := simulator.Execute(req)
	if err != nil {
		return nil, err
	}
	opts.logger.Info().
		Str("family", run.Family.String()).
		Str("algorithm", run.Algorithm).
		Int("steps", run.Trace().Len()).
		Float64("execution_ms", run.ExecutionTimeMs).
		Msg("run complete")
	return run, nil
}

// playTrace drives a playback controller over the run and prints each step
// until it finishes.
func playTrace(w io.Writer, run *simulator.Run, speedMs int) error {
	if speedMs == 0 {
		speedMs = run.Config.StepIntervalMs
	}
	done := make(chan struct{})
	var finish sync.Once
	printed := -1
	ctrl := simulator.NewController(speedMs)
	ctrl.OnChange = func(state simulator.PlaybackState) {
		if state.Step != nil && state.Cursor != printed {
			printed = state.Cursor
			fmt.Fprintf(w, "[%d/%d] %s\n", state.Cursor+1, state.Length, state.Step)
		}
		if state.Status == simulator.StatusFinished {
			finish.Do(func() { close(done) })
		}
	}
	defer ctrl.Close()

	if state := ctrl.Load(run.Trace()); state.Status == simulator.StatusFinished {
		return nil
	}
	if _, err := ctrl.Play(speedMs); err != nil {
		return err
	}
	<-done
	return nil
}

func writeOutput(stdout io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
