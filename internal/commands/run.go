// internal/commands/run.go
package medbench

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/medbench/internal/answer"
	"github.com/mwiater/medbench/internal/appconfig"
	"github.com/mwiater/medbench/internal/dataset"
	"github.com/mwiater/medbench/internal/harness"
	"github.com/mwiater/medbench/internal/history"
	"github.com/mwiater/medbench/internal/logging"
	"github.com/mwiater/medbench/internal/ollama"
	"github.com/mwiater/medbench/internal/report"
	"github.com/mwiater/medbench/internal/suite"
	"github.com/mwiater/medbench/internal/tui"
	"github.com/mwiater/medbench/internal/util"
)

const defaultHostURL = "http://localhost:11434"

var (
	runQuestions int
	runWorkers   int
)

// runCmd implements 'run <suite>', which executes one full benchmark pass.
var runCmd = &cobra.Command{
	Use:   "run <suite>",
	Short: "Run a benchmark suite against the configured model",
	Long:  `Run loads the suite's dataset, dispatches every question to the model, scores the completions, prints the summary dashboard, and writes the per-question result log.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := suite.Lookup(args[0])
		if err != nil {
			return err
		}
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}
		return runSuite(cmd, s, cfg)
	},
}

func init() {
	runCmd.Flags().IntVar(&runQuestions, "questions", 0, "number of questions to run (0 = suite default)")
	runCmd.Flags().Float64("temperature", 0, "sampling temperature (unset = configured or suite default)")
	runCmd.Flags().Float64("threshold", 0, "confidence threshold for gated suites, 0 disables refusals (unset = configured or suite default)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "in-flight request cap (0 = configured or sequential)")
	rootCmd.AddCommand(runCmd)
}

func runSuite(cmd *cobra.Command, s suite.Suite, cfg *appconfig.Config) error {
	hostURL := cfg.HostURL
	if hostURL == "" {
		hostURL = defaultHostURL
	}
	model := cfg.Model
	if model == "" {
		return fmt.Errorf("no model configured; set model in %s or pass --model", appconfig.DefaultConfigPath)
	}

	temperature := cfg.EffectiveTemperature(s.Temperature)
	if t := flagFloat(cmd, "temperature"); t != nil {
		temperature = *t
	}
	threshold := cfg.EffectiveThreshold(s.Threshold)
	if t := flagFloat(cmd, "threshold"); t != nil {
		threshold = *t
	}
	if s.Gated && (threshold < 0 || threshold > 1) {
		return fmt.Errorf("confidence threshold %v out of range [0,1]", threshold)
	}

	questions := s.Questions
	if cfg.Questions > 0 {
		questions = cfg.Questions
	}
	if runQuestions > 0 {
		questions = runQuestions
	}
	workers := cfg.WorkerCount()
	if runWorkers > 0 {
		workers = runWorkers
	}

	ds, err := dataset.LoadFile(cfg.DatasetPath(s.Name), s.Schema)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := ollama.NewClient(hostURL, model, cfg.RequestTimeout(s.Gated))
	if err := client.EnsureModelReady(ctx); err != nil {
		return fmt.Errorf("model %s not ready on %s: %w", model, hostURL, err)
	}

	logging.LogEvent("run start: suite=%s model=%s questions=%d temperature=%v gated=%v workers=%d",
		s.Name, model, questions, temperature, s.Gated, workers)

	var thresholdPtr *float64
	if s.Gated {
		t := threshold
		thresholdPtr = &t
	}

	opts := harness.Options{
		Questions:   questions,
		Workers:     workers,
		Temperature: temperature,
		NumCtx:      cfg.ContextWindow(),
		Threshold:   thresholdPtr,
	}

	started := time.Now()
	var (
		items   []report.ScoredItem
		summary report.Summary
		runErr  error
	)
	if cfg.TUI {
		items, summary, runErr = runWithTUI(ctx, s, ds, client, opts, model)
	} else {
		items, summary, runErr = harness.Run(ctx, s, ds, client, opts, consoleObserver(cmd))
	}
	finished := time.Now()

	if runErr != nil && len(items) == 0 {
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nrun interrupted (%v); summarizing %d completed questions\n", runErr, len(items))
	}

	resultsPath := filepath.Join(cfg.ResultsDirPath(), report.Filename(s.Name, temperature, thresholdPtr))
	if err := report.WriteLog(resultsPath, items); err != nil {
		return err
	}

	report.Print(cmd.OutOrStdout(), s.Name, model, summary)
	fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", resultsPath)

	// the signal context may already be cancelled after an interrupt
	if err := saveHistory(context.Background(), cfg, s, model, temperature, thresholdPtr, summary, resultsPath, started, finished); err != nil {
		logging.LogEvent("history save failed: %v", err)
	}
	return nil
}

// flagFloat returns the flag's value only when the user set it, mirroring
// the pointer fields appconfig uses for optional values.
func flagFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil
	}
	return &v
}

// consoleObserver prints one line per scored item as it completes.
func consoleObserver(cmd *cobra.Command) harness.Observer {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	out := cmd.OutOrStdout()
	count := 0

	return func(item report.ScoredItem, total int) {
		count++
		mark := red("✗")
		switch {
		case item.Correct:
			mark = green("✓")
		case item.Prediction == answer.Refusal:
			mark = yellow("~")
		}
		fmt.Fprintf(out, "[%d/%d] %s #%-4d %-8s %s\n",
			count, total, mark, item.ID, item.Prediction, util.Preview(item.FullResponse, 70))
	}
}

// runWithTUI drives the harness under a Bubble Tea progress view. The
// evaluation loop runs in a goroutine and feeds the program items.
func runWithTUI(ctx context.Context, s suite.Suite, ds dataset.Dataset, client harness.Dispatcher, opts harness.Options, model string) ([]report.ScoredItem, report.Summary, error) {
	questions := opts.Questions
	if questions <= 0 {
		questions = s.Questions
	}
	if n := ds.Len(); n > 0 && n < questions {
		questions = n
	}

	p := tea.NewProgram(tui.New(s.Name, model, questions))

	type outcome struct {
		items   []report.ScoredItem
		summary report.Summary
		err     error
	}
	resultCh := make(chan outcome, 1)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		items, summary, err := harness.Run(runCtx, s, ds, client, opts, func(item report.ScoredItem, total int) {
			p.Send(tui.ItemMsg(item))
		})
		p.Send(tui.DoneMsg(summary))
		resultCh <- outcome{items, summary, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		res := <-resultCh
		if res.err == nil {
			res.err = err
		}
		return res.items, res.summary, res.err
	}
	// the view quits on user abort too; stop the loop either way
	cancel()
	res := <-resultCh
	return res.items, res.summary, res.err
}

func saveHistory(ctx context.Context, cfg *appconfig.Config, s suite.Suite, model string, temperature float64, threshold *float64, summary report.Summary, resultsPath string, started, finished time.Time) error {
	st, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = st.Save(ctx, history.Run{
		Suite:       s.Name,
		Model:       model,
		Temperature: temperature,
		Threshold:   threshold,
		ResultsPath: resultsPath,
		StartedAt:   started,
		FinishedAt:  finished,
	}, summary)
	return err
}
