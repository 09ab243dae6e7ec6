package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jgehrcke/runni/internal/chart"
	"github.com/jgehrcke/runni/internal/config"
	"github.com/jgehrcke/runni/internal/gsheet"
	"github.com/jgehrcke/runni/internal/ingest"
	"github.com/jgehrcke/runni/internal/logging"
	"github.com/jgehrcke/runni/internal/storage"
	"github.com/jgehrcke/runni/internal/trend"
	"github.com/jgehrcke/runni/internal/tui"
	"github.com/jgehrcke/runni/pkg/pace"
)

var (
	// Flags
	windowDays  int
	metricNames []string
)

var rootCmd = &cobra.Command{
	Use:   "runni",
	Short: "Running log trends - fetch, aggregate, chart",
	Long: `Fetches a personal running log from a shared spreadsheet, derives
smoothed weekly trend series via rolling window analysis, and shows them
in an interactive dashboard. Use the chart subcommand to write PNG charts
instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Write one PNG trend chart per metric",
	Long: `Fetch the running log and write PNG charts into the working
directory, one per metric.

Examples:
  runni chart                  # all metrics
  runni chart -w 28            # smoother trend, 28-day window
  runni chart -m dist -m pace  # metric names are fuzzy-matched`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChart(cmd)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show running statistics from the local archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStats()
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the running log and update the local archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd)
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent archived run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showLatest()
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&windowDays, "window-width-days", "w",
		trend.DefaultWindowDays, "Window width for rolling window analysis (days)")
	chartCmd.Flags().StringSliceVarP(&metricNames, "metric", "m", nil,
		"Metrics to chart (distance, duration, pace); default all")

	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(latestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.Setup(logging.SetupParams{Level: cfg.LogLevel})
	return cfg, logger, nil
}

func fetchRuns(cmd *cobra.Command, client *gsheet.Client) ([]ingest.Run, error) {
	text, err := client.CSVText(cmd.Context())
	if err != nil {
		return nil, err
	}

	runs, err := ingest.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse running log: %w", err)
	}
	return runs, nil
}

func runDashboard(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	// The dashboard draws the terminal; keep log noise out of it.
	logger.SetLevel(logging.GetLevel("error"))

	// A missing document key must abort before the terminal is taken over.
	client, err := gsheet.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	loader := func() (trend.Result, error) {
		runs, err := fetchRuns(cmd, client)
		if err != nil {
			return trend.Result{}, err
		}
		return trend.Aggregate(runs, windowDays), nil
	}

	p := tea.NewProgram(tui.New(loader), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type metric struct {
	key           string
	title         string
	yLabel        string
	series        string
	needsDuration bool
	daily         func(trend.Result) trend.Series
	weekly        func(trend.Result) trend.Series
}

var metrics = []metric{
	{
		key:    "distance",
		title:  "Running distance per week, over time",
		yLabel: "Distance [km]",
		series: "distance",
		daily:  func(r trend.Result) trend.Series { return r.DailyKm },
		weekly: func(r trend.Result) trend.Series { return r.WeeklyKm },
	},
	{
		key:           "duration",
		title:         "Running duration per week, over time",
		yLabel:        "Duration [hours]",
		series:        "duration",
		needsDuration: true,
		daily:         func(r trend.Result) trend.Series { return r.DailyHours },
		weekly:        func(r trend.Result) trend.Series { return r.WeeklyHours },
	},
	{
		key:           "pace",
		title:         "Running velocity per week, over time",
		yLabel:        "Avg pace [min/km]",
		series:        "avg pace",
		needsDuration: true,
		daily:         func(r trend.Result) trend.Series { return r.DailyPace },
		weekly:        func(r trend.Result) trend.Series { return r.WeeklyPace },
	},
}

// resolveMetrics fuzzy-matches user-supplied names ("dist", "pc") against
// the known metric keys. No names selects every metric.
func resolveMetrics(names []string) ([]metric, error) {
	if len(names) == 0 {
		return metrics, nil
	}

	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.key
	}

	selected := make([]metric, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		matches := fuzzy.Find(strings.ToLower(name), keys)
		if len(matches) == 0 {
			return nil, fmt.Errorf("unknown metric %q (valid: %s)", name, strings.Join(keys, ", "))
		}
		if !seen[matches[0].Str] {
			seen[matches[0].Str] = true
			selected = append(selected, metrics[matches[0].Index])
		}
	}
	return selected, nil
}

func runChart(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	selected, err := resolveMetrics(metricNames)
	if err != nil {
		return err
	}

	client, err := gsheet.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	runs, err := fetchRuns(cmd, client)
	if err != nil {
		return err
	}

	result := trend.Aggregate(runs, windowDays)
	renderer := chart.NewRenderer(logger, ".")

	for _, m := range selected {
		if m.needsDuration && !result.HasDuration {
			logger.Warnf("log has no duration columns, skipping %s chart", m.key)
			continue
		}
		if _, err := renderer.Render(
			m.daily(result), m.weekly(result), result.WindowDays,
			m.title, m.yLabel, m.series,
		); err != nil {
			return err
		}
	}

	return nil
}

func runSync(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client, err := gsheet.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	runs, err := fetchRuns(cmd, client)
	if err != nil {
		return err
	}

	store, err := storage.New()
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	n, err := store.ReplaceRuns(runs)
	if err != nil {
		return fmt.Errorf("update archive: %w", err)
	}

	logger.Infof("archived %d runs", n)
	return nil
}

func showStats() error {
	store, err := storage.New()
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	totals, err := store.GetTotals()
	if err != nil {
		return fmt.Errorf("read archive totals: %w", err)
	}

	week, err := store.GetRecentTotals(7)
	if err != nil {
		return fmt.Errorf("read last week: %w", err)
	}

	month, err := store.GetRecentTotals(30)
	if err != nil {
		return fmt.Errorf("read last month: %w", err)
	}

	fmt.Println("🏃 Running Statistics")
	fmt.Println("─────────────────────")
	fmt.Printf("All time:     %d runs, %s, %s\n",
		totals.Runs, pace.Km(totals.Km), pace.Seconds(totals.Seconds))
	fmt.Printf("Last 7 days:  %s\n", rangeLine(week))
	fmt.Printf("Last 30 days: %s\n", rangeLine(month))

	return nil
}

func rangeLine(days []storage.DayTotal) string {
	var km float64
	var seconds, runs int64
	for _, d := range days {
		km += d.Km
		seconds += d.Seconds
		runs += d.Runs
	}
	return fmt.Sprintf("%d runs, %s, %s", runs, pace.Km(km), pace.Seconds(seconds))
}

func showLatest() error {
	store, err := storage.New()
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	run, err := store.GetLastRun()
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	if run == nil {
		fmt.Println("archive is empty, run `runni sync` first")
		return nil
	}

	line := fmt.Sprintf("%s  %s", run.Date, pace.Km(run.Km))
	if run.Seconds > 0 {
		minPerKm := float64(run.Seconds) / 60 / run.Km
		line += fmt.Sprintf("  %s  %s", pace.Seconds(run.Seconds), pace.MinPerKm(minPerKm))
	}
	fmt.Println(line)
	return nil
}
