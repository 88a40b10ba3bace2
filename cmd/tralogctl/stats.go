package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
)

var (
	statsInput    string
	statsTZOffset int
	statsJSON     bool
	statsWeek     string
	statsFrom     string
	statsTo       string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute workout stats from an exported JSON file",
	Long: `Compute workout stats offline. The input is a JSON array of workouts as
returned by GET /workouts; loosely typed legacy records are accepted as they are.`,
}

var statsWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Stats of one week and the week before it",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newFileStatsService(statsInput, statsTZOffset)
		if err != nil {
			return err
		}

		var anchor time.Time
		if statsWeek != "" {
			anchor, err = svc.Calendar().ParseDay(statsWeek)
			if err != nil {
				return fmt.Errorf("invalid --week: %w", err)
			}
		}

		report, err := svc.Weekly(cmd.Context(), "", anchor)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			return writeJSON(out, report)
		}

		cal := svc.Calendar()
		title := color.New(color.Bold)
		title.Fprintf(out, "week %s .. %s\n", cal.DayKey(report.WeekStart), cal.DayKey(report.WeekEnd.Add(-time.Nanosecond)))
		printStats(out, "this week", report.ThisWeek)
		printStats(out, "last week", report.LastWeek)
		return nil
	},
}

var statsRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Stats of the days from --from to --to, both included",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newFileStatsService(statsInput, statsTZOffset)
		if err != nil {
			return err
		}

		cal := svc.Calendar()
		from, err := cal.ParseDay(statsFrom)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, err := cal.ParseDay(statsTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		if to.Before(from) {
			return fmt.Errorf("--to %s is before --from %s", statsTo, statsFrom)
		}

		workouts, err := loadWorkouts(statsInput)
		if err != nil {
			return err
		}
		st := svc.Aggregate(workouts, stats.Window{Start: from, End: to.AddDate(0, 0, 1)})

		out := cmd.OutOrStdout()
		if statsJSON {
			return writeJSON(out, st)
		}
		printStats(out, statsFrom+" .. "+statsTo, st)
		return nil
	},
}

func init() {
	statsCmd.PersistentFlags().StringVarP(&statsInput, "input", "i", "", "exported workouts JSON file")
	statsCmd.PersistentFlags().IntVar(&statsTZOffset, "tz-offset", 9, "UTC offset in hours weeks and days are computed in")
	statsCmd.PersistentFlags().BoolVar(&statsJSON, "json", false, "print JSON instead of a summary")
	_ = statsCmd.MarkPersistentFlagRequired("input")

	statsWeeklyCmd.Flags().StringVar(&statsWeek, "week", "", "any day (YYYY-MM-DD) of the week to report, default this week")

	statsRangeCmd.Flags().StringVar(&statsFrom, "from", "", "first day (YYYY-MM-DD)")
	statsRangeCmd.Flags().StringVar(&statsTo, "to", "", "last day (YYYY-MM-DD)")
	_ = statsRangeCmd.MarkFlagRequired("from")
	_ = statsRangeCmd.MarkFlagRequired("to")

	statsCmd.AddCommand(statsWeeklyCmd)
	statsCmd.AddCommand(statsRangeCmd)
}

// fileSource serves the same workouts for any user.
type fileSource struct {
	path string
}

func (s fileSource) ListAll(context.Context, string) ([]records.Workout, error) {
	return loadWorkouts(s.path)
}

func newFileStatsService(path string, tzOffset int) (*stats.Service, error) {
	if tzOffset < -12 || tzOffset > 14 {
		return nil, fmt.Errorf("--tz-offset %d out of range", tzOffset)
	}
	return stats.NewService(fileSource{path: path}, stats.NewServiceParams{
		Calendar: stats.NewFixedOffsetCalendar(tzOffset),
	}), nil
}

func loadWorkouts(path string) ([]records.Workout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var workouts []records.Workout
	if err := json.NewDecoder(f).Decode(&workouts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return workouts, nil
}

func printStats(out io.Writer, label string, st stats.WeeklyStats) {
	faint := color.New(color.Faint)
	color.New(color.FgCyan).Fprintf(out, "%s\n", label)
	fmt.Fprintf(out, "  workouts       %d on %d days, %d exercises\n", st.Count, st.UniqueDays, st.UniqueExercises)
	fmt.Fprintf(out, "  weight         %.1f kg\n", st.VolumeByType.Weight)
	fmt.Fprintf(out, "  bodyweight     %.0f reps\n", st.VolumeByType.Bodyweight)
	fmt.Fprintf(out, "  time           %.0f s\n", st.VolumeByType.Time)
	fmt.Fprintf(out, "  distance       %.2f km\n", st.VolumeByType.Distance)
	fmt.Fprintf(out, "  warmup         %d min\n", st.WarmupTotalMinutes)
	fmt.Fprintf(out, "  cooldown       %d min\n", st.CooldownTotalMinutes)
	if st.DataQuality.FallbackDates > 0 {
		color.New(color.FgYellow).Fprintf(out, "  %d of %d workouts had an unreadable date and were counted as today\n",
			st.DataQuality.FallbackDates, st.DataQuality.Scanned)
	} else {
		faint.Fprintf(out, "  %d workouts scanned\n", st.DataQuality.Scanned)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
