package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/service"
)

var (
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print one dashboard snapshot as JSON",
		RunE:  runStats,
	}

	statsFlags struct {
		venues    []string
		rangeName string
		from      string
		to        string
		normalize bool
	}
)

func init() {
	f := statsCmd.Flags()
	f.StringSliceVar(&statsFlags.venues, "venue", nil, "venue id, repeatable; all venues when omitted")
	f.StringVar(&statsFlags.rangeName, "range", string(metrics.PresetLast7), "today, yesterday, last7, last14, last30, all or custom")
	f.StringVar(&statsFlags.from, "from", "", "custom range start (YYYY-MM-DD)")
	f.StringVar(&statsFlags.to, "to", "", "custom range end (YYYY-MM-DD)")
	f.BoolVar(&statsFlags.normalize, "normalize", false, "rescale sparklines to 0..100")
}

func runStats(cmd *cobra.Command, args []string) error {
	req := service.StatsRequest{
		VenueIDs:  statsFlags.venues,
		Preset:    metrics.Preset(statsFlags.rangeName),
		Normalize: statsFlags.normalize,
	}
	var err error
	if req.From, err = parseFlagDate("from", statsFlags.from); err != nil {
		return err
	}
	if req.To, err = parseFlagDate("to", statsFlags.to); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.stats.VenueStats(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func parseFlagDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}
