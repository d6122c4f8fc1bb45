package iocache

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pulsegrid/afterglow/schema"
)

// PrintCacheStatus prints dataset cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Location: %s\n", status.Location)
	fmt.Printf("Cached Datasets: %d\n", status.Entries)
	if status.Entries > 0 {
		fmt.Printf("Oldest Entry: %s\n", time.Unix(status.OldestUnix, 0).Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Payload Size: %d bytes\n", status.SizeBytes)
}

// PrintRunList prints recorded fit runs as a table, newest first.
func PrintRunList(runs []schema.FitRunRecord) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Run", "Started", "Duration", "Transient", "Model", "Likelihood", "Max LogLike", "Acceptance"})

	var data [][]string
	for _, r := range runs {
		duration := "-"
		if r.RunDurationMs != nil {
			duration = (time.Duration(*r.RunDurationMs) * time.Millisecond).String()
		}
		maxLike := "-"
		if r.MaxLogLike != nil {
			maxLike = fmt.Sprintf("%.4g", *r.MaxLogLike)
		}
		acceptance := "-"
		if r.Acceptance != nil {
			acceptance = fmt.Sprintf("%.3f", *r.Acceptance)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", r.RunID),
			r.StartTime.Format("2006-01-02 15:04:05"),
			duration,
			r.Transient,
			r.Model,
			r.Likelihood,
			maxLike,
			acceptance,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Printf("Showing %d fit runs\n", len(runs))
	return nil
}

// PrintRunStoreStatus prints run store status information.
func PrintRunStoreStatus(status schema.RunStoreStatus) {
	fmt.Printf("Runs Backend: %s\n", status.Backend)
	fmt.Printf("Location: %s\n", status.Location)
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}
