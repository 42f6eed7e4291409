package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taproom/taproom/internal/catalog"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration returns the duration until the expression next fires.
// Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	d := time.Until(sched.Next(time.Now()))
	if d < 0 {
		return 0
	}
	return d
}

// runLowStockDigest prints the below-threshold stock list on a cron
// schedule, so whoever opens the bar sees what to reorder.
func runLowStockDigest(ctx context.Context, db *gorm.DB, expr string, threshold float64, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if nextCronDuration(expr) == 0 {
		log.Printf("server: bad digest cron %q, digest disabled", expr)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(nextCronDuration(expr)):
		}

		low, err := catalog.LowStock(db, threshold)
		if err != nil {
			log.Printf("server: low stock digest: %v", err)
			continue
		}
		if len(low) == 0 {
			fmt.Fprintf(out, "stock digest: everything above %.0f\n", threshold)
			continue
		}
		fmt.Fprintf(out, "stock digest: %d item(s) running low\n", len(low))
		for _, p := range low {
			fmt.Fprintf(out, "  %-24s %6.1f %s(s)\n", p.Name, p.Inventory, p.UnitType)
		}
	}
}
