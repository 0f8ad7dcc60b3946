// Package templates holds the preview page components. report.templ is the
// source; run templ generate after editing it.
package templates

import (
	"fmt"
	"strconv"
	"time"

	"adventureworks-report/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

// ChartLink is one image on the report page.
type ChartLink struct {
	Title string
	URL   string
}

func monthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

func concentration(p models.ParetoSummary) string {
	return fmt.Sprintf("%d of %d customers (%s%%) account for %s%% of %s in sales.",
		p.CustomersToThreshold,
		p.Customers,
		strconv.FormatFloat(p.CustomerShare, 'f', 1, 64),
		strconv.FormatFloat(p.ThresholdPercent, 'f', -1, 64),
		p.TotalSales.StringFixed(2),
	)
}
