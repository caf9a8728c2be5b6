package advisor

import (
	"time"

	"portfolioinsight/pkg/insight"
)

const newsDateLayout = "2006-01-02"

func (c *Core) now() time.Time {
	return c.clock().In(c.location)
}

// localTimestamp renders unix seconds in the core's location without a zone
// suffix, or nil when the provider sent no timestamp.
func (c *Core) localTimestamp(unix int64) *string {
	if unix <= 0 {
		return nil
	}
	formatted := time.Unix(unix, 0).In(c.location).Format(insight.CreatedAtLayout)
	return &formatted
}

func resolveLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
