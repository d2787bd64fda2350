package mysql

import (
	"strconv"

	"github.com/jasherai/mysqltuner/internal/tuner"
	"github.com/jasherai/mysqltuner/utils"
)

// AggregateEngines folds the table enumeration into per-engine byte totals
// and table counts. Size fields that fail to parse as a nonnegative integer
// count as zero: the enumeration is best-effort across server versions and a
// junk size must not sink the whole report.
func AggregateEngines(tables []TableInfo) map[string]tuner.EngineStats {
	usage := make(map[string]tuner.EngineStats)
	for _, t := range tables {
		if t.Engine == "" {
			continue
		}
		size, err := strconv.ParseInt(t.DataLength, 10, 64)
		if err != nil || size < 0 {
			size = 0
		}
		stats := usage[t.Engine]
		stats.DataBytes += utils.MemorySize(size)
		stats.Tables++
		usage[t.Engine] = stats
	}
	return usage
}
