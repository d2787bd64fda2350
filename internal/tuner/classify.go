package tuner

import (
	"fmt"
	"sort"

	"github.com/jasherai/mysqltuner/utils"
)

// Thresholds for rule evaluation. Percentages unless noted.
const (
	memoryUsageMax        = 85
	slowQueryMax          = 5
	connectionUsageMax    = 85
	keyBufferHitMin       = 95.0
	queryCacheEfficiency  = 20.0
	queryCachePrunesMax   = 98
	tempSortMax           = 10
	indexlessJoinsPerDay  = 250
	tempDiskTableMax      = 25
	threadCacheHitMin     = 50
	tableCacheHitMin      = 20
	openFileUsageMax      = 85
	tableLockImmediateMin = 95
	abortedConnectionsMax = 5
	innodbLogToPoolMin    = 20

	// Temp table sizing above this is "already large"; raising it further
	// just moves the problem.
	largeTempTableSize = 256 * utils.MB

	// 32-bit address space ceiling that MySQL cannot allocate past safely.
	addressableLimit32 = 2 * utils.GB
)

// legacyEngine is one entry of the fixed enabled-but-unused engine check.
// The list is deliberately the historical one and is not generalized to
// arbitrary engines.
type legacyEngine struct {
	name string
	flag string // have_* variable
	skip string // configuration directive that disables it
}

var legacyEngines = []legacyEngine{
	{"InnoDB", "have_innodb", "skip-innodb"},
	{"BDB", "have_bdb", "skip-bdb"},
	{"ISAM", "have_isam", "skip-isam"},
	{"NDBCLUSTER", "have_ndbcluster", "skip-ndbcluster"},
	{"ARCHIVE", "have_archive", "skip-archive"},
}

type classifier struct {
	snap     *Snapshot
	d        *DerivedMetrics
	findings []Finding
	recs     RecommendationSet
}

// Classify evaluates the fixed, ordered rule list against a snapshot and its
// derived metrics. Each rule appends zero or more findings and
// recommendations; nothing is ever removed or reordered afterwards. Rules
// whose inputs never occurred (no sorts, no temp tables, no indexless joins)
// stay quiet instead of emitting a vacuous OK.
func Classify(snap *Snapshot, d *DerivedMetrics) ([]Finding, RecommendationSet) {
	c := &classifier{snap: snap, d: d}

	c.checkVersion()
	c.checkArchitecture()
	c.checkEngines()
	c.checkUptime()
	c.checkMemoryUsage()
	c.checkSlowQueries()
	c.checkConnections()
	c.checkKeyBuffer()
	c.checkQueryCache()
	c.checkSorting()
	c.checkJoins()
	c.checkTempTables()
	c.checkThreadCache()
	c.checkTableCache()
	c.checkOpenFiles()
	c.checkTableLocks()
	c.checkConcurrentInsert()
	c.checkAbortedConnections()
	c.checkInnoDB()

	return c.findings, c.recs
}

func (c *classifier) emit(section Section, severity Severity, metric, format string, args ...any) {
	c.findings = append(c.findings, Finding{
		Metric:   metric,
		Section:  section,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *classifier) ok(section Section, metric, format string, args ...any) {
	c.emit(section, SeverityOK, metric, format, args...)
}

func (c *classifier) warn(section Section, metric, format string, args ...any) {
	c.emit(section, SeverityWarn, metric, format, args...)
}

func (c *classifier) info(section Section, metric, format string, args ...any) {
	c.emit(section, SeverityInfo, metric, format, args...)
}

func (c *classifier) advise(format string, args ...any) {
	c.recs.General = append(c.recs.General, fmt.Sprintf(format, args...))
}

func (c *classifier) adjust(format string, args ...any) {
	c.recs.Adjustments = append(c.recs.Adjustments, fmt.Sprintf(format, args...))
}

func (c *classifier) checkVersion() {
	if c.snap.Version.Major < 5 {
		c.warn(SectionGeneral, "version",
			"Your MySQL version %s is EOL software. Upgrade soon!", c.snap.Version)
		return
	}
	c.ok(SectionGeneral, "version",
		"Currently running supported MySQL version %s", c.snap.Version)
}

func (c *classifier) checkArchitecture() {
	if c.snap.Host.Is64Bit {
		c.ok(SectionGeneral, "architecture", "Operating on 64-bit architecture")
		return
	}
	if c.snap.Host.PhysicalMemory <= addressableLimit32 {
		c.ok(SectionGeneral, "architecture",
			"Operating on 32-bit architecture with less than 2GB RAM")
		return
	}
	c.warn(SectionGeneral, "architecture",
		"Switch to 64-bit OS - MySQL cannot currently use all of your RAM")
}

func (c *classifier) checkEngines() {
	// Descriptive data-per-engine lines, sorted for a deterministic report.
	names := make([]string, 0, len(c.snap.EngineUsage))
	for name := range c.snap.EngineUsage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		usage := c.snap.EngineUsage[name]
		c.info(SectionEngines, "engine_data",
			"Data in %s tables: %s (Tables: %d)", name, usage.DataBytes, usage.Tables)
	}

	for _, engine := range legacyEngines {
		if !c.snap.VarOn(engine.flag) {
			continue
		}
		if _, used := c.snap.EngineUsage[engine.name]; used {
			continue
		}
		c.warn(SectionEngines, "unused_engine",
			"%s is enabled but isn't being used", engine.name)
		c.advise("Add %s to MySQL configuration to disable %s", engine.skip, engine.name)
	}
}

func (c *classifier) checkUptime() {
	c.info(SectionMetrics, "uptime",
		"Up for: %s (%d q [%.3f qps], %d conn, TX: %s, RX: %s)",
		utils.FormatUptime(c.d.Uptime), c.d.Questions, c.d.QPS,
		c.d.TotalConnections, c.d.BytesSent, c.d.BytesReceived)
	c.info(SectionMetrics, "reads_writes",
		"Reads / Writes: %d%% / %d%%", c.d.PctReads, c.d.PctWrites)
	c.info(SectionMetrics, "buffers",
		"Total buffers: %s global + %s per thread (%d max threads)",
		c.d.ServerBuffers, c.d.PerThreadBuffers, c.d.MaxConnections)

	if c.d.Uptime < secondsPerDay {
		c.advise("MySQL started within last 24 hours - recommendations may be inaccurate")
	}
}

func (c *classifier) checkMemoryUsage() {
	if !c.snap.Host.Is64Bit && c.d.TotalPossibleMemory > addressableLimit32 {
		c.warn(SectionMetrics, "memory_32bit",
			"Allocating > 2GB RAM on 32-bit systems can cause system instability")
	}

	if c.d.PctPhysicalMemory > memoryUsageMax {
		c.warn(SectionMetrics, "memory",
			"Maximum possible memory usage: %s (%d%% of installed RAM)",
			c.d.TotalPossibleMemory, c.d.PctPhysicalMemory)
		c.advise("Reduce your overall MySQL memory footprint for system stability")
		return
	}
	c.ok(SectionMetrics, "memory",
		"Maximum possible memory usage: %s (%d%% of installed RAM)",
		c.d.TotalPossibleMemory, c.d.PctPhysicalMemory)
}

func (c *classifier) checkSlowQueries() {
	if c.d.PctSlowQueries > slowQueryMax {
		c.warn(SectionMetrics, "slow_queries",
			"Slow queries: %d%% (%d/%d)", c.d.PctSlowQueries, c.d.SlowQueries, c.d.Questions)
		if longQueryTime, ok := c.snap.VarFloat("long_query_time"); ok && longQueryTime > 10 {
			c.adjust("long_query_time (<= 10)")
		}
	} else {
		c.ok(SectionMetrics, "slow_queries",
			"Slow queries: %d%% (%d/%d)", c.d.PctSlowQueries, c.d.SlowQueries, c.d.Questions)
	}

	if _, ok := c.snap.Var(c.snap.Caps.SlowLogVar); ok && !c.snap.VarOn(c.snap.Caps.SlowLogVar) {
		c.advise("Enable the slow query log to troubleshoot bad queries")
	}
}

func (c *classifier) checkConnections() {
	if c.d.PctConnectionsUsed > connectionUsageMax {
		c.warn(SectionMetrics, "connections",
			"Highest connection usage: %d%% (%d/%d)",
			c.d.PctConnectionsUsed, c.d.MaxUsedConnections, c.d.MaxConnections)
		c.adjust("max_connections (> %d)", c.d.MaxConnections)
		if waitTimeout, ok := c.snap.VarInt("wait_timeout"); ok {
			c.adjust("wait_timeout (< %d)", waitTimeout)
		}
		if interactiveTimeout, ok := c.snap.VarInt("interactive_timeout"); ok {
			c.adjust("interactive_timeout (< %d)", interactiveTimeout)
		}
		c.advise("Reduce or eliminate persistent connections to reduce connection usage")
		return
	}
	c.ok(SectionMetrics, "connections",
		"Highest usage of available connections: %d%% (%d/%d)",
		c.d.PctConnectionsUsed, c.d.MaxUsedConnections, c.d.MaxConnections)
}

func (c *classifier) checkKeyBuffer() {
	if !c.snap.Host.MyISAMIndexesKnown {
		c.warn(SectionMetrics, "key_buffer",
			"Cannot calculate MyISAM index size - re-run with elevated privileges")
	} else if c.d.KeyBufferSize < c.snap.Host.MyISAMIndexes &&
		c.d.PctKeysFromMemory.OK && c.d.PctKeysFromMemory.Float < keyBufferHitMin {
		c.warn(SectionMetrics, "key_buffer",
			"Key buffer size / total MyISAM indexes: %s/%s",
			c.d.KeyBufferSize, c.snap.Host.MyISAMIndexes)
		c.adjust("key_buffer_size (> %s)", c.snap.Host.MyISAMIndexes.Short())
	} else {
		c.ok(SectionMetrics, "key_buffer",
			"Key buffer size / total MyISAM indexes: %s/%s",
			c.d.KeyBufferSize, c.snap.Host.MyISAMIndexes)
	}

	if c.d.PctKeyBufferUsed.OK {
		c.info(SectionMetrics, "key_buffer_used",
			"Key buffer used: %.1f%% (%s cache size)",
			c.d.PctKeyBufferUsed.Float, c.d.KeyBufferSize)
	}

	// Quiet when the server never issued a key read request.
	if c.d.PctKeysFromMemory.OK {
		if c.d.PctKeysFromMemory.Float < keyBufferHitMin {
			c.warn(SectionMetrics, "key_buffer_hit_rate",
				"Key buffer hit rate: %.1f%% (%d cached / %d reads)",
				c.d.PctKeysFromMemory.Float, c.d.KeyReadRequests, c.d.KeyReads)
		} else {
			c.ok(SectionMetrics, "key_buffer_hit_rate",
				"Key buffer hit rate: %.1f%% (%d cached / %d reads)",
				c.d.PctKeysFromMemory.Float, c.d.KeyReadRequests, c.d.KeyReads)
		}
	}
}

func (c *classifier) checkQueryCache() {
	if !c.snap.Caps.QueryCache {
		return
	}
	// Servers that removed the query cache (8.0+) drop the variable entirely;
	// only a present-but-zero size means "disabled".
	if _, ok := c.snap.Var("query_cache_size"); !ok {
		return
	}

	if c.d.QueryCacheSize < 1 {
		c.warn(SectionMetrics, "query_cache", "Query cache is disabled")
		c.adjust("query_cache_size (>= 8M)")
		return
	}

	switch {
	case !c.d.QueryCacheEfficiency.OK:
		// No SELECTs ran; efficiency is undefined and nothing is reported.
	case c.d.QueryCacheEfficiency.Float < queryCacheEfficiency:
		c.warn(SectionMetrics, "query_cache_efficiency",
			"Query cache efficiency: %.1f%% (%d cached / %d selects)",
			c.d.QueryCacheEfficiency.Float, c.d.QueryCacheHits,
			c.d.SelectCommands+c.d.QueryCacheHits)
		c.adjust("query_cache_limit (> %s, or use smaller result sets)",
			c.snap.VarBytesOr("query_cache_limit", utils.MB).Short())
	default:
		c.ok(SectionMetrics, "query_cache_efficiency",
			"Query cache efficiency: %.1f%% (%d cached / %d selects)",
			c.d.QueryCacheEfficiency.Float, c.d.QueryCacheHits,
			c.d.SelectCommands+c.d.QueryCacheHits)
	}

	if c.d.QueryCachePrunesPerDay > queryCachePrunesMax {
		c.warn(SectionMetrics, "query_cache_prunes",
			"Query cache prunes per day: %d", c.d.QueryCachePrunesPerDay)
		c.adjust("query_cache_size (> %s)", c.d.QueryCacheSize.Short())
	} else {
		c.ok(SectionMetrics, "query_cache_prunes",
			"Query cache prunes per day: %d", c.d.QueryCachePrunesPerDay)
	}
}

func (c *classifier) checkSorting() {
	if !c.d.PctSortsRequiringTemp.OK {
		return // no sorts ran
	}
	if c.d.PctSortsRequiringTemp.Int > tempSortMax {
		c.warn(SectionMetrics, "sorting",
			"Sorts requiring temporary tables: %d%% (%d temp sorts / %d sorts)",
			c.d.PctSortsRequiringTemp.Int, c.d.SortMergePasses, c.d.TotalSorts)
		c.adjust("sort_buffer_size (> %s)",
			c.snap.VarBytesOr("sort_buffer_size", 0).Short())
		c.adjust("read_rnd_buffer_size (> %s)",
			c.snap.VarBytesOr("read_rnd_buffer_size", 0).Short())
		return
	}
	c.ok(SectionMetrics, "sorting",
		"Sorts requiring temporary tables: %d%% (%d temp sorts / %d sorts)",
		c.d.PctSortsRequiringTemp.Int, c.d.SortMergePasses, c.d.TotalSorts)
}

func (c *classifier) checkJoins() {
	if c.d.JoinsWithoutIndexes == 0 {
		return // quiet: nothing to report on
	}
	if c.d.JoinsWithoutIndexesPerDay > indexlessJoinsPerDay {
		c.warn(SectionMetrics, "joins",
			"Joins performed without indexes: %d", c.d.JoinsWithoutIndexes)
		c.adjust("join_buffer_size (> %s, or always use indexes with joins)",
			c.snap.VarBytesOr("join_buffer_size", 0).Short())
		c.advise("Adjust your join queries to always utilize indexes")
		return
	}
	c.ok(SectionMetrics, "joins",
		"Joins performed without indexes: %d", c.d.JoinsWithoutIndexes)
}

func (c *classifier) checkTempTables() {
	if !c.d.PctTempDiskTables.OK {
		return // no temporary tables were created
	}
	if c.d.PctTempDiskTables.Int > tempDiskTableMax {
		c.warn(SectionMetrics, "temp_tables",
			"Temporary tables created on disk: %d%% (%d on disk / %d total)",
			c.d.PctTempDiskTables.Int, c.d.TmpDiskTables, c.d.TmpTables)
		if c.d.MaxTempTableSize < largeTempTableSize {
			c.adjust("tmp_table_size (> %s)",
				c.snap.VarBytesOr("tmp_table_size", 0).Short())
			c.adjust("max_heap_table_size (> %s)",
				c.snap.VarBytesOr("max_heap_table_size", 0).Short())
			c.advise("When making adjustments, make tmp_table_size/max_heap_table_size equal")
		} else {
			c.advise("Temporary table size is already large - reduce result set size")
		}
		c.advise("Reduce your SELECT DISTINCT queries without LIMIT clauses")
		return
	}
	c.ok(SectionMetrics, "temp_tables",
		"Temporary tables created on disk: %d%% (%d on disk / %d total)",
		c.d.PctTempDiskTables.Int, c.d.TmpDiskTables, c.d.TmpTables)
}

func (c *classifier) checkThreadCache() {
	threadCacheSize, _ := c.snap.VarInt("thread_cache_size")
	if threadCacheSize == 0 {
		c.warn(SectionMetrics, "thread_cache", "Thread cache is disabled")
		c.advise("Set thread_cache_size to 4 as a starting value")
		c.adjust("thread_cache_size (start at 4)")
		return
	}
	if c.d.ThreadCacheHitRate <= threadCacheHitMin {
		c.warn(SectionMetrics, "thread_cache",
			"Thread cache hit rate: %d%% (%d created / %d connections)",
			c.d.ThreadCacheHitRate, c.d.ThreadsCreated, c.d.TotalConnections)
		c.adjust("thread_cache_size (> %d)", threadCacheSize)
		return
	}
	c.ok(SectionMetrics, "thread_cache",
		"Thread cache hit rate: %d%% (%d created / %d connections)",
		c.d.ThreadCacheHitRate, c.d.ThreadsCreated, c.d.TotalConnections)
}

func (c *classifier) checkTableCache() {
	if c.d.OpenedTables > 0 && c.d.TableCacheHitRate < tableCacheHitMin {
		c.warn(SectionMetrics, "table_cache",
			"Table cache hit rate: %d%% (%d open / %d opened)",
			c.d.TableCacheHitRate, c.d.OpenTables, c.d.OpenedTables)
		tableCache, _ := c.snap.VarInt(c.snap.Caps.TableCacheVar)
		c.adjust("%s (> %d)", c.snap.Caps.TableCacheVar, tableCache)
		c.advise("Increase %s gradually to avoid file descriptor limits", c.snap.Caps.TableCacheVar)
		return
	}
	c.ok(SectionMetrics, "table_cache",
		"Table cache hit rate: %d%% (%d open / %d opened)",
		c.d.TableCacheHitRate, c.d.OpenTables, c.d.OpenedTables)
}

func (c *classifier) checkOpenFiles() {
	if !c.d.PctOpenFilesUsed.OK {
		return
	}
	if c.d.PctOpenFilesUsed.Int > openFileUsageMax {
		c.warn(SectionMetrics, "open_files",
			"Open file limit used: %d%% (%d/%d)",
			c.d.PctOpenFilesUsed.Int, c.d.OpenFiles, c.d.OpenFilesLimit)
		c.adjust("open_files_limit (> %d)", c.d.OpenFilesLimit)
		return
	}
	c.ok(SectionMetrics, "open_files",
		"Open file limit used: %d%% (%d/%d)",
		c.d.PctOpenFilesUsed.Int, c.d.OpenFiles, c.d.OpenFilesLimit)
}

func (c *classifier) checkTableLocks() {
	observed := c.d.TableLocksImmediate + c.d.TableLocksWaited
	if observed > 0 && c.d.PctTableLocksImmediate < tableLockImmediateMin {
		c.warn(SectionMetrics, "table_locks",
			"Table locks acquired immediately: %d%%", c.d.PctTableLocksImmediate)
		c.advise("Optimize queries and/or use InnoDB to reduce lock wait")
		return
	}
	c.ok(SectionMetrics, "table_locks",
		"Table locks acquired immediately: %d%% (%d immediate / %d locks)",
		c.d.PctTableLocksImmediate, c.d.TableLocksImmediate, observed)
}

func (c *classifier) checkConcurrentInsert() {
	raw, ok := c.snap.Var("concurrent_insert")
	if !ok {
		return
	}
	// Advice only, no finding: the feature either helps or is a no-op.
	switch raw {
	case "OFF", "NEVER":
		if c.snap.Version.AtLeast(5, 5) {
			c.advise("Enable concurrent_insert by setting it to 'ON'")
		} else {
			c.advise("Enable concurrent_insert by setting it to 1")
		}
	case "0":
		c.advise("Enable concurrent_insert by setting it to 1")
	}
}

func (c *classifier) checkAbortedConnections() {
	if !c.d.PctAbortedConnections.OK {
		return
	}
	if c.d.PctAbortedConnections.Int > abortedConnectionsMax {
		c.warn(SectionMetrics, "aborted_connections",
			"Connections aborted: %d%%", c.d.PctAbortedConnections.Int)
		c.advise("Your applications are not closing MySQL connections properly")
		return
	}
	c.ok(SectionMetrics, "aborted_connections",
		"Connections aborted: %d%%", c.d.PctAbortedConnections.Int)
}

func (c *classifier) checkInnoDB() {
	usage, used := c.snap.EngineUsage["InnoDB"]
	if !used {
		return
	}

	if c.d.InnoDBBufferPool < usage.DataBytes {
		c.warn(SectionMetrics, "innodb_buffer_pool",
			"InnoDB data size / buffer pool: %s/%s", usage.DataBytes, c.d.InnoDBBufferPool)
		c.adjust("innodb_buffer_pool_size (>= %s)", usage.DataBytes.Short())
	} else {
		c.ok(SectionMetrics, "innodb_buffer_pool",
			"InnoDB data size / buffer pool: %s/%s", usage.DataBytes, c.d.InnoDBBufferPool)
	}

	if c.d.InnoDBLogToPoolPct.OK {
		if c.d.InnoDBLogToPoolPct.Int < innodbLogToPoolMin {
			c.warn(SectionMetrics, "innodb_log_size",
				"InnoDB log file size / buffer pool: %d%%", c.d.InnoDBLogToPoolPct.Int)
			c.adjust("innodb_log_file_size (>= 25%% of innodb_buffer_pool_size)")
		} else {
			c.ok(SectionMetrics, "innodb_log_size",
				"InnoDB log file size / buffer pool: %d%%", c.d.InnoDBLogToPoolPct.Int)
		}
	}
}
