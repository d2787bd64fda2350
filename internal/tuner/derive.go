package tuner

import (
	"math"

	"github.com/jasherai/mysqltuner/utils"
)

const secondsPerDay = 86400

// DerivedMetrics holds every quantity computed from a snapshot. Fields of
// type OptInt/OptFloat are conditionally absent; plain fields are always
// populated once Derive succeeds. Raw counters that classification messages
// quote are carried here too, so the classifier never re-parses the snapshot
// for numbers the derivation already validated.
type DerivedMetrics struct {
	Uptime           int64
	Questions        int64
	QPS              float64
	TotalConnections int64
	BytesSent        utils.MemorySize
	BytesReceived    utils.MemorySize

	// Memory sizing.
	PerThreadBuffers         utils.MemorySize
	TotalPerThreadBuffers    utils.MemorySize // at the configured connection ceiling
	MaxTotalPerThreadBuffers utils.MemorySize // at the observed connection peak
	MaxTempTableSize         utils.MemorySize
	ServerBuffers            utils.MemorySize
	MaxPossibleMemory        utils.MemorySize // worst observed case
	TotalPossibleMemory      utils.MemorySize // worst configured case
	PctPhysicalMemory        int64

	// Query load.
	SlowQueries    int64
	PctSlowQueries int64
	PctReads       int64
	PctWrites      int64

	// Connections.
	MaxUsedConnections    int64
	MaxConnections        int64
	PctConnectionsUsed    int64
	AbortedConnects       int64
	PctAbortedConnections OptInt

	// MyISAM key cache.
	KeyBufferSize     utils.MemorySize
	KeyReadRequests   int64
	KeyReads          int64
	PctKeyBufferUsed  OptFloat
	PctKeysFromMemory OptFloat

	// Query cache.
	QueryCacheSize         utils.MemorySize
	QueryCacheHits         int64
	SelectCommands         int64
	QueryCacheEfficiency   OptFloat
	PctQueryCacheUsed      OptFloat
	QueryCachePrunesPerDay int64

	// Sorting.
	TotalSorts            int64
	SortMergePasses       int64
	PctSortsRequiringTemp OptInt

	// Joins.
	JoinsWithoutIndexes       int64
	JoinsWithoutIndexesPerDay int64

	// Temporary tables.
	TmpTables         int64
	TmpDiskTables     int64
	PctTempDiskTables OptInt

	// Thread cache.
	ThreadsCreated     int64
	ThreadCacheHitRate int64

	// Table cache.
	OpenTables        int64
	OpenedTables      int64
	TableCacheHitRate int64

	// File descriptors.
	OpenFiles        int64
	OpenFilesLimit   int64
	PctOpenFilesUsed OptInt

	// Table locking.
	TableLocksImmediate    int64
	TableLocksWaited       int64
	PctTableLocksImmediate int64

	// InnoDB.
	InnoDBBufferPool   utils.MemorySize
	InnoDBLogToPoolPct OptInt
}

// Derive computes every derived metric from an immutable snapshot. It is
// deterministic and has no side effects. It fails with *MissingCounterError
// when a counter structurally required for a denominator is absent, and with
// ErrNoActivity when the server has answered zero queries.
func Derive(snap *Snapshot) (*DerivedMetrics, error) {
	d := &DerivedMetrics{}

	// Denominators the whole report depends on. Absent is an error here;
	// zero is handled per metric below.
	uptime, ok := snap.Counter("Uptime")
	if !ok {
		return nil, &MissingCounterError{Name: "Uptime"}
	}
	questions, ok := snap.Counter("Questions")
	if !ok {
		return nil, &MissingCounterError{Name: "Questions"}
	}
	if questions == 0 {
		return nil, ErrNoActivity
	}
	connections, ok := snap.Counter("Connections")
	if !ok {
		return nil, &MissingCounterError{Name: "Connections"}
	}
	maxConnections, ok := snap.VarInt("max_connections")
	if !ok {
		return nil, &MissingCounterError{Name: "max_connections"}
	}
	maxUsed, ok := snap.Counter("Max_used_connections")
	if !ok {
		return nil, &MissingCounterError{Name: "Max_used_connections"}
	}

	d.Uptime = uptime
	d.Questions = questions
	d.TotalConnections = connections
	d.MaxConnections = maxConnections
	d.MaxUsedConnections = maxUsed
	if uptime > 0 {
		d.QPS = float64(questions) / float64(uptime)
	}
	d.BytesSent = utils.MemorySize(snap.CounterOr("Bytes_sent", 0))
	d.BytesReceived = utils.MemorySize(snap.CounterOr("Bytes_received", 0))

	uptimeDays := float64(uptime) / secondsPerDay

	// Per-thread buffers use the version-appropriate variable set resolved
	// into the capability table.
	for _, name := range snap.Caps.PerThreadBufferVars {
		d.PerThreadBuffers += snap.VarBytesOr(name, 0)
	}
	d.TotalPerThreadBuffers = d.PerThreadBuffers * utils.MemorySize(maxConnections)
	d.MaxTotalPerThreadBuffers = d.PerThreadBuffers * utils.MemorySize(maxUsed)

	tmpTableSize := snap.VarBytesOr("tmp_table_size", 0)
	maxHeapTableSize := snap.VarBytesOr("max_heap_table_size", 0)
	d.MaxTempTableSize = min(tmpTableSize, maxHeapTableSize)

	// The InnoDB and query cache buffers are engine-specific and may not
	// exist on a given build; absent defaults to zero here by policy.
	d.KeyBufferSize = snap.VarBytesOr("key_buffer_size", 0)
	d.QueryCacheSize = snap.VarBytesOr("query_cache_size", 0)
	d.InnoDBBufferPool = snap.VarBytesOr("innodb_buffer_pool_size", 0)
	d.ServerBuffers = d.KeyBufferSize +
		d.MaxTempTableSize +
		d.InnoDBBufferPool +
		snap.VarBytesOr("innodb_additional_mem_pool_size", 0) +
		snap.VarBytesOr("innodb_log_buffer_size", 0) +
		d.QueryCacheSize

	d.MaxPossibleMemory = d.ServerBuffers + d.MaxTotalPerThreadBuffers
	d.TotalPossibleMemory = d.ServerBuffers + d.TotalPerThreadBuffers
	if snap.Host.PhysicalMemory > 0 {
		d.PctPhysicalMemory = d.TotalPossibleMemory.Bytes() * 100 / snap.Host.PhysicalMemory.Bytes()
	}

	d.SlowQueries = snap.CounterOr("Slow_queries", 0)
	d.PctSlowQueries = d.SlowQueries * 100 / questions

	if maxConnections > 0 {
		d.PctConnectionsUsed = min(100, maxUsed*100/maxConnections)
	}

	d.AbortedConnects = snap.CounterOr("Aborted_connects", 0)
	if connections > 0 {
		d.PctAbortedConnections = OptInt{Int: d.AbortedConnects * 100 / connections, OK: true}
	}

	// Key_blocks_unused only exists from 4.1 on; older servers simply never
	// get this metric.
	if snap.Caps.KeyBlocksUnused && d.KeyBufferSize > 0 {
		if unused, ok := snap.Counter("Key_blocks_unused"); ok {
			blockSize := snap.VarBytesOr("key_cache_block_size", 1024)
			used := 1 - float64(unused)*float64(blockSize)/float64(d.KeyBufferSize)
			d.PctKeyBufferUsed = OptFloat{Float: round1(used * 100), OK: true}
		}
	}

	d.KeyReadRequests = snap.CounterOr("Key_read_requests", 0)
	d.KeyReads = snap.CounterOr("Key_reads", 0)
	if d.KeyReadRequests > 0 {
		served := 1 - float64(d.KeyReads)/float64(d.KeyReadRequests)
		d.PctKeysFromMemory = OptFloat{Float: round1(served * 100), OK: true}
	}

	d.SelectCommands = snap.CounterOr("Com_select", 0)
	if snap.Caps.QueryCache {
		d.QueryCacheHits = snap.CounterOr("Qcache_hits", 0)
		if d.SelectCommands+d.QueryCacheHits > 0 {
			eff := float64(d.QueryCacheHits) * 100 / float64(d.SelectCommands+d.QueryCacheHits)
			d.QueryCacheEfficiency = OptFloat{Float: round1(eff), OK: true}
		}
		if d.QueryCacheSize > 0 {
			free := snap.CounterOr("Qcache_free_memory", 0)
			used := 100 - float64(free)*100/float64(d.QueryCacheSize)
			d.PctQueryCacheUsed = OptFloat{Float: round1(used), OK: true}
		}
		if prunes := snap.CounterOr("Qcache_lowmem_prunes", 0); prunes > 0 && uptimeDays > 0 {
			d.QueryCachePrunesPerDay = int64(float64(prunes) / uptimeDays)
		}
	}

	sortScan := snap.CounterOr("Sort_scan", 0)
	sortRange := snap.CounterOr("Sort_range", 0)
	d.TotalSorts = sortScan + sortRange
	d.SortMergePasses = snap.CounterOr("Sort_merge_passes", 0)
	if d.TotalSorts > 0 {
		d.PctSortsRequiringTemp = OptInt{Int: d.SortMergePasses * 100 / d.TotalSorts, OK: true}
	}

	d.JoinsWithoutIndexes = snap.CounterOr("Select_range_check", 0) + snap.CounterOr("Select_full_join", 0)
	if uptimeDays > 0 {
		d.JoinsWithoutIndexesPerDay = int64(float64(d.JoinsWithoutIndexes) / uptimeDays)
	}

	d.TmpTables = snap.CounterOr("Created_tmp_tables", 0)
	d.TmpDiskTables = snap.CounterOr("Created_tmp_disk_tables", 0)
	if d.TmpTables > 0 {
		d.PctTempDiskTables = OptInt{Int: d.TmpDiskTables * 100 / d.TmpTables, OK: true}
	}

	d.ThreadsCreated = snap.CounterOr("Threads_created", 0)
	if connections > 0 {
		d.ThreadCacheHitRate = 100 - d.ThreadsCreated*100/connections
	}

	d.OpenTables = snap.CounterOr("Open_tables", 0)
	d.OpenedTables = snap.CounterOr("Opened_tables", 0)
	if d.OpenedTables > 0 {
		d.TableCacheHitRate = d.OpenTables * 100 / d.OpenedTables
	} else {
		// Nothing was ever opened, so nothing was ever missed.
		d.TableCacheHitRate = 100
	}

	d.OpenFiles = snap.CounterOr("Open_files", 0)
	d.OpenFilesLimit, _ = snap.VarInt("open_files_limit")
	if d.OpenFiles > 0 && d.OpenFilesLimit > 0 {
		d.PctOpenFilesUsed = OptInt{Int: d.OpenFiles * 100 / d.OpenFilesLimit, OK: true}
	}

	d.TableLocksImmediate = snap.CounterOr("Table_locks_immediate", 0)
	d.TableLocksWaited = snap.CounterOr("Table_locks_waited", 0)
	if d.TableLocksWaited == 0 {
		d.PctTableLocksImmediate = 100
	} else {
		d.PctTableLocksImmediate = d.TableLocksImmediate * 100 /
			(d.TableLocksImmediate + d.TableLocksWaited)
	}

	reads := d.SelectCommands
	writes := snap.CounterOr("Com_insert", 0) +
		snap.CounterOr("Com_update", 0) +
		snap.CounterOr("Com_delete", 0) +
		snap.CounterOr("Com_replace", 0)
	if reads == 0 {
		d.PctReads = 0
		d.PctWrites = 100
	} else {
		d.PctReads = reads * 100 / (reads + writes)
		d.PctWrites = 100 - d.PctReads
	}

	if snap.VarOn("have_innodb") || d.InnoDBBufferPool > 0 {
		if logSize, ok := snap.VarBytes("innodb_log_file_size"); ok && d.InnoDBBufferPool > 0 {
			d.InnoDBLogToPoolPct = OptInt{
				Int: logSize.Bytes() * 100 / d.InnoDBBufferPool.Bytes(),
				OK:  true,
			}
		}
	}

	return d, nil
}

// round1 rounds to one decimal place, half away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
