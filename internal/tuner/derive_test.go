package tuner

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/jasherai/mysqltuner/utils"
)

// testVariables and testStatus build a self-consistent day-old server with
// mixed read/write load. Individual tests copy and tweak them.
func testVariables() map[string]string {
	return map[string]string{
		"max_connections":         "100",
		"read_buffer_size":        "131072",
		"read_rnd_buffer_size":    "262144",
		"sort_buffer_size":        "2097152",
		"thread_stack":            "262144",
		"join_buffer_size":        "131072",
		"tmp_table_size":          "16777216",
		"max_heap_table_size":     "33554432",
		"key_buffer_size":         "16777216",
		"query_cache_size":        "16777216",
		"innodb_buffer_pool_size": "134217728",
		"innodb_log_buffer_size":  "8388608",
		"innodb_log_file_size":    "33554432",
		"open_files_limit":        "1024",
	}
}

func testStatus() map[string]string {
	return map[string]string{
		"Uptime":                  "86400",
		"Questions":               "10000",
		"Connections":             "1000",
		"Max_used_connections":    "85",
		"Slow_queries":            "500",
		"Aborted_connects":        "50",
		"Key_blocks_unused":       "8192",
		"Key_read_requests":       "1000",
		"Key_reads":               "10",
		"Com_select":              "900",
		"Com_insert":              "50",
		"Com_update":              "30",
		"Com_delete":              "10",
		"Com_replace":             "10",
		"Qcache_hits":             "100",
		"Qcache_free_memory":      "8388608",
		"Qcache_lowmem_prunes":    "500",
		"Sort_scan":               "100",
		"Sort_range":              "100",
		"Sort_merge_passes":       "50",
		"Select_full_join":        "200",
		"Select_range_check":      "100",
		"Created_tmp_tables":      "1000",
		"Created_tmp_disk_tables": "300",
		"Threads_created":         "100",
		"Open_tables":             "40",
		"Opened_tables":           "100",
		"Open_files":              "100",
		"Table_locks_immediate":   "950",
		"Table_locks_waited":      "50",
		"Bytes_sent":              "1000000",
		"Bytes_received":          "500000",
	}
}

func testHost() HostFacts {
	return HostFacts{
		PhysicalMemory:     4 * utils.GB,
		Is64Bit:            true,
		MyISAMIndexes:      64 * utils.MB,
		MyISAMIndexesKnown: true,
	}
}

func deriveFixture(t *testing.T, vars, status map[string]string) *DerivedMetrics {
	t.Helper()
	snap := NewSnapshot(vars, status, testHost(), nil, Version{Major: 5, Minor: 5})
	d, err := Derive(snap)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return d
}

func TestDerive(t *testing.T) {
	d := deriveFixture(t, testVariables(), testStatus())

	if math.Abs(d.QPS-10000.0/86400.0) > 1e-9 {
		t.Errorf("QPS = %v", d.QPS)
	}
	if d.PerThreadBuffers != 2883584 {
		t.Errorf("PerThreadBuffers = %d, want 2883584", d.PerThreadBuffers)
	}
	if d.TotalPerThreadBuffers != 288358400 {
		t.Errorf("TotalPerThreadBuffers = %d", d.TotalPerThreadBuffers)
	}
	if d.MaxTotalPerThreadBuffers != 2883584*85 {
		t.Errorf("MaxTotalPerThreadBuffers = %d", d.MaxTotalPerThreadBuffers)
	}

	// Effective temp table ceiling is the smaller of the two variables.
	if d.MaxTempTableSize != 16*utils.MB {
		t.Errorf("MaxTempTableSize = %s, want 16.0M", d.MaxTempTableSize)
	}

	wantServer := utils.MemorySize(16777216 + 16777216 + 134217728 + 8388608 + 16777216)
	if d.ServerBuffers != wantServer {
		t.Errorf("ServerBuffers = %d, want %d", d.ServerBuffers, wantServer)
	}
	if d.TotalPossibleMemory != wantServer+288358400 {
		t.Errorf("TotalPossibleMemory = %d", d.TotalPossibleMemory)
	}
	if d.PctPhysicalMemory != 11 {
		t.Errorf("PctPhysicalMemory = %d, want 11", d.PctPhysicalMemory)
	}

	if d.PctSlowQueries != 5 {
		t.Errorf("PctSlowQueries = %d, want 5", d.PctSlowQueries)
	}
	if d.PctConnectionsUsed != 85 {
		t.Errorf("PctConnectionsUsed = %d, want 85", d.PctConnectionsUsed)
	}
	if !d.PctAbortedConnections.OK || d.PctAbortedConnections.Int != 5 {
		t.Errorf("PctAbortedConnections = %+v, want 5", d.PctAbortedConnections)
	}

	if !d.PctKeyBufferUsed.OK || d.PctKeyBufferUsed.Float != 50.0 {
		t.Errorf("PctKeyBufferUsed = %+v, want 50.0", d.PctKeyBufferUsed)
	}
	if !d.PctKeysFromMemory.OK || d.PctKeysFromMemory.Float != 99.0 {
		t.Errorf("PctKeysFromMemory = %+v, want 99.0", d.PctKeysFromMemory)
	}

	if !d.QueryCacheEfficiency.OK || d.QueryCacheEfficiency.Float != 10.0 {
		t.Errorf("QueryCacheEfficiency = %+v, want 10.0", d.QueryCacheEfficiency)
	}
	if !d.PctQueryCacheUsed.OK || d.PctQueryCacheUsed.Float != 50.0 {
		t.Errorf("PctQueryCacheUsed = %+v, want 50.0", d.PctQueryCacheUsed)
	}
	if d.QueryCachePrunesPerDay != 500 {
		t.Errorf("QueryCachePrunesPerDay = %d, want 500", d.QueryCachePrunesPerDay)
	}

	if d.TotalSorts != 200 || !d.PctSortsRequiringTemp.OK || d.PctSortsRequiringTemp.Int != 25 {
		t.Errorf("sorts = %d / %+v, want 200 / 25", d.TotalSorts, d.PctSortsRequiringTemp)
	}
	if d.JoinsWithoutIndexes != 300 || d.JoinsWithoutIndexesPerDay != 300 {
		t.Errorf("joins = %d (%d/day), want 300 (300/day)",
			d.JoinsWithoutIndexes, d.JoinsWithoutIndexesPerDay)
	}
	if !d.PctTempDiskTables.OK || d.PctTempDiskTables.Int != 30 {
		t.Errorf("PctTempDiskTables = %+v, want 30", d.PctTempDiskTables)
	}

	if d.ThreadCacheHitRate != 90 {
		t.Errorf("ThreadCacheHitRate = %d, want 90", d.ThreadCacheHitRate)
	}
	if d.TableCacheHitRate != 40 {
		t.Errorf("TableCacheHitRate = %d, want 40", d.TableCacheHitRate)
	}
	if !d.PctOpenFilesUsed.OK || d.PctOpenFilesUsed.Int != 9 {
		t.Errorf("PctOpenFilesUsed = %+v, want 9", d.PctOpenFilesUsed)
	}
	if d.PctTableLocksImmediate != 95 {
		t.Errorf("PctTableLocksImmediate = %d, want 95", d.PctTableLocksImmediate)
	}

	if d.PctReads != 90 || d.PctWrites != 10 {
		t.Errorf("reads/writes = %d/%d, want 90/10", d.PctReads, d.PctWrites)
	}
	if !d.InnoDBLogToPoolPct.OK || d.InnoDBLogToPoolPct.Int != 25 {
		t.Errorf("InnoDBLogToPoolPct = %+v, want 25", d.InnoDBLogToPoolPct)
	}
}

func TestDeriveNoActivity(t *testing.T) {
	status := testStatus()
	status["Questions"] = "0"
	snap := NewSnapshot(testVariables(), status, testHost(), nil, Version{Major: 5, Minor: 5})

	_, err := Derive(snap)
	if !errors.Is(err, ErrNoActivity) {
		t.Errorf("expected ErrNoActivity, got %v", err)
	}
}

func TestDeriveMissingCounter(t *testing.T) {
	for _, name := range []string{"Uptime", "Questions", "Connections", "Max_used_connections"} {
		status := testStatus()
		delete(status, name)
		snap := NewSnapshot(testVariables(), status, testHost(), nil, Version{Major: 5, Minor: 5})

		_, err := Derive(snap)
		var missing *MissingCounterError
		if !errors.As(err, &missing) {
			t.Errorf("without %s: expected MissingCounterError, got %v", name, err)
			continue
		}
		if missing.Name != name {
			t.Errorf("missing counter = %q, want %q", missing.Name, name)
		}
	}

	vars := testVariables()
	delete(vars, "max_connections")
	snap := NewSnapshot(vars, testStatus(), testHost(), nil, Version{Major: 5, Minor: 5})
	var missing *MissingCounterError
	if _, err := Derive(snap); !errors.As(err, &missing) {
		t.Errorf("without max_connections: expected MissingCounterError, got %v", err)
	}
}

func TestDeriveConnectionUsageClamped(t *testing.T) {
	// A restart can leave Max_used_connections above the current ceiling.
	status := testStatus()
	status["Max_used_connections"] = "150"
	d := deriveFixture(t, testVariables(), status)
	if d.PctConnectionsUsed != 100 {
		t.Errorf("PctConnectionsUsed = %d, want clamp to 100", d.PctConnectionsUsed)
	}
}

func TestDeriveNoReads(t *testing.T) {
	status := testStatus()
	status["Com_select"] = "0"
	d := deriveFixture(t, testVariables(), status)
	if d.PctReads != 0 || d.PctWrites != 100 {
		t.Errorf("reads/writes = %d/%d, want 0/100", d.PctReads, d.PctWrites)
	}
}

func TestDeriveAbsentStates(t *testing.T) {
	status := testStatus()
	status["Sort_scan"] = "0"
	status["Sort_range"] = "0"
	status["Key_read_requests"] = "0"
	status["Created_tmp_tables"] = "0"
	status["Opened_tables"] = "0"
	status["Table_locks_waited"] = "0"
	delete(status, "Open_files")
	d := deriveFixture(t, testVariables(), status)

	if d.PctSortsRequiringTemp.OK {
		t.Error("PctSortsRequiringTemp computed with zero sorts")
	}
	if d.PctKeysFromMemory.OK {
		t.Error("PctKeysFromMemory computed with zero read requests")
	}
	if d.PctTempDiskTables.OK {
		t.Error("PctTempDiskTables computed with zero temp tables")
	}
	if d.PctOpenFilesUsed.OK {
		t.Error("PctOpenFilesUsed computed with zero open files")
	}

	// A table cache that was never missed is a perfect cache, and a server
	// that never waited on a lock always acquired immediately.
	if d.TableCacheHitRate != 100 {
		t.Errorf("TableCacheHitRate = %d, want 100", d.TableCacheHitRate)
	}
	if d.PctTableLocksImmediate != 100 {
		t.Errorf("PctTableLocksImmediate = %d, want 100", d.PctTableLocksImmediate)
	}
}

func TestDeriveKeyBufferUsedNeedsCapability(t *testing.T) {
	// Key_blocks_unused did not exist before 4.1, so the metric must stay
	// absent even when a counter with that name is around.
	snap := NewSnapshot(testVariables(), testStatus(), testHost(), nil, Version{Major: 4, Minor: 0})
	d, err := Derive(snap)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if d.PctKeyBufferUsed.OK {
		t.Error("PctKeyBufferUsed computed on a pre-4.1 server")
	}
}

func TestDeriveDeterministic(t *testing.T) {
	snap := NewSnapshot(testVariables(), testStatus(), testHost(), nil, Version{Major: 5, Minor: 5})
	first, err := Derive(snap)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	second, err := Derive(snap)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Derive is not deterministic over an unchanged snapshot")
	}
}
