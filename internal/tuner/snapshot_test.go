package tuner

import (
	"testing"

	"github.com/jasherai/mysqltuner/utils"
)

func TestSnapshotAccessors(t *testing.T) {
	snap := NewSnapshot(
		map[string]string{
			"Key_Buffer_Size": "16777216",
			"query_cache_type": "ON",
			"have_innodb":      "YES",
			"datadir":          "",
			"long_query_time":  "0.5",
			"broken":           "12abc",
		},
		map[string]string{
			"Uptime":    "3600",
			"Questions": "0",
		},
		HostFacts{}, nil, Version{Major: 5, Minor: 7},
	)

	// Lookups are case-insensitive.
	if v, ok := snap.VarBytes("KEY_BUFFER_SIZE"); !ok || v != 16*utils.MB {
		t.Errorf("VarBytes(key_buffer_size) = %v, %v", v, ok)
	}

	// Present-but-empty is distinct from absent.
	if _, ok := snap.Var("datadir"); !ok {
		t.Error("empty datadir should be present")
	}
	if _, ok := snap.Var("no_such_var"); ok {
		t.Error("missing variable reported as present")
	}

	if !snap.VarOn("query_cache_type") || !snap.VarOn("have_innodb") {
		t.Error("ON/YES values should read as enabled")
	}
	if snap.VarOn("no_such_var") {
		t.Error("missing variable reported as enabled")
	}

	if f, ok := snap.VarFloat("long_query_time"); !ok || f != 0.5 {
		t.Errorf("VarFloat(long_query_time) = %v, %v", f, ok)
	}

	// Unparseable counts as absent, not as zero.
	if _, ok := snap.VarInt("broken"); ok {
		t.Error("unparseable variable reported as present")
	}

	// A counter present with value zero is present.
	if n, ok := snap.Counter("Questions"); !ok || n != 0 {
		t.Errorf("Counter(Questions) = %v, %v", n, ok)
	}
	if got := snap.CounterOr("Slow_queries", 7); got != 7 {
		t.Errorf("CounterOr default = %d, want 7", got)
	}
}

func TestResolveCapabilities(t *testing.T) {
	tests := []struct {
		version       Version
		queryCache    bool
		keyBlocks     bool
		tableCacheVar string
		slowLogVar    string
		firstBuffer   string
	}{
		{Version{3, 23}, false, false, "table_cache", "log_slow_queries", "record_buffer"},
		{Version{4, 0}, true, false, "table_cache", "log_slow_queries", "read_buffer_size"},
		{Version{4, 1}, true, true, "table_cache", "log_slow_queries", "read_buffer_size"},
		{Version{5, 0}, true, true, "table_cache", "log_slow_queries", "read_buffer_size"},
		{Version{5, 1}, true, true, "table_open_cache", "slow_query_log", "read_buffer_size"},
		{Version{8, 0}, true, true, "table_open_cache", "slow_query_log", "read_buffer_size"},
	}

	for _, tt := range tests {
		caps := ResolveCapabilities(tt.version)
		if caps.QueryCache != tt.queryCache {
			t.Errorf("%v QueryCache = %v, want %v", tt.version, caps.QueryCache, tt.queryCache)
		}
		if caps.KeyBlocksUnused != tt.keyBlocks {
			t.Errorf("%v KeyBlocksUnused = %v, want %v", tt.version, caps.KeyBlocksUnused, tt.keyBlocks)
		}
		if caps.TableCacheVar != tt.tableCacheVar {
			t.Errorf("%v TableCacheVar = %q, want %q", tt.version, caps.TableCacheVar, tt.tableCacheVar)
		}
		if caps.SlowLogVar != tt.slowLogVar {
			t.Errorf("%v SlowLogVar = %q, want %q", tt.version, caps.SlowLogVar, tt.slowLogVar)
		}
		if caps.PerThreadBufferVars[0] != tt.firstBuffer {
			t.Errorf("%v buffer vars start with %q, want %q",
				tt.version, caps.PerThreadBufferVars[0], tt.firstBuffer)
		}
	}
}

func TestVersionAtLeast(t *testing.T) {
	v := Version{Major: 5, Minor: 1}
	if !v.AtLeast(5, 1) || !v.AtLeast(5, 0) || !v.AtLeast(4, 9) {
		t.Error("5.1 should satisfy 5.1, 5.0 and 4.9")
	}
	if v.AtLeast(5, 5) || v.AtLeast(8, 0) {
		t.Error("5.1 should not satisfy 5.5 or 8.0")
	}
	if got := v.String(); got != "5.1" {
		t.Errorf("String() = %q, want 5.1", got)
	}
}
