package tuner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jasherai/mysqltuner/utils"
)

// Version is the server's (major, minor) version pair.
type Version struct {
	Major int
	Minor int
}

// AtLeast reports whether the version is >= major.minor.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// EngineStats aggregates table data per storage engine across user schemas.
type EngineStats struct {
	DataBytes utils.MemorySize
	Tables    int
}

// HostFacts carries what we know about the machine the server runs on.
// MyISAMIndexesKnown is false when the on-disk index size could not be
// measured (usually a privilege problem); that state is distinct from a
// measured total of zero and drives a different finding.
type HostFacts struct {
	PhysicalMemory     utils.MemorySize
	Is64Bit            bool
	MyISAMIndexes      utils.MemorySize
	MyISAMIndexesKnown bool
}

// Capabilities records which variables and counters the detected server
// version exposes. It is resolved once when the snapshot is built so that no
// version conditionals are scattered through derivation or classification.
type Capabilities struct {
	// QueryCache: the query cache exists from 4.0 on.
	QueryCache bool
	// KeyBlocksUnused: the Key_blocks_unused counter exists from 4.1 on.
	KeyBlocksUnused bool
	// PerThreadBufferVars is the version-appropriate set of per-connection
	// buffer variables. 3.23 used record_buffer/record_rnd_buffer/sort_buffer.
	PerThreadBufferVars []string
	// TableCacheVar is "table_cache" before 5.1 and "table_open_cache" after.
	TableCacheVar string
	// SlowLogVar is "log_slow_queries" before 5.1 and "slow_query_log" after.
	SlowLogVar string
}

// ResolveCapabilities builds the capability table for a server version.
func ResolveCapabilities(v Version) Capabilities {
	caps := Capabilities{
		QueryCache:      v.AtLeast(4, 0),
		KeyBlocksUnused: v.AtLeast(4, 1),
		TableCacheVar:   "table_cache",
		SlowLogVar:      "log_slow_queries",
	}

	if v.AtLeast(4, 0) {
		caps.PerThreadBufferVars = []string{
			"read_buffer_size",
			"read_rnd_buffer_size",
			"sort_buffer_size",
			"thread_stack",
			"join_buffer_size",
		}
	} else {
		caps.PerThreadBufferVars = []string{
			"record_buffer",
			"record_rnd_buffer",
			"sort_buffer",
			"thread_stack",
			"join_buffer_size",
		}
	}

	if v.AtLeast(5, 1) {
		caps.TableCacheVar = "table_open_cache"
		caps.SlowLogVar = "slow_query_log"
	}

	return caps
}

// Snapshot is a one-time, immutable capture of server configuration
// variables, status counters, host facts, and storage engine usage. It is
// built once per run and only ever read afterwards.
type Snapshot struct {
	Variables   map[string]string
	Status      map[string]string
	Host        HostFacts
	EngineUsage map[string]EngineStats
	Version     Version
	Caps        Capabilities
}

// NewSnapshot assembles a snapshot and resolves version capabilities once.
// Variable and counter names are normalized to lower case on the way in, the
// same normalization the typed accessors apply on lookup.
func NewSnapshot(variables, status map[string]string, host HostFacts, engines map[string]EngineStats, version Version) *Snapshot {
	vars := make(map[string]string, len(variables))
	for k, v := range variables {
		vars[strings.ToLower(k)] = v
	}
	stat := make(map[string]string, len(status))
	for k, v := range status {
		stat[strings.ToLower(k)] = v
	}
	if engines == nil {
		engines = map[string]EngineStats{}
	}

	return &Snapshot{
		Variables:   vars,
		Status:      stat,
		Host:        host,
		EngineUsage: engines,
		Version:     version,
		Caps:        ResolveCapabilities(version),
	}
}

// Var returns the raw value of a configuration variable. The second return
// distinguishes "absent" from "present but empty".
func (s *Snapshot) Var(name string) (string, bool) {
	v, ok := s.Variables[strings.ToLower(name)]
	return v, ok
}

// VarInt returns a configuration variable parsed as an integer. Unparseable
// values count as absent.
func (s *Snapshot) VarInt(name string) (int64, bool) {
	raw, ok := s.Var(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VarFloat returns a configuration variable parsed as a float. Newer servers
// expose some durations (long_query_time) with fractional parts.
func (s *Snapshot) VarFloat(name string) (float64, bool) {
	raw, ok := s.Var(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// VarBytes returns a byte-sized configuration variable.
func (s *Snapshot) VarBytes(name string) (utils.MemorySize, bool) {
	n, ok := s.VarInt(name)
	if !ok {
		return 0, false
	}
	return utils.MemorySize(n), true
}

// VarBytesOr returns a byte-sized variable, or def when it is absent. Used
// for the optional engine-specific buffers that legitimately default to zero.
func (s *Snapshot) VarBytesOr(name string, def utils.MemorySize) utils.MemorySize {
	if n, ok := s.VarBytes(name); ok {
		return n
	}
	return def
}

// VarOn reports whether an enum-like variable is enabled. MySQL spells
// enabled as ON, YES, TRUE, or 1 depending on the variable and version.
func (s *Snapshot) VarOn(name string) bool {
	raw, ok := s.Var(name)
	if !ok {
		return false
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ON", "YES", "TRUE", "1":
		return true
	}
	return false
}

// Counter returns a status counter parsed as an integer. Unparseable values
// count as absent.
func (s *Snapshot) Counter(name string) (int64, bool) {
	raw, ok := s.Status[strings.ToLower(name)]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CounterOr returns a status counter, or def when it is absent.
func (s *Snapshot) CounterOr(name string, def int64) int64 {
	if n, ok := s.Counter(name); ok {
		return n
	}
	return def
}
