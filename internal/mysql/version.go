package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jasherai/mysqltuner/internal/tuner"
)

// ParseVersion extracts the (major, minor) pair from a server version string
// such as "5.5.62-0ubuntu0.14.04.1" or "8.0.36".
func ParseVersion(raw string) (tuner.Version, error) {
	base := raw
	if i := strings.IndexAny(base, "-_+ "); i >= 0 {
		base = base[:i]
	}

	parts := strings.Split(base, ".")
	if len(parts) < 2 {
		return tuner.Version{}, fmt.Errorf("unrecognized server version %q", raw)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return tuner.Version{}, fmt.Errorf("unrecognized server version %q", raw)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return tuner.Version{}, fmt.Errorf("unrecognized server version %q", raw)
	}

	return tuner.Version{Major: major, Minor: minor}, nil
}
