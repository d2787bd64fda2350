package sysinfo

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/jasherai/mysqltuner/internal/tuner"
	"github.com/jasherai/mysqltuner/utils"
)

// Collect gathers the host-side facts the analysis needs: installed RAM,
// whether the OS is 64-bit, and the on-disk MyISAM index footprint under the
// server's datadir.
//
// forceMem, when nonzero, overrides the detected physical memory. That is how
// remote servers are handled: the tool runs on one machine, the server on
// another, and the operator supplies the server's RAM by hand.
//
// The MyISAM scan is best-effort. The datadir is usually only readable by the
// mysql user, so a permission error leaves MyISAMIndexesKnown false instead
// of failing the run.
func Collect(ctx context.Context, datadir string, forceMem utils.MemorySize) (tuner.HostFacts, error) {
	facts := tuner.HostFacts{PhysicalMemory: forceMem}

	if facts.PhysicalMemory == 0 {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return tuner.HostFacts{}, fmt.Errorf("detect physical memory: %w", err)
		}
		facts.PhysicalMemory = utils.MemorySize(vm.Total)
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return tuner.HostFacts{}, fmt.Errorf("detect host architecture: %w", err)
	}
	facts.Is64Bit = strings.Contains(info.KernelArch, "64")

	if datadir != "" {
		if size, err := myisamIndexSize(datadir); err == nil {
			facts.MyISAMIndexes = size
			facts.MyISAMIndexesKnown = true
		}
	}

	return facts, nil
}

// myisamIndexSize sums the sizes of all .MYI files under the datadir.
func myisamIndexSize(datadir string) (utils.MemorySize, error) {
	var total utils.MemorySize
	err := filepath.WalkDir(datadir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".MYI") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += utils.MemorySize(info.Size())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
