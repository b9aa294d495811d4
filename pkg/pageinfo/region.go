package pageinfo

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadRegions parses /proc/<pid>/maps into an ordered slice of
// MappedRegions, one per mapping line. Lines that don't parse as a
// start-end address range are skipped rather than treated as fatal,
// mirroring how pkg/memtier's procMaps tolerates the odd malformed or
// kernel-added pseudo-mapping line.
//
// The per-page UseCounts, CombinedFlags and pfns slices are allocated
// here, sized to the region, and left zeroed for later components to
// fill in.
func ReadRegions(pid int) ([]*MappedRegion, error) {
	path := procPath(pid, "maps")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	regions := make([]*MappedRegion, 0, 64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		region, ok := parseMapsLine(scanner.Text())
		if !ok {
			continue
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return regions, errors.Wrapf(err, "failed reading %s", path)
	}
	return regions, nil
}

func parseMapsLine(line string) (*MappedRegion, bool) {
	dash := strings.IndexByte(line, '-')
	if dash <= 0 {
		return nil, false
	}
	space := strings.IndexByte(line, ' ')
	if space <= dash {
		return nil, false
	}
	start, err := strconv.ParseUint(line[:dash], 16, 64)
	if err != nil {
		return nil, false
	}
	end, err := strconv.ParseUint(line[dash+1:space], 16, 64)
	if err != nil || end < start {
		return nil, false
	}

	backingFile := ""
	if fields := strings.Fields(line[space+1:]); len(fields) >= 5 {
		backingFile = strings.Join(fields[4:], " ")
	}

	pageCount := (end - start) / pageSize
	return &MappedRegion{
		Start:         start,
		End:           end,
		BackingFile:   backingFile,
		UseCounts:     make([]uint32, pageCount),
		CombinedFlags: make([]uint32, pageCount),
		pfns:          make([]uint64, pageCount),
	}, true
}

func procPath(pid int, name string) string {
	return "/proc/" + strconv.Itoa(pid) + "/" + name
}
