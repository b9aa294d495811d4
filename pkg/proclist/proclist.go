// Copyright 2024 The memscope Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package proclist enumerates live processes well enough to resolve a
// short executable name to a pid, the way the CLI needs to when its
// argument doesn't parse as a number.
package proclist

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Process is one live process as seen under /proc.
type Process struct {
	Pid  int
	Name string
}

// List enumerates live PIDs and their executable names by globbing
// /proc/*/exe, the same entry point pkg/memtier's proc-polling pid
// watcher uses. A dangling symlink means a kernel thread or a process
// that exited between the glob and the readlink; it is skipped rather
// than reported as an error.
func List() ([]Process, error) {
	matches, err := filepath.Glob("/proc/*/exe")
	if err != nil {
		return nil, errors.Wrap(err, "failed to glob /proc/*/exe")
	}

	procs := make([]Process, 0, len(matches))
	for _, exe := range matches {
		target, err := os.Readlink(exe)
		if err != nil {
			continue
		}
		pid, err := pidFromExePath(exe)
		if err != nil {
			continue
		}
		procs = append(procs, Process{Pid: pid, Name: filepath.Base(target)})
	}
	return procs, nil
}

func pidFromExePath(exe string) (int, error) {
	parts := strings.Split(exe, string(filepath.Separator))
	if len(parts) < 3 {
		return 0, errors.Errorf("unexpected /proc/*/exe path %q", exe)
	}
	return strconv.Atoi(parts[2])
}

// Resolve returns the pid named by arg, which may be a numeric pid or a
// short executable name. If arg names more than one live process, the
// first match in List's order is returned.
func Resolve(arg string) (int, error) {
	if pid, err := strconv.Atoi(arg); err == nil {
		return pid, nil
	}

	procs, err := List()
	if err != nil {
		return 0, err
	}
	for _, p := range procs {
		if p.Name == arg {
			return p.Pid, nil
		}
	}
	return 0, errors.Errorf("no running process named %q", arg)
}
