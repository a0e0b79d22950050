/*
DESCRIPTION
  watcher.go implements the live Bayer-pattern-override reload (spec §4.4
  "(new)"): an fsnotify.Watcher on an optional on-disk file lets an
  operator change bayer_pattern_override without a Stop/Start cycle, the
  same "reconfigure without a restart" shape as the teacher's
  revid.Revid.Update path, but file-driven instead of RPC-driven.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"os"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// startBayerWatch watches req.BayerOverridePath, if set, and updates
// s.requested.BayerPatternOverride (under s.mu) whenever the file's
// content changes. The file is expected to hold a single integer, the
// bayer pattern index of postprocess.DebayerMethod's companion pattern
// enum. Returns a nil watcher if no path is configured.
func (s *Session) startBayerWatch(path string) (*fsnotify.Watcher, error) {
	if path == "" {
		return nil, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s.reloadBayerOverride(path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log().Warning("bayer override watch error", "error", err.Error())
			case <-s.watchDone:
				return
			}
		}
	}()

	return w, nil
}

func (s *Session) reloadBayerOverride(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log().Warning("could not read bayer override file", "path", path, "error", err.Error())
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		s.log().Warning("bayer override file contains a non-integer value", "path", path)
		return
	}

	s.mu.Lock()
	s.requested.BayerPatternOverride = v
	if s.proc != nil {
		s.proc.BayerPatternOverride = v
	}
	s.mu.Unlock()
	s.log().Info("bayer pattern override reloaded", "value", v)
}
