/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redirect

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BlockList is a list of domains that must not be contacted.
type BlockList struct {
	lock    sync.Mutex
	wg      sync.WaitGroup
	w       *fsnotify.Watcher
	domains map[string]struct{}
}

func loadBlockList(path string) (map[string]struct{}, error) {
	blockedDomains := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := csv.NewReader(f)
	c.FieldsPerRecord = -1
	first := true
	for {
		r, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if first {
			first = false
			continue
		}

		if len(r) == 0 {
			continue
		}

		if domain := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(r[0])), "."); domain != "" {
			blockedDomains[domain] = struct{}{}
		}
	}

	return blockedDomains, nil
}

// NewBlockList loads a list of blocked domains and reloads it when the file changes.
func NewBlockList(log *slog.Logger, path string, reloadDelay time.Duration) (*BlockList, error) {
	domains, err := loadBlockList(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	absPath := filepath.Join(dir, filepath.Base(path))

	b := &BlockList{w: w, domains: domains}

	timer := time.NewTimer(math.MaxInt64)
	timer.Stop()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					timer.Stop()
					return
				}

				if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && event.Name == absPath {
					timer.Reset(reloadDelay)
				}

			case <-timer.C:
				newDomains, err := loadBlockList(path)
				if err != nil {
					log.Warn("Failed to reload block list", "path", path, "error", err)
					continue
				}

				// continue if the old list wasn't empty and the new one is empty; maybe the file was opened with O_TRUNC
				if len(b.domains) > 0 && len(newDomains) == 0 {
					log.Warn("New block list is empty")
					continue
				}

				b.lock.Lock()
				b.domains = newDomains
				b.lock.Unlock()
				log.Info("Reloaded block list", "path", path, "length", len(newDomains))
			}
		}
	}()

	return b, nil
}

// Contains determines if a host or one of its parent domains is blocked.
//
// host may contain a port.
func (b *BlockList) Contains(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	domain := strings.TrimSuffix(strings.ToLower(host), ".")

	b.lock.Lock()
	defer b.lock.Unlock()

	for {
		if _, contains := b.domains[domain]; contains {
			return true
		}

		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return false
		}
		domain = domain[i+1:]
	}
}

// Close frees resources.
func (b *BlockList) Close() {
	b.w.Close()
	b.wg.Wait()
}
