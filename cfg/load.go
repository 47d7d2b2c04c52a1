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

package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a configuration file and fills missing settings with defaults.
//
// Files ending with .yaml or .yml are parsed as YAML and everything else as JSON.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(buf, &c)
		default:
			err = json.Unmarshal(buf, &c)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	c.FillDefaults()
	return &c, nil
}
