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

// Package graph draws text charts.
package graph

import (
	"fmt"
	"strings"
)

var eighths = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// Bars draws a horizontal bar chart with one line per key.
//
// Each bar is 8 characters wide.
func Bars(keys []string, values []int64) string {
	var top int64
	for _, v := range values {
		top = max(top, v)
	}

	unit := float64(8)
	if top >= 16 {
		unit = float64(top) / 8
	}

	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	var w strings.Builder

	for i := 0; i < len(keys); i++ {
		var bar [8]rune
		for j, v := 0, float64(values[i]); j < 8; j, v = j+1, v-unit {
			switch {
			case v >= unit:
				bar[j] = eighths[8]
			case v <= 0:
				bar[j] = eighths[0]
			default:
				bar[j] = eighths[int(v*8/unit)]
			}
		}
		fmt.Fprintf(&w, "%-*s %s %10d\n", width, keys[i], string(bar[:]), values[i])
	}

	return w.String()
}
