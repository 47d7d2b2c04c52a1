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

package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedMap_InsertionOrder(t *testing.T) {
	assert := assert.New(t)

	m := OrderedMap[string, int]{}
	m.Store("https://t.co/b", 1)
	m.Store("https://t.co/a", 2)
	m.Store("https://t.co/b", 3)
	m.Store("https://t.co/c", 4)

	assert.Equal([]string{"https://t.co/b", "https://t.co/a", "https://t.co/c"}, m.Keys())
	assert.True(m.Contains("https://t.co/a"))
	assert.False(m.Contains("https://t.co/d"))

	var values []int
	for _, v := range m.All() {
		values = append(values, v)
	}
	assert.Equal([]int{1, 2, 4}, values)
}

func TestOrderedMap_StopIteration(t *testing.T) {
	assert := assert.New(t)

	m := OrderedMap[string, struct{}]{}
	m.Store("a", struct{}{})
	m.Store("b", struct{}{})
	m.Store("c", struct{}{})

	var keys []string
	for k := range m.All() {
		keys = append(keys, k)
		if k == "b" {
			break
		}
	}
	assert.Equal([]string{"a", "b"}, keys)
}
