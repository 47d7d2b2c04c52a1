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

// Package lock implements a mutex that can be acquired with a [context.Context].
package lock

import "context"

// Lock is a mutex.
type Lock chan struct{}

// New returns a new, unlocked [Lock].
func New() Lock {
	return make(chan struct{}, 1)
}

// Lock locks l or returns an error if ctx expires first.
func (l Lock) Lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock unlocks l.
func (l Lock) Unlock() {
	<-l
}
