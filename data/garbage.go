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
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dimkr/twitlinks/cfg"
)

type GarbageCollector struct {
	Config *cfg.Config
	DB     *sql.DB
}

// Run deletes expired links.
func (gc *GarbageCollector) Run(ctx context.Context) (int64, error) {
	now := time.Now()

	res, err := gc.DB.ExecContext(
		ctx,
		`DELETE FROM links WHERE (reason = '' AND updated <= ?) OR (reason != '' AND updated <= ?)`,
		now.Add(-gc.Config.ResolverCacheTTL).Unix(),
		now.Add(-gc.Config.ResolverRetryInterval).Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired links: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired links: %w", err)
	}

	return deleted, nil
}
