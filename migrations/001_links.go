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

package migrations

import (
	"context"
	"database/sql"
)

func links(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE links(original TEXT NOT NULL PRIMARY KEY, target TEXT NOT NULL DEFAULT '', reason TEXT NOT NULL DEFAULT '', requests INTEGER NOT NULL DEFAULT 0, inserted INTEGER DEFAULT (UNIXEPOCH()))`)
	return err
}
