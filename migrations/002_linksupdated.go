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

func linksupdated(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `ALTER TABLE links ADD COLUMN updated INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE links SET updated = inserted`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX linksupdated ON links(updated)`); err != nil {
		return err
	}

	return nil
}
