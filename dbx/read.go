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

// Package dbx reads the results of SQL queries into Go values.
package dbx

import (
	"database/sql"
	"reflect"
)

// scanTargets returns the pointers passed to [sql.Rows.Scan] for a row of type T.
func scanTargets[T any](row *T) []any {
	if _, ok := any(row).(sql.Scanner); ok {
		return []any{row}
	}

	v := reflect.ValueOf(row).Elem()
	if v.Kind() != reflect.Struct {
		return []any{row}
	}

	t := v.Type()
	targets := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			targets = append(targets, v.Field(i).Addr().Interface())
		}
	}

	return targets
}

// ScanRows reads the results of a SQL query and calls collect for each row.
//
// ignore determines which [sql.Rows.Scan] errors should be ignored.
//
// If T is a struct, the columns of each row are assigned to visible fields of T.
func ScanRows[T any](rows *sql.Rows, collect func(T), ignore func(error) bool) error {
	for rows.Next() {
		var row T
		if err := rows.Scan(scanTargets(&row)...); err != nil && ignore(err) {
			continue
		} else if err != nil {
			return err
		}

		collect(row)
	}

	return rows.Err()
}

// CollectRows reads the results of a SQL query.
//
// expected is the expected number of rows.
// ignore determines which [sql.Rows.Scan] errors should be ignored.
//
// If T is a struct, the columns of each row are assigned to visible fields of T.
//
// T must not be a pointer.
func CollectRows[T any](rows *sql.Rows, expected int, ignore func(error) bool) ([]T, error) {
	scanned := make([]T, 0, expected)

	if err := ScanRows(
		rows,
		func(row T) {
			scanned = append(scanned, row)
		},
		ignore,
	); err != nil {
		return nil, err
	}

	return scanned, nil
}
