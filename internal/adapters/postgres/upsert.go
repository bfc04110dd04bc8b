package postgres

import (
	"fmt"
	"strings"
)

// Составной ключ у всех таблиц объявлений один и тот же.
var conflictColumns = []string{"source", "listing_id"}

// mergeUpsert накапливает пары колонка-значение и собирает из них
// слияющий upsert: INSERT ... ON CONFLICT DO UPDATE, где обновляются
// только реально переданные колонки. Отсутствующая колонка не попадает
// в SET и не затирает сохраненное значение.
type mergeUpsert struct {
	table   string
	columns []string
	values  []interface{}
}

func newMergeUpsert(table string) *mergeUpsert {
	return &mergeUpsert{table: table}
}

func (b *mergeUpsert) add(column string, value interface{}) {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
}

// addOpt добавляет опциональную колонку: nil означает
// "площадка значение не отдала", такая колонка в запрос не попадает.
func addOpt[T any](b *mergeUpsert, column string, value *T) {
	if value == nil {
		return
	}
	b.add(column, *value)
}

// build собирает финальный SQL и значения к нему.
func (b *mergeUpsert) build() (string, []interface{}) {
	placeholders := make([]string, len(b.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updates []string
	for _, column := range b.columns {
		if column == conflictColumns[0] || column == conflictColumns[1] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	conflictAction := "DO NOTHING"
	if len(updates) > 0 {
		conflictAction = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		b.table,
		strings.Join(b.columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictColumns, ", "),
		conflictAction,
	)
	return sql, b.values
}
