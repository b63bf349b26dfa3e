package db

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"calibrify/pkg/types"
)

// Psql - squirrel с плейсхолдерами $1, $2 для pgx.
var Psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ApplyFilters добавляет WHERE по разрешённым полям. "a,b" превращается в IN.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: filter.Values(jsonField)})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}
	return builder
}

// ApplySearch - ILIKE по нескольким колонкам через OR.
func ApplySearch(builder sq.SelectBuilder, search string, columns ...string) sq.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return builder
	}
	pat := "%" + search + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pat})
	}
	return builder.Where(or)
}

// ApplySort сортирует по разрешённым полям, иначе по defaultOrder.
// Поля перебираются в алфавитном порядке, чтобы SQL был детерминированным.
func ApplySort(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, defaultOrder string) sq.SelectBuilder {
	fields := make([]string, 0, len(filter.Sort))
	for f := range filter.Sort {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	applied := false
	for _, jsonField := range fields {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(filter.Sort[jsonField]) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		applied = true
	}

	if !applied && defaultOrder != "" {
		builder = builder.OrderBy(defaultOrder)
	}
	return builder
}

func ApplyPagination(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if !filter.WithPagination {
		return builder
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	return builder
}
