package exporter

import (
	"fmt"
	"math"
	"reflect"

	"agrocaged/pkg/contracts/domain"
)

// FlatTable is a table rendered as a header and string rows
type FlatTable struct {
	Name    string
	Headers []string
	Rows    [][]string
	// Values keeps the typed cells for formats that distinguish numbers from text
	Values [][]any
}

// Flatten renders a slice of row structs. Embedded structs contribute their fields
// in place, so a row with an embedded Flow gets admissoes, demissoes and saldo columns.
func Flatten(name string, table any) (*FlatTable, error) {
	v := reflect.ValueOf(table)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("flatten %s: expected a slice, got %s: %w", name, v.Kind(), ErrUnsupportedValue)
	}
	elem := v.Type().Elem()
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("flatten %s: expected struct rows, got %s: %w", name, elem.Kind(), ErrUnsupportedValue)
	}

	ft := &FlatTable{
		Name:    name,
		Headers: columns(elem),
		Rows:    make([][]string, v.Len()),
		Values:  make([][]any, v.Len()),
	}
	for i := 0; i < v.Len(); i++ {
		fields := cells(v.Index(i))
		row := make([]string, len(fields))
		values := make([]any, len(fields))
		for j, f := range fields {
			row[j] = formatCell(f)
			values[j] = cellValue(f)
		}
		ft.Rows[i] = row
		ft.Values[i] = values
	}
	return ft, nil
}

func cellValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.Bool:
		return v.Bool()
	}
	return formatCell(v)
}

// FlatTables renders every row-list table of the bundle, in bundle order
func FlatTables(dash *domain.Dashboard) ([]*FlatTable, error) {
	var tables []*FlatTable
	for _, name := range domain.BundleTables {
		value, _ := dash.Table(name)
		if reflect.ValueOf(value).Kind() != reflect.Slice {
			continue
		}
		ft, err := Flatten(name, value)
		if err != nil {
			return nil, err
		}
		tables = append(tables, ft)
	}
	return tables, nil
}
