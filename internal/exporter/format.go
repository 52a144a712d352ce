package exporter

import (
	"math"
	"reflect"
	"strconv"
	"time"
)

// formatFloat renders a float with the shortest exact representation; absent values are empty
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatCell renders one scalar field for tabular output
func formatCell(v reflect.Value) string {
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format("2006-01-02")
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return formatCell(v.Elem())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return formatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return formatInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(v.Float())
	}
	return ""
}
