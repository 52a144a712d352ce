// Package dimensions derives categorical dimensions from raw microdata fields.
//
// Every derivation is total: a missing, blank or unmappable input yields NotInformed
// instead of an error, so a record is never dropped from the counts because one of its
// coded fields could not be interpreted.
package dimensions
