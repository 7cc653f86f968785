// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	ArchivesImported = expvar.NewInt("archives_imported")
	ArchivesFailed   = expvar.NewInt("archives_failed")
	ArchivesSkipped  = expvar.NewInt("archives_skipped")
	RowsInserted     = expvar.NewInt("rows_inserted")
)
