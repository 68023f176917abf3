package domain

import "errors"

// Run failure categories. Stages wrap these so callers can branch with errors.Is.
var (
	// ErrExtraction means the raw staging datasets could not be read. Fatal.
	ErrExtraction = errors.New("extraction failed")

	// ErrClimateFetch means the climate series could not be fetched. The run
	// continues without climate enrichment.
	ErrClimateFetch = errors.New("climate fetch failed")

	// ErrTransformation means aggregation, merge, or derivation hit malformed
	// input. Fatal; no fact rows are produced.
	ErrTransformation = errors.New("transformation failed")

	// ErrLoad means a warehouse load step failed. Remaining steps are skipped;
	// completed steps are not rolled back.
	ErrLoad = errors.New("load failed")
)
