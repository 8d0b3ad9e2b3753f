// Package ingest reads baselines from YAML and CSV files.
//
// Both formats describe the same data: an id, driver captions for X1..X5 and
// the observations. ReadYAML and ReadCSV decode a stream, LoadFile picks the
// decoder by extension and DirSource serves a directory of files as a
// baseline.Source.
package ingest
