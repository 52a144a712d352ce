// Package config provides centralized configuration management for agrocaged.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AGRO_<SECTION>_<FIELD>:
//
//	AGRO_PIPELINE_INPUT_PATH=data/raw/caged_agro_pr_microdados.parquet
//	AGRO_PIPELINE_FORMATS=json,csv
//	AGRO_LOGGING_LEVEL=debug
//	AGRO_PUBLISH_BUCKET=dashboards
//
// # Output Layout
//
// Layout resolves the file names of every artifact a run produces, relative to
// the configured output directory. Runs write into a staging directory that is
// renamed into place once every artifact has been written.
package config
