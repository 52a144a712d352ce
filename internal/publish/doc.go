// Package publish uploads a promoted output set to S3-compatible object storage.
// Each object upload is retried with exponential backoff.
package publish
