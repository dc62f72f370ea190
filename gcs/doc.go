// Package gcs maps object store operations onto JSON API requests executed
// through an authenticated client.Client.
//
// Responses decode into the resource types of google.golang.org/api/storage/v1.
// Bodies are buffered in memory in both directions.
package gcs
