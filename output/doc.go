// Package output renders command results for the terminal or as JSON.
//
// NewFormatter picks the implementation from the --json and --quiet flags.
// Human output mirrors gsutil's layouts where one exists; stat prints dates
// in RFC 2822 form. JSON output writes one indented document per call.
package output
