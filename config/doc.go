// Package config loads and validates gsutil settings.
//
// Settings come from a YAML profile file, GSUTIL_ environment variables and
// command-line flags, merged with viper and checked with go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. The selected profile in the profile file
//  3. Environment variables (GSUTIL_ prefix)
//  4. CLI flags
//
// # Profile File
//
// The file lives at ~/.config/gsutil/config.yaml unless --config or
// GSUTIL_CONFIG points elsewhere:
//
//	profiles:
//	  - name: work
//	    default: true
//	    credentials: ~/keys/work.json
//	    project: my-project
//	    duration: 1d
//	  - name: local
//	    endpoint: http://localhost:4443
//	    token_cache: none
//
// # Environment Variables
//
// Keys map to GSUTIL_ variables with dots replaced by underscores:
//   - project → GSUTIL_PROJECT
//   - signurl.duration → GSUTIL_SIGNURL_DURATION
//   - log.level → GSUTIL_LOG_LEVEL
//
// credentials also honours GOOGLE_APPLICATION_CREDENTIALS.
//
// # Durations
//
// Duration values accept the signed URL forms ("30s", "5m", "2h", "1d", a bare
// number of hours) as well as anything time.ParseDuration understands.
package config
