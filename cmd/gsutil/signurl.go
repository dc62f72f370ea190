package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/oauth"
	"github.com/sagarc03/gsutil/output"
	"github.com/sagarc03/gsutil/signurl"
)

var (
	signMethod      string
	signContentType string
	signHeaders     []string

	// Resolved through config.Load, so GSUTIL_SIGNURL_* and profiles apply.
	signDuration string
	signScheme   string
)

var signurlCmd = &cobra.Command{
	Use:   "signurl <url> [url...]",
	Short: "Create signed URLs for objects",
	Long: `Create URLs that grant time-limited access to objects without credentials.

Signing needs a service account key, given with --credentials,
GSUTIL_CREDENTIALS or the selected profile. Durations take an s, m, h or d
suffix; a bare number is hours. V4 URLs are valid for at most 7 days.

Examples:
  gsutil signurl --credentials key.json gs://bucket/report.pdf
  gsutil signurl -d 10m -m PUT -c application/pdf gs://bucket/upload.pdf
  gsutil signurl -m RESUMABLE gs://bucket/large.bin
  gsutil signurl --scheme v2 -d 30d 'gs://bucket/public/*'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSignURL,
}

func init() {
	signurlCmd.Flags().StringVarP(&signMethod, "method", "m", string(signurl.MethodGet), "HTTP method the URL is valid for (RESUMABLE starts a resumable upload)")
	signurlCmd.Flags().StringVarP(&signDuration, "duration", "d", "1h", "validity of the URL")
	signurlCmd.Flags().StringVarP(&signContentType, "content-type", "c", "", "content type the request must send")
	signurlCmd.Flags().StringArrayVarP(&signHeaders, "header", "H", nil, `header the request must send ("Name:value")`)
	signurlCmd.Flags().StringVar(&signScheme, "scheme", string(signurl.SchemeV4), "signature scheme (v4 or v2)")
}

func runSignURL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	if cfg.Credentials == "" {
		return errors.New("credentials required for URL signing")
	}

	signer, err := newSigner(cfg)
	if err != nil {
		return err
	}

	method, err := signurl.ParseMethod(signMethod)
	if err != nil {
		return err
	}
	scheme, err := signurl.ParseScheme(cfg.SignURL.Scheme)
	if err != nil {
		return err
	}
	headers, err := parseSignHeaders(signHeaders)
	if err != nil {
		return err
	}

	ids, err := signTargets(cmd, args)
	if err != nil {
		return err
	}

	urls := make([]output.SignedURL, 0, len(ids))
	for _, id := range ids {
		res, err := signer.Sign(id, signurl.Options{
			Method:      method,
			Duration:    cfg.SignURL.Duration,
			ContentType: signContentType,
			Headers:     headers,
			Scheme:      scheme,
		})
		if err != nil {
			return fmt.Errorf("sign %s: %w", id, err)
		}
		urls = append(urls, output.SignedURL{
			Object:  id.String(),
			Method:  res.Method,
			URL:     res.URL,
			Expires: res.Expires,
		})
	}

	return getFormatter().FormatSignedURL(cmd.OutOrStdout(), urls)
}

func newSigner(cfg *config.Config) (*signurl.Signer, error) {
	key, err := oauth.LoadServiceAccountKey(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load service account key: %w", err)
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, gsutil.NewValidationError("endpoint", cfg.Endpoint, err.Error())
	}
	return signurl.NewSigner(key, signurl.WithEndpoint(endpoint))
}

// signTargets parses the URL arguments. Wildcards are expanded against the
// bucket listing, which is the only case that contacts the API.
func signTargets(cmd *cobra.Command, args []string) ([]gsutil.ObjectID, error) {
	var ids []gsutil.ObjectID
	for _, arg := range args {
		id, err := gsutil.ParseURL(arg)
		if err != nil {
			return nil, err
		}
		if !id.HasWildcard() {
			ids = append(ids, id)
			continue
		}

		svc, closeFn, err := newService(cmd.Context())
		if err != nil {
			return nil, err
		}
		expanded, err := expandObjects(cmd.Context(), svc, arg, false)
		closeFn()
		if err != nil {
			return nil, err
		}
		ids = append(ids, expanded...)
	}
	return ids, nil
}

func parseSignHeaders(raw []string) (http.Header, error) {
	headers := make(http.Header, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, gsutil.NewValidationError("header", h, `expected "Name:value"`)
		}
		headers.Add(name, strings.TrimSpace(value))
	}
	return headers, nil
}
