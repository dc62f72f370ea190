package gsutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/gsutil"
)

func TestIsValidBucketName(t *testing.T) {
	tt := []struct {
		Name   string
		Bucket string
		Want   bool
	}{
		{Name: "simple", Bucket: "my-bucket", Want: true},
		{Name: "digits and underscore", Bucket: "b_123", Want: true},
		{Name: "dotted", Bucket: "example.com.assets", Want: true},
		{Name: "too short", Bucket: "ab", Want: false},
		{Name: "too long segment", Bucket: strings.Repeat("a", 64), Want: false},
		{Name: "long dotted", Bucket: strings.Repeat("a", 60) + "." + strings.Repeat("b", 60), Want: true},
		{Name: "uppercase", Bucket: "MyBucket", Want: false},
		{Name: "starts with dash", Bucket: "-bucket", Want: false},
		{Name: "ends with dot", Bucket: "bucket.", Want: false},
		{Name: "empty segment", Bucket: "a..b", Want: false},
		{Name: "ip address", Bucket: "192.168.5.4", Want: false},
		{Name: "goog prefix", Bucket: "goog-bucket", Want: false},
		{Name: "contains google", Bucket: "my-google-bucket", Want: false},
		{Name: "space", Bucket: "my bucket", Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, gsutil.IsValidBucketName(tc.Bucket))
		})
	}
}

func TestIsValidObjectName(t *testing.T) {
	invalidUTF8 := string([]byte{'a', 0xff, 'b'})

	tt := []struct {
		Name   string
		Object string
		Want   bool
	}{
		{Name: "simple", Object: "file.txt", Want: true},
		{Name: "nested", Object: "a/b/c.txt", Want: true},
		{Name: "spaces allowed", Object: "my file.txt", Want: true},
		{Name: "trailing slash allowed", Object: "dir/", Want: true},
		{Name: "empty", Object: "", Want: false},
		{Name: "dot", Object: ".", Want: false},
		{Name: "dot dot", Object: "..", Want: false},
		{Name: "newline", Object: "a\nb", Want: false},
		{Name: "carriage return", Object: "a\rb", Want: false},
		{Name: "invalid utf8", Object: invalidUTF8, Want: false},
		{Name: "acme challenge", Object: ".well-known/acme-challenge/x", Want: false},
		{Name: "max length", Object: strings.Repeat("a", 1024), Want: true},
		{Name: "over max length", Object: strings.Repeat("a", 1025), Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, gsutil.IsValidObjectName(tc.Object))
		})
	}
}
