package s3

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in     string
		ssl    bool
		host   string
		secure bool
	}{
		{"minio.local:9000", false, "minio.local:9000", false},
		{"http://minio.local:9000", true, "minio.local:9000", false},
		{"https://storage.googleapis.com", false, "storage.googleapis.com", true},
		{"", true, "", true},
	}
	for _, c := range cases {
		h, sec := normalizeEndpoint(c.in, c.ssl)
		if h != c.host || sec != c.secure {
			t.Fatalf("normalizeEndpoint(%q,%v)=%q,%v want %q,%v", c.in, c.ssl, h, sec, c.host, c.secure)
		}
	}
}
