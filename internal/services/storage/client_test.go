package storage

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"lasagna.jpg":       "lasagna.jpg",
		"my photo (1).png":  "my_photo__1_.png",
		"über-soufflé.jpeg": "_ber-souffl_.jpeg",
		"   ":               "photo",
		"":                  "photo",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectKeyUsesTimestampPrefix(t *testing.T) {
	c := &Client{now: func() time.Time { return time.UnixMilli(1700000000000) }}
	key := c.objectKey("tarte tatin.jpg")
	if key != "recipes/1700000000000_tarte_tatin.jpg" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestPublicURLPrefersConfiguredBase(t *testing.T) {
	c := &Client{publicBaseURL: "https://cdn.example.net", bucket: "recipes", endpoint: "minio.local:9000"}
	if got := c.publicURL("recipes/1_a.jpg"); got != "https://cdn.example.net/recipes/1_a.jpg" {
		t.Fatalf("unexpected url %q", got)
	}

	c.publicBaseURL = ""
	c.useSSL = true
	if got := c.publicURL("recipes/1_a.jpg"); !strings.HasPrefix(got, "https://minio.local:9000/recipes/") {
		t.Fatalf("unexpected fallback url %q", got)
	}
}
