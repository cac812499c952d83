package models

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestComputeExpiry(t *testing.T) {
	created := int64(1700000000)

	tests := []struct {
		name   string
		choice string
		want   int64
	}{
		{
			name:   "one day",
			choice: "1d",
			want:   created + 86400,
		},
		{
			name:   "one month",
			choice: "1m",
			want:   created + 2592000,
		},
		{
			name:   "thirty days alias",
			choice: "30d",
			want:   created + 2592000,
		},
		{
			name:   "never",
			choice: "never",
			want:   0,
		},
		{
			name:   "unknown choice defaults to never",
			choice: "6w",
			want:   0,
		},
		{
			name:   "empty choice defaults to never",
			choice: "",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExpiry(created, tt.choice)
			if got != tt.want {
				t.Errorf("ComputeExpiry(%d, %q) = %d, want %d", created, tt.choice, got, tt.want)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires int64
		now     int64
		want    bool
	}{
		{
			name:    "no expiry never expires",
			expires: 0,
			now:     1 << 40,
			want:    false,
		},
		{
			name:    "before expiry",
			expires: 1000,
			now:     999,
			want:    false,
		},
		{
			name:    "exactly at expiry still valid",
			expires: 1000,
			now:     1000,
			want:    false,
		},
		{
			name:    "one second past expiry",
			expires: 1000,
			now:     1001,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.expires, tt.now); got != tt.want {
				t.Errorf("IsExpired(%d, %d) = %v, want %v", tt.expires, tt.now, got, tt.want)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "short title untouched",
			title: "short",
			want:  "short",
		},
		{
			name:  "long ascii title cut to the cap",
			title: strings.Repeat("a", 200),
			want:  strings.Repeat("a", MaxTitleLen),
		},
		{
			name:  "multibyte title counted in characters not bytes",
			title: strings.Repeat("日", 200),
			want:  strings.Repeat("日", MaxTitleLen),
		},
		{
			name:  "multibyte rune at the cap boundary kept whole",
			title: strings.Repeat("a", MaxTitleLen-1) + "éxxx",
			want:  strings.Repeat("a", MaxTitleLen-1) + "é",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.title)
			if got != tt.want {
				t.Errorf("TruncateTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateTitle(%q) produced invalid UTF-8: %q", tt.title, got)
			}
		})
	}
}

func TestPasteMetaRoundTrip(t *testing.T) {
	p := &Paste{
		ID:        "abcdef012345",
		Title:     "notes",
		Created:   1700000000,
		Expires:   1700086400,
		Encrypted: true,
		Alg:       "AES-GCM",
		BurnAfter: true,
		EditKey:   "d41d8cd98f00b204e9800998ecf8427e",
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var got Paste
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got != *p {
		t.Errorf("meta did not round-trip: got %+v, want %+v", got, *p)
	}
}

func TestEncryptedPayloadJSONKeys(t *testing.T) {
	payload := EncryptedPayload{
		CiphertextB64: "ZHVtbXk=",
		IVB64:         "aXY=",
		Alg:           "AES-GCM",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"ciphertext_b64", "iv_b64", "alg"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected JSON key %q in payload, got %s", key, data)
		}
	}
}
