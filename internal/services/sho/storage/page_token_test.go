package storage

import (
	"testing"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
)

func TestPageTokenRoundTrip(t *testing.T) {
	token, err := EncodePageToken(42, `kind = "moved"`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	seq, err := DecodePageToken(token, ` kind = "moved" `)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if seq != 42 {
		t.Fatalf("seq = %d, want 42", seq)
	}
}

func TestDecodePageTokenRejects(t *testing.T) {
	valid, _ := EncodePageToken(3, "seat = 1")
	tests := []struct {
		name   string
		token  string
		filter string
	}{
		{name: "not base64", token: "!!!", filter: ""},
		{name: "not json", token: "bm90LWpzb24", filter: ""},
		{name: "filter changed", token: valid, filter: "seat = 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePageToken(tt.token, tt.filter)
			if !apperrors.HasCode(err, apperrors.CodeJournalInvalidPageToken) {
				t.Fatalf("err = %v, want JOURNAL_INVALID_PAGE_TOKEN", err)
			}
		})
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	seq, err := DecodePageToken("", "anything")
	if err != nil || seq != 0 {
		t.Fatalf("seq=%d err=%v", seq, err)
	}
}

func TestClampPageSize(t *testing.T) {
	tests := map[int]int{0: DefaultPageSize, -4: DefaultPageSize, 10: 10, MaxPageSize + 1: MaxPageSize}
	for in, want := range tests {
		if got := ClampPageSize(in); got != want {
			t.Fatalf("clamp(%d) = %d, want %d", in, got, want)
		}
	}
}
