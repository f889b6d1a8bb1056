package services

import (
	"testing"
)

func TestEncodeImportErrors(t *testing.T) {
	raw, err := encodeImportErrors([]string{"Error processing A B: boom"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != `{"errors":["Error processing A B: boom"]}` {
		t.Fatalf("unexpected error_details %v", raw)
	}

	raw, err = encodeImportErrors(nil)
	if err != nil || raw != nil {
		t.Fatalf("expected NULL for a clean import, got %v %v", raw, err)
	}
}

func TestDecodeImportErrors(t *testing.T) {
	details, err := decodeImportErrors(`{"errors":["Error processing A B: boom","Error processing C D: gone"]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(details) != 2 || details[1] != "Error processing C D: gone" {
		t.Fatalf("unexpected details %v", details)
	}

	details, err = decodeImportErrors("")
	if err != nil || details == nil || len(details) != 0 {
		t.Fatalf("expected empty list for NULL details, got %v %v", details, err)
	}

	details, err = decodeImportErrors(`["bare array"]`)
	if err == nil {
		t.Fatalf("expected error for a bare array")
	}
	if details == nil || len(details) != 0 {
		t.Fatalf("malformed details should decode to an empty list, got %v", details)
	}
}
