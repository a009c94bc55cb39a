package persistence

import (
	"errors"
	"testing"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestEncodeDecodeEnvelope(t *testing.T) {
	data, err := EncodeCollection([]record{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}})
	if err != nil {
		t.Fatalf("EncodeCollection: %v", err)
	}

	got, version, err := DecodeCollection[record](data)
	if err != nil {
		t.Fatalf("DecodeCollection: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("version = %d, want %d", version, SchemaVersion)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("records = %+v, want a then b", got)
	}
}

func TestEncodeNilWritesEmptyArray(t *testing.T) {
	data, err := EncodeCollection[record](nil)
	if err != nil {
		t.Fatalf("EncodeCollection: %v", err)
	}
	if want := `{"version":1,"records":[]}`; string(data) != want {
		t.Errorf("payload = %s, want %s", data, want)
	}
}

func TestDecodeLegacyArray(t *testing.T) {
	got, version, err := DecodeCollection[record]([]byte(` [{"id":"x","name":"legacy"}]`))
	if err != nil {
		t.Fatalf("DecodeCollection: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0 for a bare array", version)
	}
	if len(got) != 1 || got[0].Name != "legacy" {
		t.Errorf("records = %+v", got)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "   ",
		"garbage":   "{not json",
		"bad array": "[1, 2",
		"future":    `{"version":99,"records":[]}`,
		"zero":      `{"version":0,"records":[]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := DecodeCollection[record]([]byte(payload)); err == nil {
				t.Fatalf("DecodeCollection(%q) succeeded, want error", payload)
			}
		})
	}

	_, _, err := DecodeCollection[record]([]byte(`{"version":2,"records":[]}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
	if _, _, err := DecodeCollection[record]([]byte(`{"version":0,"records":[]}`)); errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("version 0 envelope reported as newer schema: %v", err)
	}
}
