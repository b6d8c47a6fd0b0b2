package session

import (
	"testing"
)

// FuzzRecordDecode exercises the binary record decoder with arbitrary inputs.
// Goal: no panics, no unexpected nil dereferences, graceful error handling.
func FuzzRecordDecode(f *testing.F) {
	// Seed with a valid encoded record.
	rec := &Record{
		SessionRef: "ref-fuzz",
		OwnerID:    "user1",
		Principal:  []byte("payload"),
		Device: Device{
			IP:        "198.51.100.1",
			UserAgent: "fuzz-agent",
			LoginAt:   1700000000,
		},
		CreatedAt: 1700000000,
		ExpiresAt: 1700003600,
	}
	encoded, err := Encode(rec)
	if err == nil {
		f.Add(encoded)
	}

	// Empty and short inputs.
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{1})
	f.Add([]byte{255, 255, 255})

	// Truncated at various offsets.
	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}
	if len(encoded) > 30 {
		f.Add(encoded[:30])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic. Errors are expected for malformed input.
		r, err := Decode(data)
		if err != nil {
			return
		}

		// If decode succeeded, re-encode must round-trip cleanly.
		reencoded, err := Encode(r)
		if err != nil {
			t.Fatalf("re-encode of decoded record failed: %v", err)
		}
		if len(reencoded) == 0 {
			t.Fatal("re-encode produced empty blob")
		}
	})
}
