package logger

import "testing"

func TestSanitizeValue(t *testing.T) {
	cases := []struct {
		key  string
		val  interface{}
		want interface{}
	}{
		{key: "reflection_text", val: "me sentí tranquilo", want: "[REDACTED]"},
		{key: "authorization", val: "Bearer abc", want: "[REDACTED]"},
		{key: "content_id", val: "video-1", want: "video-1"},
		{key: "skip_count", val: 3, want: 3},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, tc.val); got != tc.want {
			t.Fatalf("sanitizeValue(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestSanitizeValue_HashesUserIDs(t *testing.T) {
	got, ok := sanitizeValue("user_id", "5f0c7a1e-0000-0000-0000-000000000001").(string)
	if !ok {
		t.Fatalf("expected string hash")
	}
	if len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("unexpected hash format %q", got)
	}
	if again := sanitizeValue("user_id", "5f0c7a1e-0000-0000-0000-000000000001"); again != got {
		t.Fatalf("hash not stable: %v vs %v", again, got)
	}
}
