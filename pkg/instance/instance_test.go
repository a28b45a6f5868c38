package instance

import "testing"

func TestIDPrecedence(t *testing.T) {
	t.Setenv("HIJABINA_INSTANCE_ID", "")
	t.Setenv("INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	if got := ID(); got != "local" {
		t.Fatalf("expected local fallback, got %s", got)
	}

	t.Setenv("DYNO", "web.1")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected dyno id, got %s", got)
	}

	t.Setenv("HIJABINA_INSTANCE_ID", "api-7")
	if got := ID(); got != "api-7" {
		t.Fatalf("expected explicit id, got %s", got)
	}
}
