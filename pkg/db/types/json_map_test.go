package dbtypes

import "testing"

func TestJSONMapScanVariants(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte(`{"image":"a.jpg","category":"pashmina"}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if m["image"] != "a.jpg" || m["category"] != "pashmina" {
		t.Fatalf("unexpected map %v", m)
	}

	if err := m.Scan(nil); err != nil || len(m) != 0 {
		t.Fatalf("expected empty map for nil, got %v %v", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Fatal("expected unsupported type to fail")
	}
}

func TestJSONMapValueOfNilIsEmptyObject(t *testing.T) {
	var m JSONMap
	v, err := m.Value()
	if err != nil || v != "{}" {
		t.Fatalf("expected {}, got %v %v", v, err)
	}
}

func TestJSONMapCloneIsIndependent(t *testing.T) {
	src := JSONMap{"color": "sage"}
	clone := src.Clone()
	clone["color"] = "navy"
	if src["color"] != "sage" {
		t.Fatal("clone shares storage with source")
	}
}
