package dictionary

import "testing"

func TestLoadRejectsEmptyLists(t *testing.T) {
	if _, err := Load(nil, []string{"cat"}); err == nil {
		t.Fatal("expected error for empty short list")
	}
	if _, err := Load([]string{"cat"}, nil); err == nil {
		t.Fatal("expected error for empty full list")
	}
}

func TestSelect(t *testing.T) {
	d, err := Load([]string{"cat"}, []string{"cat", "banana"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Select(false); got != d.Short {
		t.Error("Select(false) should return Short index")
	}
	if got := d.Select(true); got != d.Full {
		t.Error("Select(true) should return Full index")
	}
	if d.Short.Count() != 1 {
		t.Errorf("Short.Count() = %d, want 1", d.Short.Count())
	}
	if d.Full.Count() != 2 {
		t.Errorf("Full.Count() = %d, want 2", d.Full.Count())
	}
}

func TestLoadDefaultUsesEmbeddedAssets(t *testing.T) {
	d, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if d.Short.Count() == 0 {
		t.Fatal("embedded short dictionary should not be empty")
	}
	if d.Full.Count() == 0 {
		t.Fatal("embedded full dictionary should not be empty")
	}
	if d.Full.Count() < d.Short.Count() {
		t.Fatal("full dictionary should be at least as large as short")
	}
}
