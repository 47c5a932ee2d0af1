package domain

import "testing"

// TestArchitectureByID verifies catalog lookups.
func TestArchitectureByID(t *testing.T) {
	arch, ok := ArchitectureByID("seq2seq_large_16k")
	if !ok {
		t.Fatal("seq2seq_large_16k missing from catalog")
	}
	if arch.MaxSourcePositions != 16384 {
		t.Fatalf("max source = %d, want 16384", arch.MaxSourcePositions)
	}

	if _, ok := ArchitectureByID("unknown_arch"); ok {
		t.Fatal("unexpected catalog hit for unknown architecture")
	}
}

// TestArchitecturesReturnsCopy verifies callers cannot mutate the catalog.
func TestArchitecturesReturnsCopy(t *testing.T) {
	first := Architectures()
	first[0].ID = "mutated"

	if Architectures()[0].ID == "mutated" {
		t.Fatal("catalog mutated through returned slice")
	}
}
