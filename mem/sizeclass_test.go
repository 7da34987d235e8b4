package mem

import "testing"

// Test_ClassFor_Boundaries tests the smallest-sufficient-class property at
// every boundary.
func Test_ClassFor_Boundaries(t *testing.T) {
	if got := classFor(0); got != 0 {
		t.Fatalf("classFor(0) = %d, expected 0", got)
	}
	if got := classFor(1); got != 0 {
		t.Fatalf("classFor(1) = %d, expected 0", got)
	}
	for i, size := range classSizes {
		if got := classFor(size); got != i {
			t.Fatalf("classFor(%d) = %d, expected %d", size, got, i)
		}
		if i+1 < numClasses {
			if got := classFor(size + 1); got != i+1 {
				t.Fatalf("classFor(%d) = %d, expected %d", size+1, got, i+1)
			}
		}
	}
}

// Test_SizeClasses_Snapshot tests that the exported table mirrors the
// internal one and hands out an independent copy.
func Test_SizeClasses_Snapshot(t *testing.T) {
	classes := SizeClasses()
	if len(classes) != numClasses {
		t.Fatalf("SizeClasses() returned %d entries, expected %d", len(classes), numClasses)
	}
	for i, size := range classes {
		if size != classSizes[i] {
			t.Fatalf("SizeClasses()[%d] = %d, expected %d", i, size, classSizes[i])
		}
	}
	classes[0] = 7
	if classSizes[0] == 7 {
		t.Fatal("mutating the snapshot reached the internal table")
	}
	if BlockOverhead != headerReserve {
		t.Fatalf("BlockOverhead = %d, expected %d", BlockOverhead, headerReserve)
	}
}

// Test_ClassSizes_Table tests the structural invariants the carve path
// relies on.
func Test_ClassSizes_Table(t *testing.T) {
	prev := uintptr(0)
	for i, size := range classSizes {
		if size%blockAlign != 0 {
			t.Fatalf("class %d capacity %d not a multiple of %d", i, size, blockAlign)
		}
		if size <= prev {
			t.Fatalf("class %d capacity %d not ascending", i, size)
		}
		prev = size
	}
	if classSizes[numClasses-1] != maxClassSize {
		t.Fatalf("largest class %d != maxClassSize %d", classSizes[numClasses-1], maxClassSize)
	}
}
