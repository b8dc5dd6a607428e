package orderbook

import (
	"math/rand"
	"testing"
)

func TestLevelTreeInsertFindRemove(t *testing.T) {
	tree := newLevelTree()
	lvl := tree.FindOrCreate(100)
	if lvl == nil {
		t.Fatal("FindOrCreate returned nil")
	}
	if got := tree.Level(100); got != lvl {
		t.Error("Level did not return the same PriceLevel")
	}

	tree.FindOrCreate(200)
	if tree.Min().Price != 100 {
		t.Error("expected min=100")
	}
	if tree.Max().Price != 200 {
		t.Error("expected max=200")
	}

	if !tree.Remove(100) {
		t.Error("Remove failed")
	}
	if tree.Level(100) != nil {
		t.Error("expected level 100 to be gone")
	}
}

func TestLevelTreeRemoveMissing(t *testing.T) {
	tree := newLevelTree()
	if tree.Remove(123) {
		t.Error("expected false when removing non-existent level")
	}
}

func TestLevelTreeEmptyMinMax(t *testing.T) {
	tree := newLevelTree()
	if tree.Min() != nil || tree.Max() != nil {
		t.Error("expected nil min/max on empty tree")
	}
}

func TestLevelTreeFindOrCreateDuplicate(t *testing.T) {
	tree := newLevelTree()
	a := tree.FindOrCreate(150)
	b := tree.FindOrCreate(150)
	if a != b {
		t.Error("FindOrCreate should return the same level for a duplicate price")
	}
	if tree.Size() != 1 {
		t.Errorf("size = %d, want 1", tree.Size())
	}
}

func TestLevelTreeOrderedWalk(t *testing.T) {
	tree := newLevelTree()
	for _, px := range []Price{500, 100, 300, 400, 200} {
		tree.FindOrCreate(px)
	}

	var asc []Price
	tree.Ascend(func(lvl *PriceLevel) bool {
		asc = append(asc, lvl.Price)
		return true
	})
	want := []Price{100, 200, 300, 400, 500}
	for i := range want {
		if asc[i] != want[i] {
			t.Fatalf("ascending walk = %v, want %v", asc, want)
		}
	}

	var desc []Price
	tree.Descend(func(lvl *PriceLevel) bool {
		desc = append(desc, lvl.Price)
		return len(desc) < 2 // early stop
	})
	if len(desc) != 2 || desc[0] != 500 || desc[1] != 400 {
		t.Errorf("descending walk with early stop = %v", desc)
	}
}

func TestLevelTreeHeavyInsertDelete(t *testing.T) {
	tree := newLevelTree()
	for px := Price(1); px <= 1000; px++ {
		tree.FindOrCreate(px)
	}
	if tree.Size() != 1000 {
		t.Fatalf("size = %d, want 1000", tree.Size())
	}
	for px := Price(2); px <= 1000; px += 2 {
		if !tree.Remove(px) {
			t.Fatalf("remove %d failed", px)
		}
	}
	if tree.Size() != 500 {
		t.Fatalf("size after removes = %d, want 500", tree.Size())
	}
	if tree.Min().Price != 1 || tree.Max().Price != 999 {
		t.Errorf("min=%v max=%v", tree.Min().Price, tree.Max().Price)
	}
}

// Random insert/remove churn against a map reference. Deletion rebalancing
// only exercises some of its branches under adversarial shapes, so fixed
// patterns are not enough; a rebalance bug here surfaces as a nil sentinel
// dereference or a broken walk.
func TestLevelTreeRandomChurn(t *testing.T) {
	const (
		seeds    = 50
		ops      = 5000
		maxPrice = 200
	)

	for seed := int64(0); seed < seeds; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tree := newLevelTree()
		ref := make(map[Price]bool)

		for op := 0; op < ops; op++ {
			px := Price(rng.Intn(maxPrice) + 1)
			if rng.Intn(2) == 0 {
				tree.FindOrCreate(px)
				ref[px] = true
			} else {
				removed := tree.Remove(px)
				if removed != ref[px] {
					t.Fatalf("seed %d op %d: Remove(%d) = %v, ref has %v", seed, op, px, removed, ref[px])
				}
				delete(ref, px)
			}

			if tree.Size() != len(ref) {
				t.Fatalf("seed %d op %d: size = %d, want %d", seed, op, tree.Size(), len(ref))
			}
			var walked []Price
			tree.Ascend(func(lvl *PriceLevel) bool {
				walked = append(walked, lvl.Price)
				return true
			})
			if len(walked) != len(ref) {
				t.Fatalf("seed %d op %d: walk visited %d levels, want %d", seed, op, len(walked), len(ref))
			}
			for i, px := range walked {
				if !ref[px] {
					t.Fatalf("seed %d op %d: walk returned missing price %v", seed, op, px)
				}
				if i > 0 && walked[i-1] >= px {
					t.Fatalf("seed %d op %d: walk out of order at %d: %v", seed, op, i, walked)
				}
			}
			if len(walked) > 0 {
				if tree.Min().Price != walked[0] {
					t.Fatalf("seed %d op %d: min = %v, want %v", seed, op, tree.Min().Price, walked[0])
				}
				if tree.Max().Price != walked[len(walked)-1] {
					t.Fatalf("seed %d op %d: max = %v, want %v", seed, op, tree.Max().Price, walked[len(walked)-1])
				}
			}
		}
	}
}
