package evo

import (
	"math/rand/v2"
	"testing"

	"treasurehunt/internal/vm"
)

func randomProgram(rng *rand.Rand) vm.Program {
	var p vm.Program
	for i := range p {
		p[i] = byte(rng.IntN(256))
	}
	return p
}

func TestReproduceIdenticalParentsWithoutMutationIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 10))
	for i := 0; i < 50; i++ {
		parent := randomProgram(rng)
		if child := Reproduce(parent, parent, 0, rng); child != parent {
			t.Fatalf("child differs from identical parents:\nchild=%v\nparent=%v", child, parent)
		}
	}
}

func TestReproduceBitsComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	for i := 0; i < 50; i++ {
		a := randomProgram(rng)
		b := randomProgram(rng)
		child := Reproduce(a, b, 0, rng)
		for j := range child {
			// Where the parents agree the child must agree too.
			agree := ^(a[j] ^ b[j])
			if (child[j]^a[j])&agree != 0 {
				t.Fatalf("gene %d: child=%08b a=%08b b=%08b", j, child[j], a[j], b[j])
			}
		}
	}
}

func TestReproduceMixesParents(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 12))
	var zeros, ones vm.Program
	for i := range ones {
		ones[i] = 0xFF
	}
	child := Reproduce(zeros, ones, 0, rng)
	set := 0
	for _, gene := range child {
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if gene&mask != 0 {
				set++
			}
		}
	}
	// 512 fair coin flips.
	if set < 200 || set > 312 {
		t.Fatalf("expected roughly half of the bits from each parent, got %d/512", set)
	}
}

func TestReproduceFullMutationInvertsIdenticalParents(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 13))
	parent := randomProgram(rng)
	child := Reproduce(parent, parent, 1, rng)
	for i := range child {
		if child[i] != ^parent[i] {
			t.Fatalf("gene %d: got=%08b want=%08b", i, child[i], ^parent[i])
		}
	}
}

func TestReproduceDoesNotTouchParents(t *testing.T) {
	rng := rand.New(rand.NewPCG(14, 14))
	a := randomProgram(rng)
	b := randomProgram(rng)
	aCopy, bCopy := a, b
	_ = Reproduce(a, b, 0.3, rng)
	if a != aCopy || b != bCopy {
		t.Fatal("reproduce modified a parent")
	}
}

func TestReproduceDeterministicPerSeed(t *testing.T) {
	a := randomProgram(rand.New(rand.NewPCG(15, 15)))
	b := randomProgram(rand.New(rand.NewPCG(16, 16)))
	first := Reproduce(a, b, 0.05, rand.New(rand.NewPCG(17, 17)))
	second := Reproduce(a, b, 0.05, rand.New(rand.NewPCG(17, 17)))
	if first != second {
		t.Fatal("same seed produced different children")
	}
}
