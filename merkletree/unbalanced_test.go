package merkletree

import "testing"

func TestUnbalancedAllProofsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 13} {
		leaves := leavesOf(n)
		maxN := 16
		tree, err := NewUnbalanced(leaves, maxN)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		root := tree.Root()
		proofs := tree.AllProofs()

		for i, leaf := range leaves {
			if !VerifyUnbalanced(root, proofs[i], i, leaf, maxN) {
				t.Fatalf("n=%d leaf %d failed to verify", n, i)
			}
		}
	}
}

func TestUnbalancedRejectsTooManyLeaves(t *testing.T) {
	if _, err := NewUnbalanced(leavesOf(5), 4); err != ErrTooManyLeaves {
		t.Fatalf("expected ErrTooManyLeaves, got %v", err)
	}
}

func TestUnbalancedTamperingFails(t *testing.T) {
	leaves := leavesOf(5)
	maxN := 8
	tree, err := NewUnbalanced(leaves, maxN)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	proof, err := tree.Proof(4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyUnbalanced(root, proof, 4, leaves[4], maxN) {
		t.Fatal("expected valid proof to verify")
	}

	badLeaf := leaves[4]
	badLeaf[0] ^= 0xff
	if VerifyUnbalanced(root, proof, 4, badLeaf, maxN) {
		t.Fatal("tampered leaf should not verify")
	}

	if VerifyUnbalanced(root, proof, 4, leaves[4], 4) {
		t.Fatal("wrong maxN should not verify (wrong proof depth)")
	}
}
