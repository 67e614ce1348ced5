package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint([]int64{1, 2, 3}, "what is the policy?")
	b := Fingerprint([]int64{1, 2, 3}, "what is the policy?")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintOrderInsensitive(t *testing.T) {
	a := Fingerprint([]int64{3, 1, 2}, "question")
	b := Fingerprint([]int64{1, 2, 3}, "question")
	assert.Equal(t, a, b)
}

func TestFingerprintDistinguishesSelections(t *testing.T) {
	a := Fingerprint([]int64{1, 2}, "question")
	b := Fingerprint([]int64{1, 3}, "question")
	assert.NotEqual(t, a, b)
}

func TestFingerprintDistinguishesText(t *testing.T) {
	a := Fingerprint([]int64{1}, "first question")
	b := Fingerprint([]int64{1}, "second question")
	assert.NotEqual(t, a, b)
}

func TestFingerprintEmptySelection(t *testing.T) {
	a := Fingerprint(nil, "question")
	b := Fingerprint([]int64{}, "question")
	assert.Equal(t, a, b)
}

func TestFingerprintDoesNotMutateInput(t *testing.T) {
	ids := []int64{3, 1, 2}
	Fingerprint(ids, "question")
	assert.Equal(t, []int64{3, 1, 2}, ids)
}
