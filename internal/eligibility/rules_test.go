package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

var catalog = map[id.ProductID]domain.ProductCatalogEntry{
	"cvx-01": {ID: "cvx-01", DisplayName: "Covex", Manufacturer: "Acme Bio", RequiredDoses: 2, Available: true},
	"cvx-02": {ID: "cvx-02", DisplayName: "Monovax", Manufacturer: "Helix", RequiredDoses: 1, Available: true},
	"cvx-03": {ID: "cvx-03", DisplayName: "Trivalent", Manufacturer: "Helix", RequiredDoses: 3, Available: true},
}

func lookup(pid id.ProductID) (domain.ProductCatalogEntry, bool) {
	entry, ok := catalog[pid]
	return entry, ok
}

func dose(seq int, state domain.DoseState, product id.ProductID) domain.DoseEvent {
	return domain.DoseEvent{
		ID:        id.DoseEventID("d" + string(rune('0'+seq))),
		SubjectID: "s1",
		ProductID: product,
		Sequence:  seq,
		State:     state,
	}
}

func TestEvaluate_NoCompletedDoses(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		outcome := Evaluate(nil, lookup)
		require.False(t, outcome.Eligible)
		assert.Equal(t, ReasonNoCompletedDoses, outcome.Rejection.Reason)
	})

	t.Run("only scheduled and cancelled doses", func(t *testing.T) {
		outcome := Evaluate([]domain.DoseEvent{
			dose(1, domain.DoseScheduled, "cvx-01"),
			dose(2, domain.DoseCancelled, "cvx-01"),
		}, lookup)
		require.False(t, outcome.Eligible)
		assert.Equal(t, ReasonNoCompletedDoses, outcome.Rejection.Reason)
	})
}

func TestEvaluate_InsufficientDoses(t *testing.T) {
	// One completed dose against a two-dose product.
	outcome := Evaluate([]domain.DoseEvent{
		dose(1, domain.DoseCompleted, "cvx-01"),
		dose(2, domain.DoseScheduled, "cvx-01"),
	}, lookup)

	require.False(t, outcome.Eligible)
	assert.Equal(t, ReasonInsufficientDoses, outcome.Rejection.Reason)
	assert.Equal(t, 1, outcome.Rejection.Have)
	assert.Equal(t, 2, outcome.Rejection.Need)
}

func TestEvaluate_ExactThreshold(t *testing.T) {
	outcome := Evaluate([]domain.DoseEvent{
		dose(1, domain.DoseCompleted, "cvx-01"),
		dose(2, domain.DoseCompleted, "cvx-01"),
	}, lookup)

	require.True(t, outcome.Eligible)
	assert.Equal(t, "Covex", outcome.Set.Product.DisplayName)
	require.Len(t, outcome.Set.Doses, 2)
	assert.Equal(t, 1, outcome.Set.Doses[0].Sequence)
	assert.Equal(t, 2, outcome.Set.Doses[1].Sequence)
}

func TestEvaluate_ExcessDosesTruncated(t *testing.T) {
	// A booster beyond the threshold must not appear in the certified set.
	outcome := Evaluate([]domain.DoseEvent{
		dose(3, domain.DoseCompleted, "cvx-01"),
		dose(1, domain.DoseCompleted, "cvx-01"),
		dose(2, domain.DoseCompleted, "cvx-01"),
	}, lookup)

	require.True(t, outcome.Eligible)
	require.Len(t, outcome.Set.Doses, 2)
	assert.Equal(t, 1, outcome.Set.Doses[0].Sequence)
	assert.Equal(t, 2, outcome.Set.Doses[1].Sequence)
}

func TestEvaluate_CanonicalProductIsFirstCompleted(t *testing.T) {
	// The first completed event in submission order picks the product, even
	// when later doses reference something else.
	outcome := Evaluate([]domain.DoseEvent{
		dose(1, domain.DoseCancelled, "cvx-03"),
		dose(1, domain.DoseCompleted, "cvx-02"),
		dose(2, domain.DoseCompleted, "cvx-01"),
	}, lookup)

	require.True(t, outcome.Eligible)
	assert.Equal(t, id.ProductID("cvx-02"), outcome.Set.Product.ID)
	require.Len(t, outcome.Set.Doses, 1)
}

func TestEvaluate_UnknownProductFallsBack(t *testing.T) {
	t.Run("two completed doses meet the default threshold", func(t *testing.T) {
		outcome := Evaluate([]domain.DoseEvent{
			dose(1, domain.DoseCompleted, "unknown"),
			dose(2, domain.DoseCompleted, "unknown"),
		}, lookup)

		require.True(t, outcome.Eligible)
		assert.Equal(t, DefaultRequiredDoses, outcome.Set.Product.RequiredDoses)
		assert.Len(t, outcome.Set.Doses, DefaultRequiredDoses)
	})

	t.Run("one completed dose misses the default threshold", func(t *testing.T) {
		outcome := Evaluate([]domain.DoseEvent{
			dose(1, domain.DoseCompleted, "unknown"),
		}, lookup)

		require.False(t, outcome.Eligible)
		assert.Equal(t, ReasonInsufficientDoses, outcome.Rejection.Reason)
		assert.Equal(t, 1, outcome.Rejection.Have)
		assert.Equal(t, DefaultRequiredDoses, outcome.Rejection.Need)
	})

	t.Run("nil lookup behaves like an empty catalog", func(t *testing.T) {
		outcome := Evaluate([]domain.DoseEvent{
			dose(1, domain.DoseCompleted, "cvx-01"),
			dose(2, domain.DoseCompleted, "cvx-01"),
		}, nil)

		require.True(t, outcome.Eligible)
		assert.Equal(t, DefaultRequiredDoses, outcome.Set.Product.RequiredDoses)
	})
}

func TestEvaluate_DuplicateSequenceNumbers(t *testing.T) {
	// Duplicate sequence numbers must not crash; the stable sort keeps the
	// earlier-submitted duplicate when truncation drops one.
	first := dose(1, domain.DoseCompleted, "cvx-01")
	first.ID = "first-dup"
	second := dose(1, domain.DoseCompleted, "cvx-01")
	second.ID = "second-dup"

	outcome := Evaluate([]domain.DoseEvent{
		first,
		second,
		dose(2, domain.DoseCompleted, "cvx-01"),
	}, lookup)

	require.True(t, outcome.Eligible)
	require.Len(t, outcome.Set.Doses, 2)
	assert.Equal(t, id.DoseEventID("first-dup"), outcome.Set.Doses[0].ID)
	assert.Equal(t, id.DoseEventID("second-dup"), outcome.Set.Doses[1].ID)
}

func TestEvaluate_InputOrderNotMutated(t *testing.T) {
	input := []domain.DoseEvent{
		dose(2, domain.DoseCompleted, "cvx-01"),
		dose(1, domain.DoseCompleted, "cvx-01"),
	}
	_ = Evaluate(input, lookup)

	assert.Equal(t, 2, input[0].Sequence, "caller's slice must stay untouched")
	assert.Equal(t, 1, input[1].Sequence)
}
