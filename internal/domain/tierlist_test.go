package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTiers(t *testing.T) {
	tiers := DefaultTiers()

	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, tier.Name)
		assert.NotNil(t, tier.Games)
	}
	assert.Equal(t, []string{"S", "A", "B", "C", "D", "F"}, names)
	assert.Equal(t, "#ff7675", tiers[0].Color)
	assert.Equal(t, "#636e72", tiers[5].Color)
}

func TestTierList_Visibility(t *testing.T) {
	private := &TierList{UserID: "user-1", IsPublic: false}
	public := &TierList{UserID: "user-1", IsPublic: true}

	assert.True(t, private.VisibleTo("user-1"))
	assert.False(t, private.VisibleTo("user-2"))
	assert.False(t, private.VisibleTo(""))
	assert.True(t, public.VisibleTo(""))
	assert.False(t, public.IsOwnedBy(""))
}

func TestTierList_GameCountAndNormalize(t *testing.T) {
	list := &TierList{Tiers: NormalizeTiers([]Tier{
		{Name: "S", Games: []TierGame{{GameID: "440"}, {GameID: "570"}}},
		{Name: "A"},
	})}

	assert.Equal(t, 2, list.GameCount())
	assert.NotNil(t, list.Tiers[1].Games)
}

func TestFavorites_ContainsRemove(t *testing.T) {
	favs := &Favorites{Items: []Favorite{{GameID: "440"}, {GameID: "570"}}}

	assert.True(t, favs.Contains("570"))
	assert.True(t, favs.Remove("570"))
	assert.False(t, favs.Contains("570"))
	assert.False(t, favs.Remove("570"))
	assert.Len(t, favs.Items, 1)
}
