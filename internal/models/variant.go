package models

// Variant is a pokemontcg.io tcgplayer price key identifying a print/finish
type Variant string

const (
	VariantHolofoil           Variant = "holofoil"
	VariantReverseHolofoil    Variant = "reverseHolofoil"
	VariantNormal             Variant = "normal"
	VariantUnlimited          Variant = "unlimited"
	Variant1stEdition         Variant = "1stEdition"
	VariantUnlimitedHolofoil  Variant = "unlimitedHolofoil"
	Variant1stEditionHolofoil Variant = "1stEditionHolofoil"
)

// PricePrecedence is the order in which variant market prices are consulted
// when a single current price is needed. First present wins.
func PricePrecedence() []Variant {
	return []Variant{
		VariantHolofoil,
		VariantReverseHolofoil,
		VariantNormal,
		VariantUnlimited,
		Variant1stEdition,
	}
}

// IsKnown returns true for variant keys the catalog is documented to return
func (v Variant) IsKnown() bool {
	switch v {
	case VariantHolofoil, VariantReverseHolofoil, VariantNormal, VariantUnlimited,
		Variant1stEdition, VariantUnlimitedHolofoil, Variant1stEditionHolofoil:
		return true
	}
	return false
}
