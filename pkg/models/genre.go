package models

// Genre is not a stored entity; it is derived on read by grouping the
// permitted song set on a normalized genre string. Color pairs are generated
// deterministically from the genre name and are cosmetic only.
type Genre struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	LightColorHex   string `json:"lightColorHex"`
	OnLightColorHex string `json:"onLightColorHex"`
	DarkColorHex    string `json:"darkColorHex"`
	OnDarkColorHex  string `json:"onDarkColorHex"`
}
