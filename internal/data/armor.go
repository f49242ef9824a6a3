package data

import "strings"

// ArmorType represents the armor categories that change how armor class is
// computed.
type ArmorType int

const (
	ArmorNone ArmorType = iota
	ArmorLight
	ArmorMedium
	ArmorHeavy
	ArmorUnknown
)

var armorMap = map[string]ArmorType{
	"":       ArmorNone,
	"none":   ArmorNone,
	"light":  ArmorLight,
	"medium": ArmorMedium,
	"heavy":  ArmorHeavy,
}

// ParseArmorType converts a string into an ArmorType.
func ParseArmorType(s string) ArmorType {
	if val, ok := armorMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return val
	}
	return ArmorUnknown
}

func (a ArmorType) String() string {
	switch a {
	case ArmorNone:
		return "none"
	case ArmorLight:
		return "light"
	case ArmorMedium:
		return "medium"
	case ArmorHeavy:
		return "heavy"
	}
	return "unknown"
}
