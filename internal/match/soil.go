package match

import "strings"

// partialSoilScore is the compatibility credit for soils that can be
// substituted with conditioning but are not the same class.
const partialSoilScore = 0.6

// compatibleSoils maps a soil class to the classes it can substitute for
// at reduced score. Pairs absent from the map (and not equal) are
// incompatible and never matched.
var compatibleSoils = map[string][]string{
	"clay":    {"silt", "fill"},
	"silt":    {"clay", "loam"},
	"sand":    {"gravel", "fill"},
	"gravel":  {"sand", "rock"},
	"loam":    {"topsoil", "silt"},
	"topsoil": {"loam"},
	"rock":    {"gravel", "fill"},
	"fill":    {"clay", "sand", "rock"},
}

func soilScore(exportSoil, importSoil string) float64 {
	exportSoil = normalizeSoil(exportSoil)
	importSoil = normalizeSoil(importSoil)
	if exportSoil == "" || importSoil == "" {
		return 0
	}
	if exportSoil == importSoil {
		return 1
	}
	for _, compatible := range compatibleSoils[exportSoil] {
		if compatible == importSoil {
			return partialSoilScore
		}
	}
	return 0
}

// treatedReuseAllowed reports whether a contaminated/clean pairing is
// permitted for this soil by policy. Both soils must be on the treated
// reuse list.
func treatedReuseAllowed(exportSoil, importSoil string, allowed []string) bool {
	return soilAllowed(exportSoil, allowed) && soilAllowed(importSoil, allowed)
}

func soilAllowed(soil string, allowed []string) bool {
	soil = normalizeSoil(soil)
	for _, candidate := range allowed {
		if normalizeSoil(candidate) == soil {
			return true
		}
	}
	return false
}

func normalizeSoil(soil string) string {
	return strings.ToLower(strings.TrimSpace(soil))
}
