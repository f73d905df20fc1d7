package spine

import (
	"fmt"
	"sort"
	"strings"
)

// Joint compliance presets (m/N), from stiffest to softest
const (
	CONCRETE_COMPLIANCE = 0.04e-9
	WOOD_COMPLIANCE     = 0.16e-9
	TENDON_COMPLIANCE   = 0.2e-7
	LEATHER_COMPLIANCE  = 14e-8
	RUBBER_COMPLIANCE   = 1e-6
	MUSCLE_COMPLIANCE   = 0.2e-3
	FAT_COMPLIANCE      = 1e-3
)

const STIFF_COMPLIANCE = CONCRETE_COMPLIANCE

var compliancePresets = map[string]float64{
	"stiff":    STIFF_COMPLIANCE,
	"concrete": CONCRETE_COMPLIANCE,
	"wood":     WOOD_COMPLIANCE,
	"leather":  LEATHER_COMPLIANCE,
	"tendon":   TENDON_COMPLIANCE,
	"rubber":   RUBBER_COMPLIANCE,
	"muscle":   MUSCLE_COMPLIANCE,
	"fat":      FAT_COMPLIANCE,
}

// CompliancePreset resolves a preset name such as "tendon"
func CompliancePreset(name string) (float64, error) {
	c, ok := compliancePresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown compliance preset %q (want one of %s)", name, strings.Join(CompliancePresetNames(), ", "))
	}

	return c, nil
}

// CompliancePresetNames lists the known presets, sorted
func CompliancePresetNames() []string {
	names := make([]string, 0, len(compliancePresets))
	for name := range compliancePresets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
