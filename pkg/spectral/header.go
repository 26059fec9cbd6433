package spectral

import (
	"log"

	"fptools/internal/models"
)

// stepKeys hold the channel width and are divided by the oversample factor
var stepKeys = []string{models.KeyCDELT3, models.KeyC3_3, models.KeyPHMSAMP}

// shiftReference adds delta to CRPIX3. It reports false when the key is
// absent or not numeric.
func shiftReference(hdr *models.Header, delta float64) bool {
	v, err := hdr.Float(models.KeyCRPIX3)
	if err != nil {
		log.Printf(" %v", err)
		return false
	}
	hdr.Set(models.KeyCRPIX3, v+delta)
	return true
}

// FixOversampleHeader rescales the spectral calibration of hdr for a cube
// oversampled by factor. Step keys are divided and CRPIX3 is multiplied.
// Keys that are absent are skipped and returned.
func FixOversampleHeader(hdr *models.Header, factor int) []string {
	var missing []string
	f := float64(factor)

	for _, key := range stepKeys {
		v, err := hdr.Float(key)
		if err != nil {
			missing = append(missing, key)
			continue
		}
		hdr.Set(key, v/f)
	}

	if v, err := hdr.Float(models.KeyCRPIX3); err != nil {
		missing = append(missing, models.KeyCRPIX3)
	} else {
		hdr.Set(models.KeyCRPIX3, v*f)
	}

	return missing
}
