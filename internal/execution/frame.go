package execution

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	plandomain "gemini-observatory/backend/internal/plan/domain"
)

const (
	lowQualityPayload  = 4 << 10
	fineQualityPayload = 16 << 10
)

// Frame is the synthesised output of one exposure.
type Frame struct {
	Data        []byte
	Ext         string
	ContentType string
	Checksum    string
}

// Format returns the file extension and content type for a plan file type.
func Format(t plandomain.FileType) (ext, contentType string) {
	switch t {
	case plandomain.FilePNG:
		return "png", "image/png"
	case plandomain.FileJPEG:
		return "jpg", "image/jpeg"
	default:
		return "raw", "application/octet-stream"
	}
}

// Synthesize builds frame seq of a program. The same program, plan and sequence always yield the same bytes.
func Synthesize(programID string, plan *plandomain.SciencePlan, seq int) Frame {
	header := fmt.Sprintf("GEMINI-FRAME/1\nprogram: %s\nsequence: %d\nstar_system: %s\nsite: %s\nmode: %s\nexposure: %d\ncontrast: %d\nbrightness: %d\nsaturation: %d\n\n",
		programID, seq, plan.StarSystemName, plan.TelescopeLocation, plan.ImageMode,
		plan.Exposure, plan.Contrast, plan.Brightness, plan.Saturation)

	size := lowQualityPayload
	if plan.FileQuality == plandomain.QualityFine {
		size = fineQualityPayload
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d", programID, seq)
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(seq)))

	data := make([]byte, len(header), len(header)+size)
	copy(data, header)
	for i := 0; i < size; i += 8 {
		v := rng.Uint64()
		for j := 0; j < 8 && i+j < size; j++ {
			data = append(data, byte(v>>(8*j)))
		}
	}

	sum := sha256.Sum256(data)
	ext, ct := Format(plan.FileType)
	return Frame{Data: data, Ext: ext, ContentType: ct, Checksum: hex.EncodeToString(sum[:])}
}
