package consts

// URLMarker must appear in a URL for it to be accepted into a batch.
const URLMarker = "tiktok.com"

// Quality labels accepted by the batch API.
const (
	QualityUltraHD  = "ultra_hd"
	QualityHD       = "hd"
	QualityStandard = "standard"
)
