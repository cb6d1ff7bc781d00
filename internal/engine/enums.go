package engine

// String backed enums so advice can be logged and rendered without lookups.

type Direction string
type Band string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

const (
	BandNone     Band = ""
	BandCalm     Band = "calm"       // < 20
	BandBuilding Band = "building"   // 20..40
	BandRising   Band = "rising"     // 40..60
	BandHigh     Band = "high point" // 60..80
	BandClimax   Band = "climax"     // >= 80
)

// Policy names accepted by PolicyFor.
const (
	PolicyTrend = "trend"
	PolicyBands = "bands"
)

var AllPolicies = []string{PolicyTrend, PolicyBands}
