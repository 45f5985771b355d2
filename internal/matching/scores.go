package matching

// Match score constants for template matching.
// Higher scores indicate more specific matches.
const (
	// ScoreLiteralSegment is added for every literal segment of a matched template.
	ScoreLiteralSegment = 10

	// ScoreParamSegment is added for every ":param" segment of a matched template.
	ScoreParamSegment = 1
)
