package domain

// TranscriptToken is one recognized word or cue with absolute timing.
type TranscriptToken struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Chunk records which transcription window produced this token.
	// Zero for tokens that never went through the chunked coordinator
	// (subtitle cues, single-window transcriptions).
	Chunk int `json:"-"`
}
