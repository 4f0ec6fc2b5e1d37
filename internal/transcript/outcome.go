package transcript

// Source identifies which acquisition path produced the transcript text.
// The labels surface verbatim in reports and persisted results.
type Source string

const (
	SourceNone              Source = "sem_transcricao"
	SourceNativeCaption     Source = "legenda_nativa"
	SourceTranslatedCaption Source = "legenda_traduzida"
	SourceLegacyCaption     Source = "legenda_ytdlp"
	SourceASRWhisper        Source = "asr_whisper"
	SourceASROpenAI         Source = "asr_openai"
)

type Status int

const (
	StatusNotAvailable Status = iota
	StatusFound
	StatusBlocked
)

// Outcome is the result of one resolution attempt. Text and Language are
// only meaningful when Status is StatusFound.
type Outcome struct {
	Status    Status
	Source    Source
	Text      string
	Language  string
	Generated bool
}

func notAvailable() Outcome {
	return Outcome{Status: StatusNotAvailable, Source: SourceNone}
}

func blocked() Outcome {
	return Outcome{Status: StatusBlocked, Source: SourceNone}
}
