package models

// WeakPoint is the single most salient flaw in the user's reasoning.
type WeakPoint struct {
	DetectedFlaw string `json:"tespitEdilenHata"`
	Suggestion   string `json:"onerilenGelistirme"`
}

// Evaluation is the structured coach report returned by the model.
type Evaluation struct {
	StrongestArgument   string    `json:"enGucluArguman"`
	WeakPoint           WeakPoint `json:"gelistirilmesiGerekenNokta"`
	PersuasivenessScore int       `json:"iknaEdicilikPuani"`
	GeneralComment      string    `json:"genelYorum"`
}

// Report is either a structured Evaluation or, when the model output could not be
// decoded, the raw text it returned. Exactly one of the two is set.
type Report struct {
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	RawText    string      `json:"rawText,omitempty"`
}

func StructuredReport(e Evaluation) Report {
	return Report{Evaluation: &e}
}

func RawReport(text string) Report {
	return Report{RawText: text}
}

// IsStructured reports whether the report decoded into an Evaluation.
func (r Report) IsStructured() bool {
	return r.Evaluation != nil
}

func (r Report) Clone() Report {
	if r.Evaluation == nil {
		return r
	}
	e := *r.Evaluation
	return Report{Evaluation: &e}
}
