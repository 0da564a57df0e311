package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"debatearena/models"
)

var ErrInvalidReport = errors.New("invalid report")

type reportWire struct {
	StrongestArgument *string `json:"enGucluArguman"`
	WeakPoint         *struct {
		DetectedFlaw *string `json:"tespitEdilenHata"`
		Suggestion   *string `json:"onerilenGelistirme"`
	} `json:"gelistirilmesiGerekenNokta"`
	Score          json.RawMessage `json:"iknaEdicilikPuani"`
	GeneralComment *string         `json:"genelYorum"`
}

// DecodeEvaluation decodes the coach report JSON. Every field of the schema must
// be present and the score must be an integer in 0..10, given either as a JSON
// number or a numeric string.
func DecodeEvaluation(text string) (models.Evaluation, error) {
	var wire reportWire
	if err := json.Unmarshal([]byte(cleanModelOutput(text)), &wire); err != nil {
		return models.Evaluation{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	switch {
	case wire.StrongestArgument == nil:
		return models.Evaluation{}, fmt.Errorf("%w: missing enGucluArguman", ErrInvalidReport)
	case wire.WeakPoint == nil || wire.WeakPoint.DetectedFlaw == nil || wire.WeakPoint.Suggestion == nil:
		return models.Evaluation{}, fmt.Errorf("%w: incomplete gelistirilmesiGerekenNokta", ErrInvalidReport)
	case wire.GeneralComment == nil:
		return models.Evaluation{}, fmt.Errorf("%w: missing genelYorum", ErrInvalidReport)
	}

	score, err := decodeScore(wire.Score)
	if err != nil {
		return models.Evaluation{}, err
	}

	return models.Evaluation{
		StrongestArgument: *wire.StrongestArgument,
		WeakPoint: models.WeakPoint{
			DetectedFlaw: *wire.WeakPoint.DetectedFlaw,
			Suggestion:   *wire.WeakPoint.Suggestion,
		},
		PersuasivenessScore: score,
		GeneralComment:      *wire.GeneralComment,
	}, nil
}

func decodeScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing iknaEdicilikPuani", ErrInvalidReport)
	}

	var value float64
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(asString), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: score %q is not a number", ErrInvalidReport, asString)
		}
		value = parsed
	} else if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("%w: score is not a number", ErrInvalidReport)
	}

	if value != math.Trunc(value) || value < 0 || value > 10 {
		return 0, fmt.Errorf("%w: score %v out of range", ErrInvalidReport, value)
	}
	return int(value), nil
}

// ParseReport decodes text into a structured report. On failure it returns the raw
// report holding text unchanged, together with the decode error.
func ParseReport(text string) (models.Report, error) {
	evaluation, err := DecodeEvaluation(text)
	if err != nil {
		return models.RawReport(text), err
	}
	return models.StructuredReport(evaluation), nil
}

// CleanArgumentMap strips code fences around a Mermaid diagram.
func CleanArgumentMap(text string) string {
	return cleanModelOutput(text)
}
