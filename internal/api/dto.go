package api

import (
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/chordservice"
)

// Mode is a catalog mode (aliased from the domain layer).
type Mode = catalog.Mode

// ChordType is a catalog chord type (aliased from the domain layer).
type ChordType = catalog.ChordType

// ScaleNote is one spelled scale degree (aliased from the domain layer).
type ScaleNote = chordservice.ScaleNote

// ChordDetail is a named chord/scale relation (aliased from the domain layer).
type ChordDetail = chordservice.ChordDetail

// ModeDTO mirrors Mode for swag.
type ModeDTO struct {
	Name      string `json:"name" example:"Dorian" validate:"required"`
	Intervals []int  `json:"intervals" example:"0,2,3,5,7,9,10" validate:"required"`
}

// ChordTypeDTO mirrors ChordType for swag.
type ChordTypeDTO struct {
	Name      string `json:"name" example:"Minor seventh" validate:"required"`
	Symbol    string `json:"symbol" example:"m7"`
	Intervals []int  `json:"intervals" example:"0,3,7,10" validate:"required"`
}

// ScaleNoteDTO mirrors ScaleNote for swag.
type ScaleNoteDTO struct {
	SeqNote    int    `json:"seqNote" example:"1" validate:"required"`
	NoteName   string `json:"noteName" example:"Eb" validate:"required"`
	PitchClass int    `json:"pitchClass" example:"3" validate:"required"`
}

// ChordDetailDTO mirrors ChordDetail for swag.
type ChordDetailDTO struct {
	Mode                   string   `json:"mode" example:"Ionian"`
	KeyName                string   `json:"keyName" example:"C"`
	KeyNote                int      `json:"keyNote" example:"0"`
	ChordNote              int      `json:"chordNote" example:"7"`
	ChordNoteName          string   `json:"chordNoteName" example:"G"`
	ChordType              string   `json:"chordType" example:"Dominant seventh"`
	ChordSymbol            string   `json:"chordSymbol" example:"7"`
	ChordName              string   `json:"chordName" example:"G7"`
	ModeNotes              []int    `json:"modeNotes" example:"0,2,4,5,7,9,11"`
	ChordNotes             []int    `json:"chordNotes" example:"7,11,2,5"`
	ChordNoteNames         []string `json:"chordNoteNames" example:"G,B,D,F"`
	ModeChordNoteDiff      []int    `json:"modeChordNoteDiff" example:""`
	ModeChordNoteDiffCount int      `json:"modeChordNoteDiffCount" example:"0"`
}
