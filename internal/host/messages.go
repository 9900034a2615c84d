// Package host runs the analysis engine off the interactive path: it owns
// the WebSocket boundary, the per-client worker that coalesces analysis
// requests (last request wins), and the persistence collaborators for
// drafts, presets, pins, and bundle bookkeeping. The engine itself stays
// pure; everything stateful lives here.
package host

import (
	"github.com/cory-johannsen/spellbench/internal/spell/params"
)

// Request message types, the closed set a client may send.
const (
	ReqAnalyze     = "analyze"
	ReqRoll        = "roll"
	ReqListBundles = "list_bundles"
	ReqLoadBundle  = "load_bundle"
	ReqSaveDraft   = "save_draft"
	ReqListDrafts  = "list_drafts"
	ReqLoadDraft   = "load_draft"
	ReqDeleteDraft = "delete_draft"
	ReqSavePreset  = "save_preset"
	ReqListPresets = "list_presets"
	ReqLoadPreset  = "load_preset"
	ReqPin         = "pin"
	ReqUnpin       = "unpin"
	ReqListPins    = "list_pins"
)

// Response message types.
const (
	RespAnalysis = "analysis"
	RespRolled   = "rolled"
	RespBundles  = "bundles"
	RespBundle   = "bundle"
	RespDrafts   = "drafts"
	RespDraft    = "draft"
	RespPresets  = "presets"
	RespPreset   = "preset"
	RespPins     = "pins"
	RespError    = "error"
)

// Request is the envelope for every client message. Type selects the
// variant; the other fields are populated per type and ignored otherwise.
type Request struct {
	Type string `json:"type"`
	// Seq is a client-chosen sequence number echoed on analysis and roll
	// responses so the client can discard stale results.
	Seq int64 `json:"seq,omitempty"`
	// Source is the spell-collection text (analyze, roll, save_draft).
	Source string `json:"source,omitempty"`
	// Params is the parameter snapshot (analyze, roll, save_preset).
	Params map[string]int `json:"params,omitempty"`
	// Name addresses a draft, preset, or bundle by name.
	Name string `json:"name,omitempty"`
	// Spell addresses one spell by name (roll, pin, unpin).
	Spell string `json:"spell,omitempty"`
}

// Response is the envelope for every server message. Exactly the fields for
// the given Type are set.
type Response struct {
	Type     string           `json:"type"`
	Seq      int64            `json:"seq,omitempty"`
	Analysis *AnalysisPayload `json:"analysis,omitempty"`
	Spell    string           `json:"spell,omitempty"`
	Total    int              `json:"total,omitempty"`
	Name     string           `json:"name,omitempty"`
	Source   string           `json:"source,omitempty"`
	Params   map[string]int   `json:"params,omitempty"`
	Names    []string         `json:"names,omitempty"`
	Seen     []string         `json:"seen,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// AnalysisPayload is the wire form of one analysis pass.
type AnalysisPayload struct {
	Spells []SpellPayload `json:"spells"`
	Groups []params.Group `json:"groups"`
	Errors []string       `json:"errors"`
}

// SpellPayload is the wire form of one spell's analysis. Exact weights are
// serialized as decimal strings; they exceed every integer JSON can carry.
type SpellPayload struct {
	Name         string    `json:"name"`
	Level        int       `json:"level"`
	CastAt       int       `json:"castAt"`
	BelowMinimum bool      `json:"belowMinimum"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"stdDev"`
	Max          int       `json:"max"`
	Formula      string    `json:"formula"`
	Line         int       `json:"line"`
	Histogram    []Bucket  `json:"histogram"`
}

// Bucket is one histogram bar.
type Bucket struct {
	Value  int     `json:"value"`
	Weight string  `json:"weight"`
	P      float64 `json:"p"`
}
