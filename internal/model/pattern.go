// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// CLASSIFICATIONS
// =============================================================================

// Strategy is one of the eight privacy-design strategies.
type Strategy string

const (
	StrategyMinimize    Strategy = "Minimize"
	StrategyHide        Strategy = "Hide"
	StrategySeparate    Strategy = "Separate"
	StrategyAggregate   Strategy = "Aggregate"
	StrategyInform      Strategy = "Inform"
	StrategyControl     Strategy = "Control"
	StrategyEnforce     Strategy = "Enforce"
	StrategyDemonstrate Strategy = "Demonstrate"
)

// Strategies lists every strategy in display order.
var Strategies = []Strategy{
	StrategyMinimize, StrategyHide, StrategySeparate, StrategyAggregate,
	StrategyInform, StrategyControl, StrategyEnforce, StrategyDemonstrate,
}

// ParseStrategy matches s case-insensitively against the fixed strategies.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Valid reports whether s is one of the fixed strategies.
func (s Strategy) Valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}

// MVCComponent classifies where a pattern applies.
type MVCComponent string

const (
	MVCModel      MVCComponent = "Model"
	MVCView       MVCComponent = "View"
	MVCController MVCComponent = "Controller"
)

// MVCComponents lists every component in display order.
var MVCComponents = []MVCComponent{MVCModel, MVCView, MVCController}

// ParseMVCComponent matches s case-insensitively against the fixed components.
func ParseMVCComponent(s string) (MVCComponent, error) {
	for _, c := range MVCComponents {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown MVC component %q", s)
}

// Valid reports whether c is one of the fixed components.
func (c MVCComponent) Valid() bool {
	for _, known := range MVCComponents {
		if c == known {
			return true
		}
	}
	return false
}

// =============================================================================
// REFERENCE RECORDS
// =============================================================================

// GdprArticle is a GDPR article. Pattern relations carry only id, number
// and title; the reference endpoints fill the rest.
type GdprArticle struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// PbdPrinciple is a Privacy-by-Design principle.
type PbdPrinciple struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// IsoPhase is an ISO lifecycle phase.
type IsoPhase struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Standard string `json:"standard,omitempty"`
}

// Vulnerability is a known vulnerability class.
type Vulnerability struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity,omitempty"`
}

// Example is an implementation example attached to a pattern.
type Example struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language,omitempty"`
}

// =============================================================================
// PATTERN
// =============================================================================

// Pattern is a documented privacy pattern.
type Pattern struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Context      string       `json:"context"`
	Problem      string       `json:"problem"`
	Solution     string       `json:"solution"`
	Consequences string       `json:"consequences"`
	Strategy     Strategy     `json:"strategy"`
	MVCComponent MVCComponent `json:"mvc_component"`
	CreatedAt    Time         `json:"created_at"`
	UpdatedAt    Time         `json:"updated_at"`
	CreatedByID  *int         `json:"created_by_id"`

	GdprArticles    []GdprArticle   `json:"gdpr_articles"`
	PbdPrinciples   []PbdPrinciple  `json:"pbd_principles"`
	IsoPhases       []IsoPhase      `json:"iso_phases"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Examples        []Example       `json:"examples"`
}

// Input returns the editable fields of p, used to seed the edit form.
func (p *Pattern) Input() PatternInput {
	in := PatternInput{
		Title:        p.Title,
		Description:  p.Description,
		Context:      p.Context,
		Problem:      p.Problem,
		Solution:     p.Solution,
		Consequences: p.Consequences,
		Strategy:     p.Strategy,
		MVCComponent: p.MVCComponent,
	}
	for _, a := range p.GdprArticles {
		in.GdprIDs = append(in.GdprIDs, a.ID)
	}
	for _, pr := range p.PbdPrinciples {
		in.PbdIDs = append(in.PbdIDs, pr.ID)
	}
	for _, ph := range p.IsoPhases {
		in.IsoIDs = append(in.IsoIDs, ph.ID)
	}
	for _, v := range p.Vulnerabilities {
		in.VulnerabilityIDs = append(in.VulnerabilityIDs, v.ID)
	}
	return in
}

// PatternInput is the create/update payload.
type PatternInput struct {
	Title        string       `json:"title" validate:"required,min=3,max=255"`
	Description  string       `json:"description" validate:"required,min=10"`
	Context      string       `json:"context" validate:"required,min=10"`
	Problem      string       `json:"problem" validate:"required,min=10"`
	Solution     string       `json:"solution" validate:"required,min=10"`
	Consequences string       `json:"consequences" validate:"required,min=10"`
	Strategy     Strategy     `json:"strategy" validate:"required,strategy"`
	MVCComponent MVCComponent `json:"mvc_component" validate:"required,mvc"`

	GdprIDs          []int `json:"gdpr_ids"`
	PbdIDs           []int `json:"pbd_ids"`
	IsoIDs           []int `json:"iso_ids"`
	VulnerabilityIDs []int `json:"vulnerability_ids"`
}

// Normalized trims surrounding whitespace from the text fields and makes
// the id lists non-nil so they encode as [] rather than null.
func (in PatternInput) Normalized() PatternInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Context = strings.TrimSpace(in.Context)
	in.Problem = strings.TrimSpace(in.Problem)
	in.Solution = strings.TrimSpace(in.Solution)
	in.Consequences = strings.TrimSpace(in.Consequences)
	in.Strategy = Strategy(strings.TrimSpace(string(in.Strategy)))
	in.MVCComponent = MVCComponent(strings.TrimSpace(string(in.MVCComponent)))
	if in.GdprIDs == nil {
		in.GdprIDs = []int{}
	}
	if in.PbdIDs == nil {
		in.PbdIDs = []int{}
	}
	if in.IsoIDs == nil {
		in.IsoIDs = []int{}
	}
	if in.VulnerabilityIDs == nil {
		in.VulnerabilityIDs = []int{}
	}
	return in
}

// PatternList is the paginated body of GET /patterns/ and /search/patterns.
type PatternList struct {
	Patterns []Pattern `json:"patterns"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Size     int       `json:"size"`
}

// PatternStats is the body of GET /patterns/stats.
type PatternStats struct {
	Total         int            `json:"total"`
	Strategies    map[string]int `json:"strategies"`
	MVCComponents map[string]int `json:"mvc_components"`
}

// AutocompleteSuggestion is one entry of GET /search/autocomplete.
type AutocompleteSuggestion struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Strategy    string  `json:"strategy,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// Text is the completion inserted into the search box.
func (s AutocompleteSuggestion) Text() string {
	return s.Title
}

// PatternSuggestion is one entry of GET /chatbot/suggestions.
type PatternSuggestion struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Strategy    string `json:"strategy"`
	// MVCComponent is not sent by every backend revision.
	MVCComponent string `json:"mvc_component,omitempty"`
}
