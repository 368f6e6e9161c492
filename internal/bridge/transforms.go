package bridge

import (
	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
)

// RegisterDefaults registers the built-in bridges between consecutive
// frameworks of the shipped journey catalog.
func RegisterDefaults(r *Registry) {
	r.Register(journey.FrameworkPestle, journey.FrameworkPorters, PestleToPorters)
	r.Register(journey.FrameworkPestle, journey.FrameworkSwot, PestleToSwot)
	r.Register(journey.FrameworkPorters, journey.FrameworkSwot, PortersToSwot)
	r.Register(journey.FrameworkSwot, journey.FrameworkBMC, SwotToBMC)
	r.Register(journey.FrameworkRootCause, journey.FrameworkPestle, RootCauseToPestle)
}

// PestleToPorters frames the competitive-forces scan with the macro risks and
// opportunities the PESTLE scan surfaced.
func PestleToPorters(source framework.Output, bctx Context) (map[string]any, error) {
	summary := asMap(source["summary"])
	if summary == nil {
		return nil, errEmptySource
	}
	enh := map[string]any{}
	if risks := asSlice(summary["key_risks"]); len(risks) > 0 {
		enh["macro_risks"] = risks
	}
	if opps := asSlice(summary["key_opportunities"]); len(opps) > 0 {
		enh["macro_opportunities"] = opps
	}
	if entities := asSlice(source["entities"]); len(entities) > 0 {
		enh["named_actors"] = entities
	}
	return enh, nil
}

// PestleToSwot carries macro risks into the threats side of the SWOT framing.
func PestleToSwot(source framework.Output, bctx Context) (map[string]any, error) {
	summary := asMap(source["summary"])
	if summary == nil {
		return nil, errEmptySource
	}
	enh := map[string]any{}
	if risks := asSlice(summary["key_risks"]); len(risks) > 0 {
		enh["external_threat_candidates"] = risks
	}
	if opps := asSlice(summary["key_opportunities"]); len(opps) > 0 {
		enh["external_opportunity_candidates"] = opps
	}
	return enh, nil
}

// PortersToSwot informs the strengths/weaknesses scan with the forces found
// to exert high pressure on the business.
func PortersToSwot(source framework.Output, bctx Context) (map[string]any, error) {
	forces := []string{"rivalry", "new_entrants", "substitutes", "buyer_power", "supplier_power"}

	var pressures []any
	for _, f := range forces {
		detail := asMap(source[f])
		if detail == nil {
			continue
		}
		if intensity, _ := detail["intensity"].(string); intensity == "high" {
			entry := map[string]any{"force": f}
			if drivers := asSlice(detail["drivers"]); len(drivers) > 0 {
				entry["drivers"] = drivers
			}
			pressures = append(pressures, entry)
		}
	}
	if len(pressures) == 0 {
		return nil, nil
	}

	enh := map[string]any{"competitive_pressures": pressures}
	if summary := asMap(source["summary"]); summary != nil {
		if attractiveness, _ := summary["attractiveness"].(string); attractiveness != "" {
			enh["market_attractiveness"] = attractiveness
		}
	}
	return enh, nil
}

// SwotToBMC grounds the canvas in confirmed strengths to leverage and
// weaknesses to design around.
func SwotToBMC(source framework.Output, bctx Context) (map[string]any, error) {
	enh := map[string]any{}
	if items := itemList(source["strengths"]); len(items) > 0 {
		enh["leverage_strengths"] = items
	}
	if items := itemList(source["weaknesses"]); len(items) > 0 {
		enh["mitigate_weaknesses"] = items
	}
	if len(enh) == 0 {
		return nil, errEmptySource
	}
	return enh, nil
}

// RootCauseToPestle points the macro-environment scan at the drivers behind
// the user's confirmed root causes.
func RootCauseToPestle(source framework.Output, bctx Context) (map[string]any, error) {
	causes := asSlice(source["candidate_root_causes"])
	if len(causes) == 0 {
		return nil, errEmptySource
	}
	var drivers []any
	for _, c := range causes {
		if m := asMap(c); m != nil {
			if cause, _ := m["cause"].(string); cause != "" {
				drivers = append(drivers, cause)
			}
		}
	}
	if len(drivers) == 0 {
		return nil, nil
	}
	return map[string]any{"problem_drivers": drivers}, nil
}

// itemList extracts the "item" strings from a list of {item, evidence} maps.
func itemList(v any) []any {
	var out []any
	for _, e := range asSlice(v) {
		if m := asMap(e); m != nil {
			if item, _ := m["item"].(string); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
