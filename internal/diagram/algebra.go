package diagram

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/inamate/diagrams/internal/numeric"
)

type AlgebraExpressionParams struct {
	Expression         string `json:"expression"`
	HighlightLikeTerms *bool  `json:"highlightLikeTerms"`
	ShowCoefficients   *bool  `json:"showCoefficients"`
	ShowBreakdown      *bool  `json:"showBreakdown"`
	Title              string `json:"title"`
}

// TermGroup collects like terms. Signature "" is the constant group.
type TermGroup struct {
	Signature string
	Terms     []numeric.Term
	Sum       float64
	Color     string
}

type AlgebraExpression struct {
	Source             string
	Terms              []numeric.Term
	Groups             []TermGroup
	Simplified         string
	HighlightLikeTerms bool
	ShowCoefficients   bool
	ShowBreakdown      bool
	Title              string
}

func (AlgebraExpression) Tool() Tool { return ToolAlgebraExpression }

// GroupOf returns the index in Groups of the group holding term t.
func (a AlgebraExpression) GroupOf(t numeric.Term) int {
	sig := t.Signature()
	for i, g := range a.Groups {
		if g.Signature == sig {
			return i
		}
	}
	return -1
}

func normalizeAlgebraExpression(raw json.RawMessage) (Normalized, error) {
	const tool = ToolAlgebraExpression
	var p AlgebraExpressionParams
	if err := decodeParams(tool, raw, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Expression) == "" {
		return nil, invalid(tool, "expression", KindExpressionParse, "expression is empty")
	}
	terms, err := numeric.ParseTerms(p.Expression)
	if err != nil {
		ve := invalid(tool, "expression", KindExpressionParse, "%s", err.Error())
		ve.Err = err
		return nil, ve
	}

	a := AlgebraExpression{
		Source:             strings.TrimSpace(p.Expression),
		Terms:              terms,
		Groups:             groupTerms(terms),
		HighlightLikeTerms: boolOr(p.HighlightLikeTerms, true),
		ShowCoefficients:   boolOr(p.ShowCoefficients, false),
		ShowBreakdown:      boolOr(p.ShowBreakdown, false),
		Title:              p.Title,
	}
	a.Simplified = simplify(a.Groups)
	return a, nil
}

// groupTerms buckets terms by signature in order of first appearance, with the
// constants moved to the end.
func groupTerms(terms []numeric.Term) []TermGroup {
	var groups []TermGroup
	index := map[string]int{}
	for _, t := range terms {
		sig := t.Signature()
		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, TermGroup{Signature: sig})
		}
		groups[i].Terms = append(groups[i].Terms, t)
		groups[i].Sum += t.Value()
	}
	if i, ok := index[""]; ok && i != len(groups)-1 {
		c := groups[i]
		groups = append(append(groups[:i:i], groups[i+1:]...), c)
	}
	for i := range groups {
		groups[i].Color = Palette[i%len(Palette)]
	}
	return groups
}

func simplify(groups []TermGroup) string {
	var b strings.Builder
	for _, g := range groups {
		if math.Abs(g.Sum) < numeric.Epsilon {
			continue
		}
		term := numeric.FormatTerm(g.Sum, g.Signature)
		switch {
		case b.Len() == 0:
			b.WriteString(term)
		case g.Sum < 0:
			b.WriteString(" - " + strings.TrimPrefix(term, "-"))
		default:
			b.WriteString(" + " + term)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
