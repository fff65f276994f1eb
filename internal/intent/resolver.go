// Package intent maps free-text cleaning instructions to directive values.
package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/KaramelBytes/datatidy-cli/internal/logger"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Resolution holds the directives recognized in an instruction. Zero values mean "not asked for".
type Resolution struct {
	FixNames         bool
	FixMissing       string
	DropOutliers     string
	StandardizeTypes bool
	// Matched lists the winning rule names in category order.
	Matched []string
}

// Empty reports whether nothing was recognized.
func (r Resolution) Empty() bool { return len(r.Matched) == 0 }

// Resolver evaluates a rule table. The zero value is not usable; use NewResolver.
type Resolver struct {
	byCategory map[Category][]Rule
	log        logger.Logger
}

// NewResolver indexes rules by category and sorts each group by priority.
// A nil rules slice uses DefaultRules.
func NewResolver(rules []Rule, log logger.Logger) *Resolver {
	if rules == nil {
		rules = DefaultRules
	}
	idx := make(map[Category][]Rule)
	for _, r := range rules {
		idx[r.Category] = append(idx[r.Category], r)
	}
	for c := range idx {
		group := idx[c]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Priority < group[j].Priority })
	}
	return &Resolver{byCategory: idx, log: logger.OrNop(log)}
}

// Normalize lowercases text and collapses whitespace runs to single spaces.
func Normalize(text string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Resolve returns the directives recognized in text. Empty or unmatched text yields an empty
// Resolution.
func (r *Resolver) Resolve(text string) Resolution {
	var res Resolution
	norm := Normalize(text)
	if norm == "" {
		return res
	}
	r.log.Debug("resolving instruction", "text", norm)
	for _, cat := range Categories {
		rule, ok := r.match(cat, norm)
		if !ok {
			continue
		}
		res.Matched = append(res.Matched, rule.Name)
		switch cat {
		case CategoryNames:
			res.FixNames = true
		case CategoryMissing:
			res.FixMissing = rule.Value
		case CategoryOutliers:
			res.DropOutliers = rule.Value
		case CategoryTypes:
			res.StandardizeTypes = true
		}
		r.log.Debug("instruction matched", "category", string(cat), "rule", rule.Name, "value", rule.Value)
	}
	return res
}

func (r *Resolver) match(cat Category, text string) (Rule, bool) {
	for _, rule := range r.byCategory[cat] {
		for _, p := range rule.Patterns {
			if p.MatchString(text) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Resolve evaluates text against DefaultRules.
func Resolve(text string) Resolution {
	return NewResolver(nil, nil).Resolve(text)
}
