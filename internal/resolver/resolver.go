package resolver

import (
	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"

	"cssinliner/internal/config"
	"cssinliner/internal/css"
	"cssinliner/internal/html"
)

// Resolver applies a RuleSet to a document following the cascade: rules
// are layered in specificity/source order, !important declarations are
// never overwritten by normal ones, and each element's original inline
// style is merged last.
//
// A Resolver keeps no state between Apply calls. Applying concurrently to
// the same document is not supported.
type Resolver struct {
	config config.Config
	log    *zap.Logger
}

// Result describes what a single Apply call did
type Result struct {
	RulesApplied     int                 // Rules that matched at least one element
	RulesSkipped     int                 // Rules whose selector could not be resolved
	SelectorsMatched int                 // Total element matches over all rules
	ElementsStyled   int                 // Elements whose style attribute was written
	Warnings         []ValidationWarning // Email compatibility warnings
}

// elementState is the per-element scratch state of one Apply call
type elementState struct {
	node     html.Node
	original string
	working  *css.PropertyMap
}

// New creates a new style resolver
func New(cfg config.Config, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{config: cfg, log: log.Named("resolver")}
}

// Apply mutates the style attribute of every element matched by rules.
// Elements no rule matches are left untouched.
func (r *Resolver) Apply(doc html.Matcher, rules *css.RuleSet) *Result {
	result := &Result{}
	if rules.Len() == 0 {
		return result
	}

	states := make(map[*nethtml.Node]*elementState)
	var visited []*elementState

	for _, rule := range rules.Rules {
		nodes, err := doc.Match(rule.Selector)
		if err != nil {
			r.log.Debug("Skipping rule", zap.String("selector", rule.Selector), zap.Error(err))
			result.RulesSkipped++
			continue
		}
		if len(nodes) == 0 {
			continue
		}

		result.RulesApplied++
		result.SelectorsMatched += len(nodes)

		for _, node := range nodes {
			state, ok := states[node.Raw()]
			if !ok {
				original, _ := node.Attr("style")
				state = &elementState{node: node, original: original, working: css.NewPropertyMap()}
				states[node.Raw()] = state
				visited = append(visited, state)
			}
			state.working.Merge(rule.Properties)
		}
	}

	profile := config.GetCompatibilityProfile(r.config.TargetEmailClient)

	for _, state := range visited {
		if state.original != "" {
			state.working.Merge(css.ParseInlineStyle(state.original))
		}

		style := state.working.String()
		if style == "" {
			continue
		}

		state.node.SetAttribute("style", style)
		result.ElementsStyled++
		result.Warnings = append(result.Warnings, ValidateStyles(state.node.TagName(), state.working, profile)...)
	}

	r.log.Debug("Applied rules",
		zap.Int("rules", rules.Len()),
		zap.Int("applied", result.RulesApplied),
		zap.Int("skipped", result.RulesSkipped),
		zap.Int("styled", result.ElementsStyled))

	return result
}
