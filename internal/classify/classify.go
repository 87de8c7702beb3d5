// Package classify evaluates the rule table against scanned files.
// Classification is deterministic and side-effect-free; the precedence
// is fixed: size beats age, age beats extension, and anything left
// falls through to the fallback shelf.
package classify

import (
	"fmt"
	"time"

	"shelve/internal/config"
	"shelve/internal/scan"
)

// Rule names which rule produced a decision.
type Rule string

const (
	RuleSize      Rule = "size"
	RuleAge       Rule = "age"
	RuleExtension Rule = "extension"
	RuleFallback  Rule = "fallback"
)

// Decision is the outcome for one file. Destination is a directory
// relative to the sandbox root.
type Decision struct {
	Destination string
	Rule        Rule
	Reason      string
}

// Ruleset is an immutable, compiled rule table.
type Ruleset struct {
	largeThreshold int64
	largeDest      string
	oldAfter       time.Duration
	oldDest        string
	extensions     map[string]string
	fallback       string

	now func() time.Time
}

// NewRuleset compiles the configured rules.
func NewRuleset(rules config.Rules) *Ruleset {
	extensions := make(map[string]string, len(rules.Extensions))
	for ext, dest := range rules.Extensions {
		extensions[ext] = dest
	}
	return &Ruleset{
		largeThreshold: rules.LargeFileThresholdMB * 1024 * 1024,
		largeDest:      rules.LargeFileDestination,
		oldAfter:       time.Duration(rules.OldFileDays) * 24 * time.Hour,
		oldDest:        rules.OldFileDestination,
		extensions:     extensions,
		fallback:       rules.FallbackDestination,
		now:            time.Now,
	}
}

// Classify picks a destination for one file.
func (r *Ruleset) Classify(f scan.File) Decision {
	if f.Size > r.largeThreshold {
		return Decision{
			Destination: r.largeDest,
			Rule:        RuleSize,
			Reason:      fmt.Sprintf("size %d MB exceeds %d MB threshold", f.Size/(1024*1024), r.largeThreshold/(1024*1024)),
		}
	}
	if !f.Modified.IsZero() && r.now().Sub(f.Modified) > r.oldAfter {
		return Decision{
			Destination: r.oldDest,
			Rule:        RuleAge,
			Reason:      fmt.Sprintf("untouched for over %d days", int(r.oldAfter.Hours()/24)),
		}
	}
	if dest, ok := r.extensions[f.Ext]; ok {
		return Decision{
			Destination: dest,
			Rule:        RuleExtension,
			Reason:      fmt.Sprintf("extension %s", f.Ext),
		}
	}
	return Decision{
		Destination: r.fallback,
		Rule:        RuleFallback,
		Reason:      "no matching rule",
	}
}
