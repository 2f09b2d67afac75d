package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
)

// Violation is one reason the support policy rejects a run.
type Violation struct {
	// Policy names the rule set that produced the violation.
	Policy string `json:"policy"`

	// Message is the human-readable denial.
	Message string `json:"message"`
}

// Gate evaluates the built-in support matrix against a resolved
// identity and install mode.
type Gate struct {
	query rego.PreparedEvalQuery
}

// NewGate compiles the built-in Rego module and prepares the deny
// query for evaluation.
func NewGate(ctx context.Context) (*Gate, error) {
	r := rego.New(
		rego.Query("data.saltboot.support.deny"),
		rego.Module("support.rego", supportRego),
	)
	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile support policy: %w", err)
	}
	return &Gate{query: query}, nil
}

// Check returns the violations for an identity and mode. An empty
// slice means the combination is supported. Identities without a
// numeric major (rolling releases) skip the end-of-life floor.
func (g *Gate) Check(ctx context.Context, id distro.Identity, mode dispatch.Mode) ([]Violation, error) {
	input := map[string]interface{}{
		"distro":  id.ID,
		"kernel":  id.Kernel,
		"channel": string(mode.Channel),
	}
	if major, ok := id.Version.MajorNum(); ok {
		input["major"] = major
	}
	if minor, ok := id.Version.MinorNum(); ok {
		input["minor"] = minor
	}

	results, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate support policy: %w", err)
	}

	var violations []Violation
	for _, result := range results {
		for _, expr := range result.Expressions {
			denySet, ok := expr.Value.([]interface{})
			if !ok {
				continue
			}
			for _, d := range denySet {
				msg, ok := d.(string)
				if !ok {
					msg = fmt.Sprintf("%v", d)
				}
				violations = append(violations, Violation{Policy: "support", Message: msg})
			}
		}
	}

	if len(violations) > 0 {
		log.Debug().
			Str("distro", id.String()).
			Str("channel", string(mode.Channel)).
			Int("violations", len(violations)).
			Msg("Support policy denied the run")
	}
	return violations, nil
}
