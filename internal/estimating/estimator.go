// Package estimating drafts budget lines and change orders with a
// generative model. Proposals are returned to the caller and never
// persisted here.
package estimating

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"buildcost/internal/cache"
	"buildcost/internal/core"
	applog "buildcost/internal/log"
)

var (
	// ErrUnavailable means no model is configured or the call failed.
	ErrUnavailable = errors.New("estimating service unavailable")
	// ErrMalformedResponse means the model answered with unusable JSON.
	ErrMalformedResponse = errors.New("malformed estimating response")
)

type Estimator struct {
	gen     Generator
	prompts *PromptSet
	cache   cache.Cache[string]
}

// New returns an Estimator. gen may be nil, in which case every call
// fails with ErrUnavailable. c may be nil to disable caching.
func New(gen Generator, prompts *PromptSet, c cache.Cache[string]) *Estimator {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Estimator{gen: gen, prompts: prompts, cache: c}
}

// Available reports whether a model is configured.
func (e *Estimator) Available() bool {
	return e.gen != nil
}

// EstimateBudget proposes budget items for a scope of work. Categories
// outside the given list are dropped; unknown cost types become both.
func (e *Estimator) EstimateBudget(ctx context.Context, project core.Project, scope string, categories []string) ([]core.BudgetItem, error) {
	prompt, err := e.prompts.Render(PromptBudgetEstimate, map[string]string{
		"project":    project.Name,
		"owner":      project.OwnerName,
		"scope":      strings.TrimSpace(scope),
		"categories": strings.Join(categories, "\n"),
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Items []core.BudgetItem `json:"items"`
	}
	if err := e.complete(ctx, prompt, &out); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	items := make([]core.BudgetItem, 0, len(out.Items))
	for _, it := range out.Items {
		it.Category = strings.TrimSpace(it.Category)
		if len(allowed) > 0 && !allowed[it.Category] {
			slog.DebugContext(ctx, "Dropping estimate line with unknown category",
				applog.FieldCategory, it.Category)
			continue
		}
		if !it.CostType.Valid() {
			it.CostType = core.CostBoth
		}
		it.ID = ""
		it.ProjectID = project.ID
		it.ApprovedCOBudget = core.Money{}
		it.CommittedCost = core.Money{}
		it.ProjectedCost = it.OriginalBudget
		items = append(items, it)
	}
	return items, nil
}

// SuggestChangeOrder drafts a change order in Submitted status.
func (e *Estimator) SuggestChangeOrder(ctx context.Context, project core.Project, contractSum core.Money, description string) (core.ChangeOrder, error) {
	prompt, err := e.prompts.Render(PromptChangeOrderDraft, map[string]string{
		"project":     project.Name,
		"contractSum": contractSum.String(),
		"description": strings.TrimSpace(description),
	})
	if err != nil {
		return core.ChangeOrder{}, err
	}

	var draft core.ChangeOrder
	if err := e.complete(ctx, prompt, &draft); err != nil {
		return core.ChangeOrder{}, err
	}
	if strings.TrimSpace(draft.Description) == "" {
		draft.Description = strings.TrimSpace(description)
	}
	draft.ID = ""
	draft.ProjectID = project.ID
	draft.Status = core.COSubmitted
	return draft, nil
}

// complete runs a prompt, serving repeated prompts from the cache. Only
// responses that decode are cached.
func (e *Estimator) complete(ctx context.Context, prompt string, dst any) error {
	if e.gen == nil {
		return ErrUnavailable
	}
	key := cacheKey(e.gen.Model(), prompt)
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, key); ok && json.Unmarshal([]byte(raw), dst) == nil {
			return nil
		}
	}

	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Model call failed",
			applog.FieldComponent, applog.ComponentEstimator,
			applog.FieldModel, e.gen.Model(),
			applog.FieldError, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	raw = stripFences(raw)
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if e.cache != nil {
		e.cache.Set(ctx, key, raw)
	}
	return nil
}

func cacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// stripFences removes a surrounding ```json fence some models add.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
