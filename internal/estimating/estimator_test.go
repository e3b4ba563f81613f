package estimating

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buildcost/internal/cache"
	"buildcost/internal/core"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeGenerator) Model() string { return "fake" }

var project = core.Project{ID: "p1", Name: "Depot", OwnerName: "City"}

func TestEstimateBudget(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + `{"items":[
		{"category":"Concrete","costType":"material","notes":"slab","originalBudget":12000.50},
		{"category":"Landscaping","costType":"labor","originalBudget":500},
		{"category":"Framing","costType":"weird","originalBudget":"800"}
	]}` + "\n```"}
	est := New(gen, nil, nil)

	items, err := est.EstimateBudget(context.Background(), project, "Build a depot", []string{"Concrete", "Framing"})
	if err != nil {
		t.Fatalf("EstimateBudget: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	if items[0].OriginalBudget.Cents != 1200050 || items[0].CostType != core.CostMaterial || items[0].ProjectID != "p1" {
		t.Errorf("first item = %+v", items[0])
	}
	if items[0].ProjectedCost != items[0].OriginalBudget {
		t.Errorf("projected cost should start at original budget, got %v", items[0].ProjectedCost)
	}
	if items[1].CostType != core.CostBoth || items[1].OriginalBudget.Cents != 80000 {
		t.Errorf("second item = %+v", items[1])
	}
	if !strings.Contains(gen.prompts[0], "Build a depot") || !strings.Contains(gen.prompts[0], "Framing") {
		t.Errorf("prompt missing scope or categories:\n%s", gen.prompts[0])
	}
}

func TestEstimator_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no generator", func(t *testing.T) {
		_, err := New(nil, nil, nil).EstimateBudget(ctx, project, "x", nil)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("dial tcp: refused")}
		_, err := New(gen, nil, nil).SuggestChangeOrder(ctx, project, core.Cents(100), "x")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		gen := &fakeGenerator{response: "not json"}
		_, err := New(gen, nil, nil).EstimateBudget(ctx, project, "x", nil)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("err = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestSuggestChangeOrder(t *testing.T) {
	gen := &fakeGenerator{response: `{"description":"Delete canopy","totalRequest":-2500}`}
	co, err := New(gen, nil, nil).SuggestChangeOrder(context.Background(), project, core.Cents(10000000), "remove the canopy")
	if err != nil {
		t.Fatalf("SuggestChangeOrder: %v", err)
	}
	if co.TotalRequest.Cents != -250000 || co.Status != core.COSubmitted || co.ProjectID != "p1" {
		t.Errorf("draft = %+v", co)
	}
	if !strings.Contains(gen.prompts[0], "100000.00") {
		t.Errorf("prompt should carry the contract sum:\n%s", gen.prompts[0])
	}
}

func TestEstimator_CachesResponses(t *testing.T) {
	gen := &fakeGenerator{response: `{"items":[]}`}
	est := New(gen, nil, cache.NewLRUCache[string](10, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := est.EstimateBudget(ctx, project, "same scope", nil); err != nil {
			t.Fatalf("EstimateBudget: %v", err)
		}
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}

	if _, err := est.EstimateBudget(ctx, project, "other scope", nil); err != nil {
		t.Fatalf("EstimateBudget: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
}

func TestRender(t *testing.T) {
	set := DefaultPrompts()

	if _, err := set.Render(PromptBudgetEstimate, map[string]string{"project": "x"}); err == nil {
		t.Error("expected error for missing placeholder values")
	}
	if _, err := set.Render("nope", nil); err == nil {
		t.Error("expected error for unknown prompt")
	}

	out, err := set.Render(PromptChangeOrderDraft, map[string]string{
		"project": "Depot", "contractSum": "10.00", "description": "add door",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Requested change:\nadd door") || !strings.Contains(out, `"totalRequest"`) {
		t.Errorf("unexpected render:\n%s", out)
	}
}

func TestLoadPrompts_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"duplicate", "prompts:\n  - name: a\n    sections: [{title: t, text: x}]\n  - name: a\n    sections: [{title: t, text: y}]\n"},
		{"no sections", "prompts:\n  - name: a\n"},
		{"no name", "prompts:\n  - sections: [{title: t, text: x}]\n"},
		{"bad yaml", "prompts: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadPrompts([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGemini_Generate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"items\":"},{"text":"[]}"}]}}]}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "key", "gemini-test",
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	out, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"items":[]}` {
		t.Errorf("Generate() = %q", out)
	}
	if !strings.HasSuffix(gotPath, "models/gemini-test:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
}

func TestNewGemini_MissingKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), " ", "m"); err == nil {
		t.Error("expected error without api key")
	}
}
