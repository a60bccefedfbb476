package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
)

const modelFixture = `
meta {
  page_cost_per_unit = 750
  range_percent      = 0.18
  project_minimums   = { landing = 8500 }
}

project_type "landing" {
  base_rate = 9000
}

feature "cms" {
  cost = 6000
}

multiplier_group "complexity" {
  option "standard" {
    value = 1
    fixed = true
  }
}

discount "HALF" {
  type   = "percent"
  amount = 50
  applies_to {
    features = ["cms"]
  }
}
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.hcl")
	if err := os.WriteFile(path, []byte(modelFixture), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// execute runs the root command with fresh flag state
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	selection = types.CalculatorInputs{}
	discountCode, currencyInput, outputFormat = "", "", ""
	userRedeemed = -1
	showDetails = true
	modelPath, cfgFile = "", ""
	forceInit = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEstimateCommandJSON(t *testing.T) {
	path := writeModel(t)

	out, err := execute(t, "--model", path, "estimate", "--project", "landing", "--units", "2",
		"--feature", "cms", "--complexity", "standard", "--discount", "half", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var q pricing.Quote
	if err := json.Unmarshal([]byte(out), &q); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if !q.Breakdown.Total.Equal(decimal.NewFromInt(16500)) {
		t.Errorf("expected total 16500, got %s", q.Breakdown.Total)
	}
	if !q.Breakdown.FinalTotal().Equal(decimal.NewFromInt(8250)) {
		t.Errorf("expected discounted total 8250, got %s", q.Breakdown.FinalTotal())
	}
	if !q.BelowMinimum {
		t.Error("expected below-minimum flag")
	}
}

func TestEstimateCommandTable(t *testing.T) {
	path := writeModel(t)

	out, err := execute(t, "--model", path, "estimate", "--project", "landing", "--discount", "HALF", "--timeline", "rush")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"PROJECT PRICE ESTIMATE",
		"9000.00 USD",
		"RANGE",
		"Discount HALF not applied: out_of_scope (feature)",
		`multiplier "timeline.rush" -> 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestDiscountCheckCommand(t *testing.T) {
	path := writeModel(t)

	out, err := execute(t, "--model", path, "discount", "check", "half", "--feature", "cms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "HALF: valid" {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "--model", path, "discount", "check", "nope"); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestModelValidateCommand(t *testing.T) {
	path := writeModel(t)

	out, err := execute(t, "model", "validate", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "project types:      1") || !strings.Contains(out, "discounts:          1") {
		t.Errorf("unexpected summary\n%s", out)
	}
	if !strings.Contains(out, `no "timeline" group`) {
		t.Errorf("expected missing group warning\n%s", out)
	}

	broken := filepath.Join(t.TempDir(), "broken.hcl")
	os.WriteFile(broken, []byte("meta {\n page_cost_per_unit = 1\n range_percent = 2\n}"), 0644)
	if _, err := execute(t, "model", "validate", broken); err == nil {
		t.Error("expected validation error")
	}
}

func TestRenderQuoteRejectsUnknownFormat(t *testing.T) {
	q := &pricing.Quote{Breakdown: &types.CostBreakdown{}, Discount: &discount.Verdict{}}
	if err := renderQuote(&bytes.Buffer{}, q, "yaml", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "pricing.json")

	out, err := execute(t, "--model", "/srv/pricing.hcl", "config", "init", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("unexpected output %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Pricing.ModelPath != "/srv/pricing.hcl" {
		t.Errorf("expected model path /srv/pricing.hcl, got %q", cfg.Pricing.ModelPath)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := execute(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("expected --force to overwrite, got %v", err)
	}
}
