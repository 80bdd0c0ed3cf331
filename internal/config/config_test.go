package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultReview(t *testing.T) {
	rc := DefaultReview()

	if rc.Size.MaxFiles != 20 || rc.Size.MaxLinesAdded != 500 {
		t.Errorf("unexpected size defaults: %+v", rc.Size)
	}
	if rc.Size.WarningThreshold != 0.7 {
		t.Errorf("unexpected warning threshold: %v", rc.Size.WarningThreshold)
	}
	if _, ok := rc.Naming["python"]; !ok {
		t.Error("python naming rules missing from defaults")
	}
	if len(rc.Ignore) == 0 {
		t.Error("default ignore patterns missing")
	}
}

func TestValidate(t *testing.T) {
	var c Config
	errs := c.Validate()
	if len(errs) != 4 {
		t.Fatalf("empty config should produce 4 errors, got %d: %v", len(errs), errs)
	}

	c = Config{GitHubToken: "t", OpenAIKey: "k", PRNumber: 12, Repo: "acme/widgets"}
	if errs := c.Validate(); len(errs) != 0 {
		t.Errorf("complete config should validate, got %v", errs)
	}
}

func TestRepoSplit(t *testing.T) {
	c := Config{Repo: "acme/widgets"}
	if c.RepoOwner() != "acme" || c.RepoName() != "widgets" {
		t.Errorf("got %q/%q", c.RepoOwner(), c.RepoName())
	}

	c = Config{Repo: "widgets"}
	if c.RepoOwner() != "" || c.RepoName() != "widgets" {
		t.Errorf("repo without owner: got %q/%q", c.RepoOwner(), c.RepoName())
	}
}

const partialYAML = `
pr_size:
  max_files: 10
security:
  patterns:
    - name: Internal Token
      regex: 'X-ACME-TOKEN'
      severity: HIGH
      description: internal token leaked
`

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	rc := ReviewConfig{}
	if err := yaml.Unmarshal([]byte(partialYAML), &rc); err != nil {
		t.Fatal(err)
	}
	applyReviewDefaults(&rc)

	if rc.Size.MaxFiles != 10 {
		t.Errorf("file value lost: %+v", rc.Size)
	}
	if len(rc.Security.Patterns) != 1 || rc.Security.Patterns[0].Name != "Internal Token" {
		t.Errorf("custom security pattern lost: %+v", rc.Security.Patterns)
	}
	if rc.Structure.TitlePattern == "" {
		t.Error("title pattern default not applied")
	}
	if len(rc.Naming) == 0 {
		t.Error("naming defaults not applied")
	}
}
