package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeStripsFillerWords(t *testing.T) {
	t.Parallel()

	n, err := NewNormalizer("", 0)
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}

	cases := map[string]string{
		"um make this professional":     "make this professional",
		"uh, translate to french":       "translate to french",
		"rewrite this you know nicely":  "rewrite this nicely",
		"convert to json please":        "convert to json",
		"  trim   this    whitespace  ": "trim this whitespace",
		"sort the lines.":               "sort the lines",
	}

	for input, want := range cases {
		if got := n.Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeUserRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.txt")
	contents := "# spoken shorthand\njason => json\nsequel => sql\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := NewNormalizer(path, 0)
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}

	if got := n.Normalize("convert this to jason"); got != "convert this to json" {
		t.Fatalf("user rule not applied: %q", got)
	}
	if got := n.Normalize("make a SEQUEL insert"); got != "make a sql insert" {
		t.Fatalf("user rules must match case-insensitively: %q", got)
	}
}

func TestNormalizerMissingFileIsFine(t *testing.T) {
	t.Parallel()

	if _, err := NewNormalizer(filepath.Join(t.TempDir(), "absent.txt"), 0); err != nil {
		t.Fatalf("missing rules file must not be an error: %v", err)
	}
}

func TestNormalizerMalformedFileIsStartupError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.txt")
	if err := os.WriteFile(path, []byte("this line has no arrow\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewNormalizer(path, 0); err == nil {
		t.Fatal("malformed rules file must fail at startup")
	}
}

func TestNormalizeIterationLimitTerminates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.txt")
	// a => aa grows on every pass; the loop bound must still terminate.
	if err := os.WriteFile(path, []byte("a => aa\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := NewNormalizer(path, 5)
	if err != nil {
		t.Fatal(err)
	}
	_ = n.Normalize("a") // must return, not loop forever
}
