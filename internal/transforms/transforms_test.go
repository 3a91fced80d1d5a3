package transforms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hotclip/internal/ports"
)

type fakeReasoner struct {
	response []byte
	err      error
	requests []ports.ClassifyRequest
}

func (f *fakeReasoner) Classify(_ context.Context, req ports.ClassifyRequest) ([]byte, error) {
	f.requests = append(f.requests, req)
	return f.response, f.err
}

type fakeRemover struct {
	out []byte
	err error
}

func (f *fakeRemover) Remove(context.Context, []byte) ([]byte, error) {
	return f.out, f.err
}

func TestRewriteParsesJSONOutput(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{response: []byte(`{"output": "  A polished paragraph.  "}`)}
	tf := New(reasoner, nil)

	got, err := tf.RewriteText(context.Background(), "rough draft", "professional", "same")
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if got != "A polished paragraph." {
		t.Fatalf("output not trimmed: %q", got)
	}

	prompt := reasoner.requests[0].User
	for _, want := range []string{"professional", "same", "rough draft"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateFallsBackToBareText(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{response: []byte("SELECT * FROM users;\n")}
	tf := New(reasoner, nil)

	got, err := tf.StructureData(context.Background(), "name,id\nann,1", "sql", "postgres")
	if err != nil {
		t.Fatalf("structure failed: %v", err)
	}
	if got != "SELECT * FROM users;" {
		t.Fatalf("bare text not accepted: %q", got)
	}
}

func TestGenerateEmptyResultIsAnError(t *testing.T) {
	t.Parallel()

	tf := New(&fakeReasoner{response: []byte("   ")}, nil)
	if _, err := tf.DebugCode(context.Background(), "code", "fix_only", "go"); err == nil {
		t.Fatal("empty transformation must error")
	}
}

func TestGeneratePropagatesTransportErrors(t *testing.T) {
	t.Parallel()

	tf := New(&fakeReasoner{err: errors.New("timeout")}, nil)
	if _, err := tf.RewriteText(context.Background(), "x", "casual", "shorter"); err == nil {
		t.Fatal("transport failure must propagate")
	}
}

func TestTranslateDefaultsSourceLanguage(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{response: []byte(`{"output":"bonjour"}`)}
	tf := New(reasoner, nil)

	if _, err := tf.Translate(context.Background(), "hello", "", "french"); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(reasoner.requests[0].User, "auto") {
		t.Fatal("empty source language should become auto-detect")
	}
}

func TestScreenshotToCodeCarriesImage(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{response: []byte(`{"output":"<div/>"}`)}
	tf := New(reasoner, nil)

	image := []byte{0x89, 'P', 'N', 'G'}
	got, err := tf.ScreenshotToCode(context.Background(), image, "react_tailwind", "Card")
	if err != nil {
		t.Fatalf("screenshot-to-code failed: %v", err)
	}
	if got != "<div/>" {
		t.Fatalf("unexpected output: %q", got)
	}
	if len(reasoner.requests[0].Image) != len(image) {
		t.Fatal("image payload must reach the reasoner")
	}

	if _, err := tf.ScreenshotToCode(context.Background(), nil, "react_tailwind", "Card"); err == nil {
		t.Fatal("missing image must error")
	}
}

func TestRemoveBackground(t *testing.T) {
	t.Parallel()

	tf := New(&fakeReasoner{}, &fakeRemover{out: []byte("cutout")})

	out, err := tf.RemoveBackground(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if string(out) != "cutout" {
		t.Fatalf("unexpected output: %q", out)
	}

	noTool := New(&fakeReasoner{}, nil)
	if _, err := noTool.RemoveBackground(context.Background(), []byte("png")); err == nil {
		t.Fatal("missing tool must error")
	}
	if _, err := tf.RemoveBackground(context.Background(), nil); err == nil {
		t.Fatal("missing image must error")
	}
}
