package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}
	if got := len(bundle.NamespaceMessages("en-US", "errors")); got == 0 {
		t.Fatalf("expected en-US errors namespace messages")
	}
	if got := len(bundle.NamespaceMessages("en-US", "game")); got == 0 {
		t.Fatalf("expected en-US game namespace messages")
	}
}

func TestEmbeddedLocalesDefineSameKeys(t *testing.T) {
	bundle := Default()
	for _, namespace := range []string{"errors", "game"} {
		base := bundle.NamespaceMessages(BaseLocale, namespace)
		other := bundle.NamespaceMessages("pt-BR", namespace)
		for key := range base {
			if _, ok := other[key]; !ok {
				t.Fatalf("pt-BR %s namespace is missing key %q", namespace, key)
			}
		}
		if len(other) != len(base) {
			t.Fatalf("pt-BR %s namespace has %d keys, want %d", namespace, len(other), len(base))
		}
	}
}

func TestLoadFromFSRejectsGameKeyOutsideGameNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "game.bad": "nope"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "A_KEY": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/more.yaml"), `locale: "en-US"
namespace: "more"
messages:
  "A_KEY": "b"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/errors.yaml"), `locale: "pt-BR"
namespace: "errors"
messages:
  "A_KEY": "a"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	resolved, messages := Default().NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		preference string
		want       string
	}{
		{preference: "", want: "en-US"},
		{preference: "pt-BR", want: "pt-BR"},
		{preference: "pt-BR,pt;q=0.9,en;q=0.8", want: "pt-BR"},
		{preference: "en-GB", want: "en-US"},
		{preference: "ja", want: "en-US"},
		{preference: ";;;", want: "en-US"},
	}
	for _, tt := range tests {
		if got := Default().ResolveLocale(tt.preference); got != tt.want {
			t.Fatalf("ResolveLocale(%q) = %q, want %q", tt.preference, got, tt.want)
		}
	}
}

func TestPrinterFormatsRegisteredGameMessages(t *testing.T) {
	got := Default().Printer("pt-BR").Sprintf("game.alert.pa_ra", 2)
	want := "Pa Ra! O assento 2 tirou dois uns e joga de novo"
	if got != want {
		t.Fatalf("printer output = %q, want %q", got, want)
	}
}

func TestParseCatalogFileRejectsMissingHeader(t *testing.T) {
	if _, err := parseCatalogFile([]byte(`messages:
  "A": "b"
`)); err == nil {
		t.Fatal("expected missing locale error")
	}
	if _, err := parseCatalogFile([]byte(`"A": "b"`)); err == nil {
		t.Fatal("expected unexpected line error")
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseCatalogFileEntries(t *testing.T) {
	file, err := parseCatalogFile([]byte(`# comment
locale: "en-US"
namespace: "game"
messages:
  "game.quote \"x\"": "say \"hi\" to %d"
  "game.plain":"no space"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := file.Messages[`game.quote "x"`]; got != `say "hi" to %d` {
		t.Fatalf("escaped entry = %q", got)
	}
	if got := file.Messages["game.plain"]; got != "no space" {
		t.Fatalf("plain entry = %q", got)
	}
}

func TestParseCatalogFileRejectsBadEntries(t *testing.T) {
	header := "locale: \"en-US\"\nnamespace: \"errors\"\nmessages:\n"
	for _, body := range []string{
		`  "A" "b"`,
		`  A: "b"`,
		`  "": "b"`,
		"  \"A\": \"b\"\n  \"A\": \"c\"",
	} {
		if _, err := parseCatalogFile([]byte(header + body + "\n")); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	got, ok := Default().Message("fr-FR", "game.block.NINER_LIMIT")
	if !ok || got != "A stack may not reach nine coins" {
		t.Fatalf("message = %q, %v", got, ok)
	}
	if _, ok := Default().Message("en-US", "game.block.MISSING"); ok {
		t.Fatal("expected unknown key to miss")
	}
}
