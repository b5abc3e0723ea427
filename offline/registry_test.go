package offline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testModel() Model {
	return Model{
		SourceLanguage: "en",
		TargetLanguage: "es",
		Version:        "1.0.0",
		SizeBytes:      64,
		Rules:          map[string]string{"hello": "hola"},
		Confidence:     0.8,
	}
}

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r, dir
}

func TestRegistry_InstallAndLoad(t *testing.T) {
	r, _ := newTestRegistry(t)

	if r.IsInstalled("en", "es") {
		t.Fatal("nothing should be installed yet")
	}

	if err := r.Install(testModel(), []byte("payload")); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if !r.IsInstalled("en", "es") {
		t.Error("model should be installed")
	}

	model, err := r.Load("en", "es")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if model.Rules["hello"] != "hola" {
		t.Errorf("rules not preserved: %v", model.Rules)
	}
	if model.ID != "en-es" {
		t.Errorf("ID = %q, want en-es (derived on install)", model.ID)
	}
}

func TestRegistry_InstallIsIdempotent(t *testing.T) {
	r, dir := newTestRegistry(t)

	if err := r.Install(testModel(), []byte("original")); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	// Tamper with the payload; a second install must not rewrite it.
	payloadPath := filepath.Join(dir, "en-es.bin")
	if err := os.WriteFile(payloadPath, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.Install(testModel(), []byte("second")); err != nil {
		t.Fatalf("second Install failed: %v", err)
	}

	data, err := os.ReadFile(payloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "tampered" {
		t.Errorf("payload = %q; second install should not touch disk", data)
	}
}

func TestRegistry_InstallRollsBackOnManifestFailure(t *testing.T) {
	r, dir := newTestRegistry(t)

	// Occupy the manifest path with a directory so the manifest write
	// fails after the model files are on disk.
	if err := os.MkdirAll(filepath.Join(dir, manifestName), 0o755); err != nil {
		t.Fatal(err)
	}

	err := r.Install(testModel(), []byte("payload"))
	var loadErr *ModelLoadFailedError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Install error = %v, want ModelLoadFailedError", err)
	}

	if r.IsInstalled("en", "es") {
		t.Error("failed install should not be reported as installed")
	}
	if _, err := os.Stat(filepath.Join(dir, "en-es.bin")); !os.IsNotExist(err) {
		t.Error("payload file should be removed after rollback")
	}
	if _, err := os.Stat(filepath.Join(dir, "en-es.json")); !os.IsNotExist(err) {
		t.Error("metadata file should be removed after rollback")
	}
}

func TestRegistry_Uninstall(t *testing.T) {
	r, dir := newTestRegistry(t)

	if err := r.Install(testModel(), []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := r.Uninstall("en", "es"); err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}

	if r.IsInstalled("en", "es") {
		t.Error("model should be uninstalled")
	}
	if _, err := os.Stat(filepath.Join(dir, "en-es.bin")); !os.IsNotExist(err) {
		t.Error("payload file should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "en-es.json")); !os.IsNotExist(err) {
		t.Error("metadata file should be removed")
	}
}

func TestRegistry_Uninstall_NotInstalled(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.Uninstall("en", "fr")
	var notInstalled *ModelNotInstalledError
	if !errors.As(err, &notInstalled) {
		t.Fatalf("want *ModelNotInstalledError, got %v", err)
	}
}

func TestRegistry_Load_NotAvailable(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Load("en", "fr")
	var notAvailable *ModelNotAvailableError
	if !errors.As(err, &notAvailable) {
		t.Fatalf("want *ModelNotAvailableError, got %v", err)
	}
}

func TestRegistry_Load_CorruptMetadata(t *testing.T) {
	r, dir := newTestRegistry(t)

	if err := r.Install(testModel(), []byte("payload")); err != nil {
		t.Fatal(err)
	}
	// Corrupt the metadata and force a cold load.
	if err := os.WriteFile(filepath.Join(dir, "en-es.json"), []byte("{bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	r2, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = r2.Load("en", "es")
	var loadFailed *ModelLoadFailedError
	if !errors.As(err, &loadFailed) {
		t.Fatalf("want *ModelLoadFailedError, got %v", err)
	}
}

func TestRegistry_SurvivesRestart(t *testing.T) {
	_, dir := newTestRegistry(t)

	r1, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r1.Install(testModel(), []byte("payload")); err != nil {
		t.Fatal(err)
	}

	// A fresh registry over the same directory sees the manifest.
	r2, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !r2.IsInstalled("en", "es") {
		t.Error("install should survive restart via the manifest")
	}
	model, err := r2.Load("en", "es")
	if err != nil {
		t.Fatalf("Load after restart failed: %v", err)
	}
	if model.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", model.Version)
	}
}

func TestRegistry_CorruptManifestStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte("{bad"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(dir, nil)
	if err != nil {
		t.Fatalf("NewRegistry should tolerate a corrupt manifest, got %v", err)
	}
	if len(r.InstalledPairs()) != 0 {
		t.Error("corrupt manifest should start the registry empty")
	}
}

func TestRegistry_InstalledLanguages(t *testing.T) {
	r, _ := newTestRegistry(t)

	es := testModel()
	fr := testModel()
	fr.TargetLanguage = "fr"
	if err := r.Install(es, []byte("p")); err != nil {
		t.Fatal(err)
	}
	if err := r.Install(fr, []byte("p")); err != nil {
		t.Fatal(err)
	}

	// Malformed ids in the manifest are skipped on parse.
	r.mu.Lock()
	r.installed["garbage"] = struct{}{}
	r.mu.Unlock()

	langs := r.InstalledLanguages()
	if len(langs) != 2 || langs[0] != "es" || langs[1] != "fr" {
		t.Errorf("InstalledLanguages() = %v, want [es fr]", langs)
	}
}

func TestRegistry_DiskUsage(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Install(testModel(), []byte("payload-bytes")); err != nil {
		t.Fatal(err)
	}
	if got := r.DiskUsage(); got <= 0 {
		t.Errorf("DiskUsage = %d, want > 0", got)
	}
}
