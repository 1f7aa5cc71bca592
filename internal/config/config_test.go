package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/tadasana/internal/pose"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v.Set("data_dir", t.TempDir())

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if !cfg.Mirror {
		t.Error("Mirror should default to true")
	}
	if cfg.Thresholds != pose.DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want defaults", cfg.Thresholds)
	}

	det := cfg.DetectorConfig()
	if det.MinDetectionConf != 0.5 || det.ModelComplexity != 1 || !det.SmoothLandmarks {
		t.Errorf("unexpected detector config %+v", det)
	}

	opts := cfg.CameraOptions()
	if opts.DeviceID != 0 || !opts.Mirror {
		t.Errorf("unexpected camera options %+v", opts)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TADASANA_ADDR", ":9090")
	t.Setenv("TADASANA_CAMERA_ID", "2")
	t.Setenv("TADASANA_THRESHOLDS_PASS_SCORE", "80")
	t.Setenv("TADASANA_DETECTOR_MODEL_COMPLEXITY", "2")

	v, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v.Set("data_dir", t.TempDir())

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":9090" || cfg.CameraID != 2 {
		t.Errorf("Addr = %q CameraID = %d", cfg.Addr, cfg.CameraID)
	}
	if cfg.Thresholds.PassScore != 80 {
		t.Errorf("PassScore = %d, want 80", cfg.Thresholds.PassScore)
	}
	if cfg.Detector.ModelComplexity != 2 {
		t.Errorf("ModelComplexity = %d, want 2", cfg.Detector.ModelComplexity)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tadasana.yaml")
	content := "addr: \":7000\"\nmirror: false\ndata_dir: " + dir + "\nthresholds:\n  arm_extension: 150\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v, err := New(file)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":7000" || cfg.Mirror {
		t.Errorf("Addr = %q Mirror = %v", cfg.Addr, cfg.Mirror)
	}
	if cfg.Thresholds.ArmExtension != 150 || cfg.Thresholds.PassScore != 70 {
		t.Errorf("unexpected thresholds %+v", cfg.Thresholds)
	}
	if cfg.DBPath() != filepath.Join(dir, DatabaseFile) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestNew_MissingConfigFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestLoad_ThresholdsFileOverlay(t *testing.T) {
	dir := t.TempDir()
	th := pose.DefaultThresholds()
	th.BendLimit = 110
	if err := SaveThresholds(filepath.Join(dir, ThresholdsFile), th); err != nil {
		t.Fatalf("SaveThresholds() error = %v", err)
	}

	v, _ := New("")
	v.Set("data_dir", dir)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Thresholds.BendLimit != 110 {
		t.Errorf("BendLimit = %v, want 110", cfg.Thresholds.BendLimit)
	}
}

func TestLoad_InvalidThresholds(t *testing.T) {
	v, _ := New("")
	v.Set("data_dir", t.TempDir())
	v.Set("thresholds.pass_score", 150)

	if _, err := Load(v); err == nil {
		t.Error("expected error for pass_score above 100")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.tadasana", filepath.Join(home, ".tadasana")},
		{"~", home},
		{"/var/lib/tadasana", "/var/lib/tadasana"},
		{"relative/dir", "relative/dir"},
	}
	for _, tt := range tests {
		got, err := expandHome(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("expandHome(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestThresholds_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ThresholdsFile)

	th := pose.DefaultThresholds()
	th.MinVisibility = 0.4
	if err := SaveThresholds(path, th); err != nil {
		t.Fatalf("SaveThresholds() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "pass_score: 70") {
		t.Errorf("expected snake_case keys in YAML, got:\n%s", data)
	}

	got, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("LoadThresholds() error = %v", err)
	}
	if got != th {
		t.Errorf("LoadThresholds() = %+v, want %+v", got, th)
	}
}

func TestLoadThresholds_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ThresholdsFile)
	if err := os.WriteFile(path, []byte("leg_symmetry: 25\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("LoadThresholds() error = %v", err)
	}
	want := pose.DefaultThresholds()
	want.LegSymmetry = 25
	if got != want {
		t.Errorf("LoadThresholds() = %+v, want %+v", got, want)
	}
}

func TestLoadThresholds_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadThresholds(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("pass_score: [1, 2"), 0644)
	if _, err := LoadThresholds(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("arm_extension: 270\n"), 0644)
	if _, err := LoadThresholds(invalid); err == nil {
		t.Error("expected error for out of range thresholds")
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	SetupLogging("warn", &buf)

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("GlobalLevel() = %v, want warn", zerolog.GlobalLevel())
	}

	log.Info().Msg("hidden")
	log.Warn().Str("target", "tree").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"target":"tree"`) {
		t.Errorf("unexpected log output %q", out)
	}

	SetupLogging("nonsense", &buf)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %v", zerolog.GlobalLevel())
	}
}
