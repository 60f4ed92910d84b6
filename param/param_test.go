package param

import (
	"strings"
	"testing"
)

func testOptions() Options {
	return Options{
		"z_min":   {Kind: Float, Default: 0.0, Doc: "minimum redshift"},
		"z_max":   {Kind: Float, Default: 3.0, Doc: "maximum redshift"},
		"n_zbins": {Kind: Int, Default: 150, Doc: "number of redshift bins"},
		"label":   {Kind: Str, Required: true, Doc: "axis label"},
		"grid":    {Kind: Bool, Default: true, Doc: "draw grid lines"},
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(testOptions(), map[string]any{
		"label": "redshift",
	})
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}

	if v := cfg.Float("z_max"); v != 3.0 {
		t.Errorf("z_max = %f, want 3.0", v)
	}
	if v := cfg.Int("n_zbins"); v != 150 {
		t.Errorf("n_zbins = %d, want 150", v)
	}
	if v := cfg.Str("label"); v != "redshift" {
		t.Errorf("label = %q, want %q", v, "redshift")
	}
	if !cfg.Bool("grid") {
		t.Errorf("grid = false, want true")
	}
}

func TestResolveOverride(t *testing.T) {
	cfg, err := Resolve(testOptions(), map[string]any{
		"label":   "z",
		"z_max":   4.5,
		"n_zbins": 30,
		"grid":    false,
	})
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}

	if v := cfg.Float("z_max"); v != 4.5 {
		t.Errorf("z_max = %f, want 4.5", v)
	}
	if v := cfg.Int("n_zbins"); v != 30 {
		t.Errorf("n_zbins = %d, want 30", v)
	}
	if cfg.Bool("grid") {
		t.Errorf("grid = true, want false")
	}
}

func TestResolveIntToFloat(t *testing.T) {
	// YAML decodes `z_max: 4` as int, the declared kind is float.
	cfg, err := Resolve(testOptions(), map[string]any{
		"label": "z",
		"z_max": 4,
	})
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if v := cfg.Float("z_max"); v != 4.0 {
		t.Errorf("z_max = %f, want 4.0", v)
	}
}

func TestResolveMissingRequired(t *testing.T) {
	_, err := Resolve(testOptions(), map[string]any{})
	if err == nil {
		t.Fatal("expecting error for missing required option")
	}
	if !strings.Contains(err.Error(), "label") {
		t.Errorf("error does not name the missing option: %s", err)
	}
}

func TestResolveUnknownKey(t *testing.T) {
	_, err := Resolve(testOptions(), map[string]any{
		"label":  "z",
		"zz_max": 3.0,
	})
	if err == nil {
		t.Fatal("expecting error for unknown option")
	}
	if !strings.Contains(err.Error(), "zz_max") {
		t.Errorf("error does not name the unknown option: %s", err)
	}
}

func TestResolveKindMismatch(t *testing.T) {
	_, err := Resolve(testOptions(), map[string]any{
		"label": "z",
		"z_max": "three",
	})
	if err == nil {
		t.Fatal("expecting error for kind mismatch")
	}
	if !strings.Contains(err.Error(), "z_max") {
		t.Errorf("error does not name the offending option: %s", err)
	}
}
