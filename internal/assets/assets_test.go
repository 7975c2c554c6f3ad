package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadStyle(t *testing.T) {
	t.Run("default style exists", func(t *testing.T) {
		css, err := LoadStyle(DefaultStyleName)
		if err != nil {
			t.Fatalf("LoadStyle(%q): %v", DefaultStyleName, err)
		}
		if !strings.Contains(css, "body") {
			t.Error("default style should carry body rules")
		}
	})

	t.Run("github style exists", func(t *testing.T) {
		if _, err := LoadStyle("github"); err != nil {
			t.Errorf("LoadStyle(github): %v", err)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		if _, err := LoadStyle("nosuchstyle"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("err = %v, want ErrStyleNotFound", err)
		}
	})
}

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "plain", false},
		{"empty", "", true},
		{"path traversal", "../secrets", true},
		{"extension smuggling", "plain.css", true},
		{"forward slash", "styles/plain", true},
		{"backslash", `styles\plain`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAssetName(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("err = %v, want ErrInvalidAssetName", err)
			}
		})
	}
}
