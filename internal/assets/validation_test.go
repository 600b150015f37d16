package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		// Valid names
		{"simple name", "page", nil},
		{"name with hyphen", "landing-page", nil},
		{"name with underscore", "blog_index", nil},
		{"name with numbers", "page2", nil},
		{"mixed case", "BlogPost", nil},
		{"at length limit", strings.Repeat("a", MaxAssetNameLength), nil},

		// Invalid names
		{"empty name", "", ErrInvalidAssetName},
		{"too long", strings.Repeat("a", MaxAssetNameLength+1), ErrInvalidAssetName},
		{"forward slash", "partials/nav", ErrInvalidAssetName},
		{"backslash", "partials\\nav", ErrInvalidAssetName},
		{"parent directory traversal", "../secret", ErrInvalidAssetName},
		{"windows parent traversal", "..\\secret", ErrInvalidAssetName},
		{"extension included", "page.html", ErrInvalidAssetName},
		{"hidden file", ".hidden", ErrInvalidAssetName},
		{"absolute path unix", "/etc/passwd", ErrInvalidAssetName},
		{"absolute path windows", "C:\\Windows", ErrInvalidAssetName},
		{"space", "my page", ErrInvalidAssetName},
		{"null byte", "page\x00", ErrInvalidAssetName},
		{"two dots", "..", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAssetName(%q) unexpected error: %v", tt.input, err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssetName_ErrorMessageNamesInput(t *testing.T) {
	t.Parallel()

	err := ValidateAssetName("../evil")
	if err == nil {
		t.Fatal("expected error for invalid name")
	}
	if !strings.Contains(err.Error(), "../evil") {
		t.Errorf("error %q should contain the rejected name", err)
	}
}
