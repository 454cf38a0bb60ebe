package browser

import (
	"slices"
	"testing"

	"github.com/matheuskafuri/folio/internal/item"
)

type recorder struct {
	name string
	args []string
}

func (r *recorder) run(name string, args ...string) error {
	r.name, r.args = name, args
	return nil
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		rec := &recorder{}
		err := Opener{GOOS: "linux", Run: rec.run}.Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error %v", tt.url, err)
		}
		if tt.wantErr && rec.name != "" {
			t.Errorf("Open(%q): command ran for a rejected URL", tt.url)
		}
	}
}

func TestCommandPerPlatform(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"https://a.dev"}},
		{"linux", "xdg-open", []string{"https://a.dev"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://a.dev"}},
		{"plan9", "xdg-open", []string{"https://a.dev"}},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, "https://a.dev")
		if name != tt.wantName || !slices.Equal(args, tt.wantArgs) {
			t.Errorf("command(%q) = %s %v, want %s %v", tt.goos, name, args, tt.wantName, tt.wantArgs)
		}
	}
}

func TestOpenItemPrefersPrimary(t *testing.T) {
	rec := &recorder{}
	o := Opener{GOOS: "darwin", Run: rec.run}

	if err := o.OpenItem(item.DisplayItem{PrimaryURL: "https://live.dev", SecondaryURL: "https://github.com/x"}); err != nil {
		t.Fatalf("OpenItem: %v", err)
	}
	if rec.args[0] != "https://live.dev" {
		t.Errorf("expected primary url, got %v", rec.args)
	}

	if err := o.OpenItem(item.DisplayItem{SecondaryURL: "https://github.com/x"}); err != nil {
		t.Fatalf("OpenItem: %v", err)
	}
	if rec.args[0] != "https://github.com/x" {
		t.Errorf("expected secondary url, got %v", rec.args)
	}

	if err := o.OpenItem(item.DisplayItem{Title: "none"}); err == nil {
		t.Error("expected error for item without links")
	}
}
