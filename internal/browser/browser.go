// Package browser opens item links in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/matheuskafuri/folio/internal/item"
)

// Runner starts a command without waiting for it.
type Runner func(name string, args ...string) error

func start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener launches URLs with the platform opener.
type Opener struct {
	GOOS string
	Run  Runner
}

// Default uses the host platform.
var Default = Opener{GOOS: runtime.GOOS, Run: start}

func Open(rawURL string) error {
	return Default.Open(rawURL)
}

func OpenItem(it item.DisplayItem) error {
	return Default.OpenItem(it)
}

// OpenItem opens the item's primary link, or its secondary one.
func (o Opener) OpenItem(it item.DisplayItem) error {
	link := it.Link()
	if link == "" {
		return fmt.Errorf("%q has no link", it.Title)
	}
	return o.Open(link)
}

func (o Opener) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	name, args := command(o.GOOS, rawURL)
	run := o.Run
	if run == nil {
		run = start
	}
	return run(name, args...)
}

// Validate accepts only absolute http and https URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host")
	}
	return nil
}

func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
