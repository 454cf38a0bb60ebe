package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/resolve"
	"github.com/matheuskafuri/folio/internal/transform"
)

var (
	flagJSON     bool
	flagRefresh  bool
	flagCategory string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Print the portfolio projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, domainProjects)
	},
}

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Print the blog posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, domainBlog)
	},
}

func init() {
	for _, c := range []*cobra.Command{projectsCmd, blogCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "print the result as JSON")
		c.Flags().BoolVar(&flagRefresh, "refresh", false, "load from the network even when the cache is fresh")
		c.Flags().StringVar(&flagCategory, "category", item.AllCategory, "only print items of this category")
	}
}

func runShow(cmd *cobra.Command, name string) error {
	r, err := newRoot(rootOpts{})
	if err != nil {
		return err
	}
	defer r.Close()

	d, err := r.domain(name)
	if err != nil {
		return err
	}

	opt := resolve.SkipRefresh()
	if flagRefresh {
		opt = resolve.ForceRefresh()
	}
	res := r.Resolver.Resolve(cmd.Context(), d, opt)
	res.Items = transform.Filter(res.Items, flagCategory)

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), name, res)
	return nil
}

type jsonResult struct {
	resolve.Result
	Error string `json:"error,omitempty"`
}

func printJSON(w io.Writer, res resolve.Result) error {
	out := jsonResult{Result: res}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))
)

func printResult(w io.Writer, name string, res resolve.Result) {
	switch {
	case res.Unconfigured:
		fmt.Fprintln(w, warnStyle.Render(name+" is not configured and nothing is cached."))
		if res.Err != nil {
			fmt.Fprintln(w, dimStyle.Render(res.Err.Error()))
		}
		return
	case res.Tier == resolve.TierStale:
		fmt.Fprintln(w, warnStyle.Render("Showing an offline copy: "+errText(res.Err)))
	case res.Tier == resolve.TierSeed:
		fmt.Fprintln(w, warnStyle.Render("Showing bundled seed data: "+errText(res.Err)))
	}

	if len(res.Items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	for _, it := range res.Items {
		meta := []string{it.Category}
		if !it.PublishedAt.IsZero() {
			meta = append(meta, it.PublishedAt.Format("2006-01-02"))
		}
		fmt.Fprintln(w, titleStyle.Render(it.Title)+"  "+dimStyle.Render(strings.Join(meta, " · ")))
		if link := it.Link(); link != "" {
			fmt.Fprintln(w, "  "+link)
		}
	}
}

func errText(err error) string {
	if err == nil {
		return "remote load failed"
	}
	return err.Error()
}
