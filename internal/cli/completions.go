package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/archivist/internal/core"
)

// completeSortOrders returns a completion function for sort order values.
func completeSortOrders(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"desc\tNewest first",
		"asc\tOldest first",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeLocales lists the locales with built-in month names.
func completeLocales(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, l := range core.SupportedLocales() {
		if strings.HasPrefix(l, toComplete) {
			out = append(out, l)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeYears lists the years present in the last built archive.
func completeYears(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ArchiveSvc == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	archive, err := ArchiveSvc.Current()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var years []string
	for _, e := range archive {
		y := strconv.Itoa(e.Year)
		if toComplete == "" || strings.HasPrefix(y, toComplete) {
			years = append(years, y+"\t"+strconv.Itoa(len(e.Data))+" records")
		}
	}
	return years, cobra.ShellCompDirectiveNoFileComp
}

// registerBuildCompletions registers flag completion functions on build.
func registerBuildCompletions(cmd *cobra.Command) {
	for _, flag := range []string{"list-order", "post-order", "month-order"} {
		_ = cmd.RegisterFlagCompletionFunc(flag, completeSortOrders)
	}
	_ = cmd.RegisterFlagCompletionFunc("locale", completeLocales)
	_ = cmd.MarkFlagDirname("src")
}
