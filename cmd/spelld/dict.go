package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spelld/internal/dictionary"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and compile dictionaries",
}

var dictListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List loaded dictionaries and their sizes",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runDictList,
}

var dictCompileCmd = &cobra.Command{
	Use:          "compile -o <cache>",
	Short:        "Compile the loaded word lists into a cache file for --dict-cache",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runDictCompile,
}

var dictCheckCmd = &cobra.Command{
	Use:          "check <word>...",
	Short:        "Report whether words are known and print suggestions",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runDictCheck,
}

func init() {
	dictCompileCmd.Flags().StringP("output", "o", "", "cache file to write")
	_ = dictCompileCmd.MarkFlagRequired("output")
	dictCheckCmd.Flags().StringSlice("dictionaries", nil, "language dictionaries to consult besides common")

	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictCompileCmd)
	dictCmd.AddCommand(dictCheckCmd)
}

func runDictList(cmd *cobra.Command, _ []string) error {
	store, err := loadStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORDS")
	fmt.Fprintf(tw, "%s\t%s\n", dictionary.CommonID, humanize.Comma(int64(store.Common().Len())))
	for _, id := range store.IDs() {
		d, ok := store.Lookup(id)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", id, humanize.Comma(int64(d.Len())))
	}
	return tw.Flush()
}

func runDictCompile(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	store, err := loadStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := dictionary.SaveCacheFile(output, store); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d language dictionaries)\n", output, len(store.IDs()))
	}
	return nil
}

func runDictCheck(cmd *cobra.Command, args []string) error {
	ids, err := cmd.Flags().GetStringSlice("dictionaries")
	if err != nil {
		return fmt.Errorf("failed to get dictionaries flag: %w", err)
	}
	store, err := loadStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	out := cmd.OutOrStdout()
	unknown := 0
	for _, word := range args {
		if store.Contains(dictionary.Fold(word), ids) {
			fmt.Fprintf(out, "%s: ok\n", word)
			continue
		}
		unknown++
		fmt.Fprintf(out, "%s: unknown", word)
		if sugg := store.Suggest(word, ids); len(sugg) > 0 {
			fmt.Fprintf(out, " (%v)", sugg)
		}
		fmt.Fprintln(out)
	}
	if unknown > 0 {
		return errFindings
	}
	return nil
}
