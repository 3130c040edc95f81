package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spelld/internal/dictionary"
)

// dictHint closes the help of commands that check text.
const dictHint = `The embedded English list is small and meant for code vocabulary. Pass a
full word list with --dict (for example /usr/share/dict/words) or a
compiled cache with --dict-cache, or most prose will be reported.`

// dictionaryOptions reads the persistent dictionary flags.
func dictionaryOptions(cmd *cobra.Command) (cachePath string, opts dictionary.LoadOptions, err error) {
	flags := cmd.Root().PersistentFlags()
	if cachePath, err = flags.GetString("dict-cache"); err != nil {
		return "", opts, fmt.Errorf("failed to get dict-cache flag: %w", err)
	}
	if opts.Common, err = flags.GetStringArray("dict"); err != nil {
		return "", opts, fmt.Errorf("failed to get dict flag: %w", err)
	}
	langs, err := flags.GetStringArray("lang")
	if err != nil {
		return "", opts, fmt.Errorf("failed to get lang flag: %w", err)
	}
	noBuiltin, err := flags.GetBool("no-builtin")
	if err != nil {
		return "", opts, fmt.Errorf("failed to get no-builtin flag: %w", err)
	}
	opts.Builtin = !noBuiltin
	opts.Languages = make(map[string][]string, len(langs))
	for _, value := range langs {
		id, path, perr := dictionary.ParseLanguageFlag(value)
		if perr != nil {
			return "", opts, perr
		}
		opts.Languages[id] = append(opts.Languages[id], path)
	}
	return cachePath, opts, nil
}

// loadStore builds the dictionary store from a compiled cache when one is
// given, otherwise from word lists.
func loadStore(cmd *cobra.Command) (*dictionary.Store, error) {
	cachePath, opts, err := dictionaryOptions(cmd)
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		if len(opts.Common) > 0 || len(opts.Languages) > 0 {
			return nil, fmt.Errorf("--dict-cache cannot be combined with --dict or --lang")
		}
		store, err := dictionary.LoadCacheFile(cachePath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary cache: %w", err)
		}
		return store, nil
	}
	store, err := dictionary.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}
	return store, nil
}
