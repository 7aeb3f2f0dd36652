/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/config"
)

// addRunFlags registers the per-conversion flags shared by convert and batch
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("meta", "", "Metadata file (JSON or YAML) with mir_overrides, atr_entries, head_number, site_number")
	flags.Uint8("head", 1, "Test head number")
	flags.Uint8("site", 1, "Test site number")
	flags.Uint32("timestamp", 0, "Generation time in unix seconds (default now)")
	flags.String("label", "", "Source label recorded in the audit trail")
	flags.StringArray("note", nil, "Extra audit trail entry (repeatable)")
}

// runConfig layers the tool config, the metadata file and explicit flags,
// in that order
func (a *app) runConfig(cmd *cobra.Command) (assemble.RunConfig, error) {
	rc := a.cfg.RunConfig()
	flags := cmd.Flags()

	metaPath := a.cfg.MetaFile
	if v, _ := flags.GetString("meta"); v != "" {
		metaPath = v
	}
	if metaPath != "" {
		meta, err := config.LoadMeta(metaPath)
		if err != nil {
			return rc, err
		}
		if err := meta.Apply(&rc); err != nil {
			return rc, fmt.Errorf("invalid metadata file %s: %w", metaPath, err)
		}
	}

	if flags.Changed("head") {
		rc.HeadNumber, _ = flags.GetUint8("head")
	}
	if flags.Changed("site") {
		rc.SiteNumber, _ = flags.GetUint8("site")
	}
	if flags.Changed("timestamp") {
		rc.GeneratedAt, _ = flags.GetUint32("timestamp")
	}
	if v, _ := flags.GetString("label"); v != "" {
		rc.SourceLabel = v
	}
	notes, _ := flags.GetStringArray("note")
	rc.ExtraLogEntries = append(rc.ExtraLogEntries, notes...)
	return rc, nil
}
