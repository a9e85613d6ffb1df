package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/errors"
)

type tagList struct {
	Tags []string `json:"tags" yaml:"tags"`
}

func (l tagList) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, len(l.Tags))
	for i, t := range l.Tags {
		rows[i] = map[string]any{"tag": t}
	}
	return []string{"tag"}, rows, true
}

func (tagList) RowNoun() string { return "tags" }

// NewTagsCommand creates the tags command group
func NewTagsCommand(cio *IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the tag set",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			s, err := openSession(cmdContext(cmd))
			if err != nil {
				return err
			}
			defer s.Close()
			return cio.W.WriteOK(format, tagList{Tags: s.Registry.Tags()})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <tag>...",
		Short: "Add tags to the tag set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			blank := true
			for _, a := range args {
				if strings.TrimSpace(a) != "" {
					blank = false
				}
			}
			if blank {
				return errors.New(errors.CodeCfgInvalid, "tags must not be empty", nil)
			}

			ctx := cmdContext(cmd)
			s, err := openWriteSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Registry.AddTags(ctx, args...); err != nil {
				return err
			}
			return cio.W.WriteOK(format, tagList{Tags: s.Registry.Tags()})
		},
	})
	return cmd
}
