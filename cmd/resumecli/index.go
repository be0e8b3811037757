package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newIndexCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "index <dir>",
		Short: "提取目录下所有支持的简历并写入本地索引",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenLocalStore(st.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := logger.Named("index")
			var indexed, failed int
			err = filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !parser.IsSupportedFileName(path) {
					return nil
				}
				record, err := st.extractFile(cmd.Context(), path)
				if err != nil {
					failed++
					log.Warn().Err(err).Str("file", path).Msg("提取失败，跳过")
					fmt.Fprintf(cmd.ErrOrStderr(), "跳过 %s: %v\n", path, err)
					return nil
				}
				if err := store.SaveResume(cmd.Context(), &record); err != nil {
					return fmt.Errorf("保存 %s 失败: %w", path, err)
				}
				indexed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", record.ID, path)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已索引 %d 份简历，失败 %d 份\n", indexed, failed)
			return nil
		},
	}
}

func newRankCmd(st *cliState) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rank <jd-file|->",
		Short: "用岗位描述为本地索引中的简历排序",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args[0])
			if err != nil {
				return err
			}
			store, err := storage.OpenLocalStore(st.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			jd := st.proc.ParseJobDescription(text)
			src := nameCollector{ResumeSource: store, names: map[string]string{}}
			reports, err := st.proc.MatchBatch(cmd.Context(), jd, src)
			if err != nil {
				return err
			}
			if limit > 0 && len(reports) > limit {
				reports = reports[:limit]
			}
			renderRanking(cmd.OutOrStdout(), reports, src.names)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "只显示前N名，0表示全部")
	return cmd
}

// nameCollector 批量匹配遍历时顺带记录候选人姓名
type nameCollector struct {
	processor.ResumeSource
	names map[string]string
}

// EachResume 实现 processor.ResumeSource
func (n nameCollector) EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error {
	return n.ResumeSource.EachResume(ctx, func(r types.ResumeRecord) error {
		n.names[r.ID] = r.ContactInfo.Name
		return fn(r)
	})
}

// renderRanking 输出无边框的排名表，一行一份简历
func renderRanking(w io.Writer, reports []types.MatchReport, names map[string]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"RANK", "MATCH", "RECOMMENDATION", "NAME", "RESUME ID"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	for i, r := range reports {
		table.Append([]string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.1f%%", r.MatchPercentage),
			r.Recommendation,
			names[r.ResumeID],
			r.ResumeID,
		})
	}
	table.Render()
}
