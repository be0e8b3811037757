package main

import (
	"github.com/spf13/cobra"
)

func newExtractCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "提取简历并输出JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := st.extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newParseJDCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-jd <file|->",
		Short: "解析岗位描述",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st.proc.ParseJobDescription(text))
		},
	}
}

func newMatchCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "match <resume-file> <jd-file>",
		Short: "计算简历与岗位的匹配报告",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, err := st.loadResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, err := readText(cmd, args[1])
			if err != nil {
				return err
			}
			report := st.proc.Match(cmd.Context(), resume, st.proc.ParseJobDescription(text))
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newKeywordsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <resume-file> <jd-file>",
		Short: "基于关键词集合对比简历和岗位",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, err := st.loadResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, err := readText(cmd, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st.proc.AnalyzeKeywords(resume, st.proc.ParseJobDescription(text)))
		},
	}
}
