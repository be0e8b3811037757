package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/types"

	"github.com/spf13/cobra"
)

const app = "resumecli"

// cliState 命令之间共享的配置和处理器
type cliState struct {
	cfgFile string
	dbPath  string
	verbose bool

	cfg  *config.Config
	proc *processor.Processor
}

func newRootCmd() *cobra.Command {
	st := &cliState{}
	rootCmd := &cobra.Command{
		Use:           app,
		Short:         "简历结构化提取和岗位匹配工具",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&st.cfgFile, "config", "", "配置文件路径，默认按约定位置查找")
	rootCmd.PersistentFlags().StringVar(&st.dbPath, "db", "", "本地SQLite索引路径，默认取配置中的 sqlite.path")
	rootCmd.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "输出调试日志到stderr")

	rootCmd.AddCommand(
		newExtractCmd(st),
		newParseJDCmd(st),
		newMatchCmd(st),
		newKeywordsCmd(st),
		newIndexCmd(st),
		newRankCmd(st),
	)
	return rootCmd
}

func (st *cliState) init(ctx context.Context) error {
	cfg, err := config.LoadConfig(st.cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	st.cfg = cfg

	logCfg := cfg.Logger
	logCfg.Format = "pretty"
	if !st.verbose {
		logCfg.Level = "warn"
	}
	logger.InitWithWriter(logCfg, os.Stderr)

	if ctx == nil {
		ctx = context.Background()
	}
	proc, err := processor.NewFromConfig(ctx, cfg, logger.Named)
	if err != nil {
		return fmt.Errorf("初始化处理器失败: %w", err)
	}
	st.proc = proc

	if st.dbPath == "" {
		st.dbPath = cfg.SQLite.Path
	}
	if st.dbPath == "" {
		st.dbPath = "resume-matcher.db"
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readText 读取文本文件，"-" 表示标准输入
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadResume 读取简历：.json 文件直接反序列化，其余按文档提取
func (st *cliState) loadResume(ctx context.Context, path string) (types.ResumeRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return types.ResumeRecord{}, err
		}
		var r types.ResumeRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return types.ResumeRecord{}, fmt.Errorf("解析简历JSON失败: %w", err)
		}
		return r, nil
	}
	return st.extractFile(ctx, path)
}

func (st *cliState) extractFile(ctx context.Context, path string) (types.ResumeRecord, error) {
	kind, err := parser.KindFromFileName(path)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return st.proc.Extract(ctx, types.RawDocument{Data: data, Kind: kind, FileName: filepath.Base(path)})
}
