// Package parser builds session records from JSONL logs in a single pass
// per file.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
	"github.com/emiliopalmerini/claude-activity/internal/transcript"
)

// DefaultMaxFileSizeMB is the size above which a log is skipped.
const DefaultMaxFileSizeMB = 100

// Parser turns session logs into domain.Session values.
type Parser struct {
	registry    *tooladapters.Registry
	opts        domain.ExtractionOptions
	maxFileSize int64
	logger      domain.Logger
}

// New creates a Parser. maxFileSizeMB <= 0 selects the default.
func New(registry *tooladapters.Registry, opts domain.ExtractionOptions, maxFileSizeMB int, logger domain.Logger) *Parser {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = DefaultMaxFileSizeMB
	}
	return &Parser{
		registry:    registry,
		opts:        opts,
		maxFileSize: int64(maxFileSizeMB) * 1_048_576,
		logger:      logger,
	}
}

// ParseSession parses one top-level session log. It returns nil, nil when
// the file is oversized, cannot be stat'ed, or holds neither tool calls
// nor a prompt.
func (p *Parser) ParseSession(ctx context.Context, path, project string) (*domain.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		p.logger.Debug(fmt.Sprintf("skipping %s: %v", path, err))
		return nil, nil
	}
	if info.Size() > p.maxFileSize {
		p.logger.Debug(fmt.Sprintf("skipping %s: %d bytes exceeds limit", path, info.Size()))
		return nil, nil
	}

	state := newSessionState(project, path)
	reader := transcript.NewReader()
	for lineno, rec := range reader.Records(path) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		p.processRecord(state, lineno, rec)
	}
	if err := readerError(path, reader); err != nil {
		return nil, err
	}

	return p.assemble(ctx, state), nil
}

// ExtractInvocations returns every tool invocation in a log along with the
// number of malformed lines.
func (p *Parser) ExtractInvocations(path, project string) ([]domain.ToolInvocation, int, error) {
	var invocations []domain.ToolInvocation
	reader := transcript.NewReader()
	for lineno, rec := range reader.Records(path) {
		if rec == nil || rec.Message == nil {
			continue
		}
		blocks, ok := rec.Message.Blocks()
		if !ok {
			continue
		}
		meta := invocationMeta(rec, project, path, lineno)
		for _, block := range blocks {
			if block.Type != "tool_use" || block.Name == "" {
				continue
			}
			if inv, ok := p.extract(block, meta); ok {
				invocations = append(invocations, inv)
			}
		}
	}
	if err := readerError(path, reader); err != nil {
		return nil, reader.Malformed(), err
	}
	return invocations, reader.Malformed(), nil
}

func readerError(path string, reader *transcript.Reader) error {
	err := reader.Err()
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}

func (p *Parser) extract(block transcript.ContentBlock, meta domain.InvocationMeta) (domain.ToolInvocation, bool) {
	raw := domain.ToolUseBlock{ID: block.ID, Name: block.Name, Input: block.Input}
	inv, err := p.registry.Get(block.Name).Extract(raw, meta, p.opts)
	if err != nil {
		if p.opts.Verbose {
			p.logger.Debug(fmt.Sprintf("failed to extract %s at %s:%d: %v", block.Name, meta.JSONLPath, meta.LineNo, err))
		}
		return domain.ToolInvocation{}, false
	}
	return inv, true
}

func invocationMeta(rec *transcript.Record, project, path string, lineno int) domain.InvocationMeta {
	return domain.InvocationMeta{
		Timestamp: rec.Timestamp,
		Project:   project,
		JSONLPath: path,
		LineNo:    lineno,
		Cwd:       rec.Cwd,
		SessionID: rec.SessionID,
		GitBranch: rec.GitBranch,
	}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
