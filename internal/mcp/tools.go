package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/hookfang/pkg/copyright"
	"github.com/Sumatoshi-tech/hookfang/pkg/gitlib"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
	"github.com/Sumatoshi-tech/hookfang/pkg/versionbump"
)

// Tool name constants.
const (
	ToolNameImports     = "imports_check"
	ToolNameVersionBump = "version_bump_check"
	ToolNameCopyright   = "copyright_check"
)

// MaxContentBytes is the maximum allowed size for inline content input (1 MB).
const MaxContentBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrNoInput indicates neither path nor content was provided.
	ErrNoInput = errors.New("either path or content is required")
	// ErrContentTooLarge indicates the inline content exceeds the size limit.
	ErrContentTooLarge = errors.New("content exceeds maximum size")
	// ErrEmptyRepoDir indicates the repo_dir parameter is empty.
	ErrEmptyRepoDir = errors.New("repo_dir parameter is required and must not be empty")
	// ErrNoFiles indicates the files parameter is empty.
	ErrNoFiles = errors.New("files parameter must name at least one file")
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrEmptyOwner indicates the owner parameter is empty.
	ErrEmptyOwner = errors.New("owner parameter is required and must not be empty")
	// ErrOutsideWorktree indicates the path does not live in the repository.
	ErrOutsideWorktree = errors.New("path is outside the repository worktree")
)

// ImportsInput is the input schema for the imports_check tool.
type ImportsInput struct {
	Path        string   `json:"path,omitempty"         jsonschema:"path to a Python file to check"`
	Content     string   `json:"content,omitempty"      jsonschema:"inline Python source; overrides reading from path"`
	SkipModules []string `json:"skip_modules,omitempty" jsonschema:"module paths whose nested imports are ignored"`
}

// VersionBumpInput is the input schema for the version_bump_check tool.
type VersionBumpInput struct {
	RepoDir string   `json:"repo_dir" jsonschema:"path to the Git repository worktree"`
	Files   []string `json:"files"    jsonschema:"changed files, relative to the worktree root"`
}

// CopyrightInput is the input schema for the copyright_check tool.
type CopyrightInput struct {
	Path  string `json:"path"  jsonschema:"path to the file to check"`
	Owner string `json:"owner" jsonschema:"copyright owner the header must name"`
}

// CopyrightVerdict is the copyright_check tool output payload.
type CopyrightVerdict struct {
	Path     string `json:"path"`
	Status   string `json:"status"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// handleImportsCheck processes imports_check tool calls.
func (s *Server) handleImportsCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ImportsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Path == "" && input.Content == "" {
		return errorResult(ErrNoInput)
	}

	if len(input.Content) > MaxContentBytes {
		return errorResult(fmt.Errorf("%w: %d bytes (max %d)", ErrContentTooLarge, len(input.Content), MaxContentBytes))
	}

	analyzer := s.analyzer
	if len(input.SkipModules) > 0 {
		cfg := importcheck.Config{
			TypeCheckingSentinels: s.cfg.Imports.TypeCheckingSentinels,
			SuppressionToken:      s.cfg.Imports.SuppressionToken,
			MaxFallbackStatements: s.cfg.Imports.MaxFallbackStatements,
			SkipModules:           input.SkipModules,
		}
		analyzer = importcheck.New(cfg)
	}

	var outcome importcheck.Outcome
	if input.Content != "" {
		path := input.Path
		if path == "" {
			path = "<inline>"
		}

		outcome = analyzer.AnalyzeSource(ctx, path, []byte(input.Content))
	} else {
		outcome = analyzer.Analyze(ctx, input.Path)
	}

	return jsonResult(outcome)
}

// handleVersionBumpCheck processes version_bump_check tool calls.
func (s *Server) handleVersionBumpCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input VersionBumpInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.RepoDir == "" {
		return errorResult(ErrEmptyRepoDir)
	}

	if len(input.Files) == 0 {
		return errorResult(ErrNoFiles)
	}

	repo, err := gitlib.OpenRepositoryAt(input.RepoDir)
	if err != nil {
		return errorResult(fmt.Errorf("open repository: %w", err))
	}
	defer repo.Free()

	checker := versionbump.NewChecker(repo, s.cfg.VersionBump.VersionFiles).
		WithUpstreamFallback(s.cfg.VersionBump.UpstreamFallback)

	results, err := checker.Check(ctx, input.Files)
	if err != nil {
		return errorResult(err)
	}

	if results == nil {
		results = []versionbump.Result{}
	}

	return jsonResult(results)
}

// handleCopyrightCheck processes copyright_check tool calls.
func (s *Server) handleCopyrightCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CopyrightInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Path == "" {
		return errorResult(ErrEmptyPath)
	}

	if input.Owner == "" {
		return errorResult(ErrEmptyOwner)
	}

	repo, err := gitlib.OpenRepositoryAt(filepath.Dir(input.Path))
	if err != nil {
		return errorResult(fmt.Errorf("open repository: %w", err))
	}
	defer repo.Free()

	rel, err := worktreeRel(repo, input.Path)
	if err != nil {
		return errorResult(err)
	}

	checker := copyright.NewChecker(repo, input.Owner, false).
		WithHeadBytes(s.cfg.Copyright.HeadBytes)

	result, err := checker.CheckFile(ctx, rel)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(CopyrightVerdict{
		Path:     input.Path,
		Status:   result.Status.String(),
		Passed:   result.Status.Passed(),
		Message:  result.Message,
		Expected: result.Expected,
	})
}

// worktreeRel resolves path relative to the repository worktree root.
func worktreeRel(repo *gitlib.Repository, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	root, err := filepath.Abs(repo.Path())
	if err != nil {
		return "", fmt.Errorf("resolve worktree root: %w", err)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorktree, path)
	}

	return filepath.ToSlash(rel), nil
}
