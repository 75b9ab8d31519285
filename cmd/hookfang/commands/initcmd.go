package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/pkg/copyright"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
	"github.com/Sumatoshi-tech/hookfang/pkg/versionbump"
)

const (
	configFileName = ".hookfang.yaml"
	configFileMode = 0o644
	yamlIndent     = 2
)

// ErrConfigExists indicates an existing config file would be overwritten.
var ErrConfigExists = errors.New("config file already exists")

// NewInitCommand creates the config scaffolding command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default .hookfang.yaml",
		Long: `Write a .hookfang.yaml in the current directory with every setting at
its default value, annotated with comments. Refuses to overwrite an existing
file unless --force is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			if !force {
				_, statErr := os.Stat(configFileName)
				if statErr == nil {
					return fmt.Errorf("%w: %s", ErrConfigExists, configFileName)
				}
			}

			document, err := defaultConfigDocument()
			if err != nil {
				return err
			}

			writeErr := os.WriteFile(configFileName, document, configFileMode)
			if writeErr != nil {
				return fmt.Errorf("write %s: %w", configFileName, writeErr)
			}

			fmt.Fprintf(cobraCmd.OutOrStdout(), "wrote %s\n", configFileName)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	return cmd
}

// defaultConfigDocument renders the default settings as YAML with a comment
// per setting.
func defaultConfigDocument() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	addEntry(root, "hooks", config.KnownHooks(),
		"Hooks enabled for `hookfang run`, executed in this order.")
	addEntry(root, "jobs", 0,
		"Worker count for the imports pool. 0 selects the CPU count.")
	addEntry(root, "cache_dir", "",
		"Result cache directory. Empty disables caching.")
	addEntry(root, "no_color", false,
		"Disable colored diagnostics.")

	importsNode := &yaml.Node{Kind: yaml.MappingNode}
	addEntry(importsNode, "type_checking_sentinels", importcheck.DefaultTypeCheckingSentinels(),
		"Names whose `if` guard exempts the imports inside it.")
	addEntry(importsNode, "suppression_token", importcheck.DefaultSuppressionToken,
		"Comment token that exempts the import on the same line.")
	addEntry(importsNode, "max_fallback_statements", importcheck.DefaultMaxFallbackStatements,
		"Largest try/except ImportError body still treated as an optional-dependency fallback.")
	addEntry(importsNode, "skip_modules", []string{},
		"Module paths whose nested imports are never reported.")
	addEntry(importsNode, "include_globs", []string{},
		"Base-name globs limiting which files the imports hook sees. Empty means all Python files.")
	addNode(root, "imports", importsNode, "Nested-import checker.")

	versionNode := &yaml.Node{Kind: yaml.MappingNode}
	addEntry(versionNode, "version_files", versionbump.DefaultVersionFiles(),
		"Files whose version line must change alongside project code.")
	addEntry(versionNode, "upstream_fallback", true,
		"Diff against the parent of HEAD when no upstream branch exists.")
	addNode(root, "version_bump", versionNode, "Version-bump checker.")

	copyrightNode := &yaml.Node{Kind: yaml.MappingNode}
	addEntry(copyrightNode, "owner", "",
		"Owner named in the copyright line. The copyright hook requires it.")
	addEntry(copyrightNode, "update", false,
		"Rewrite stale or missing headers in place.")
	addEntry(copyrightNode, "head_bytes", copyright.DefaultHeadBytes,
		"How many leading bytes are scanned for the header.")
	addNode(root, "copyright", copyrightNode, "Copyright-header checker.")

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}

	return buf.Bytes(), nil
}

// addEntry appends a key with a plain value and a head comment.
func addEntry(mapping *yaml.Node, key string, value any, comment string) {
	valueNode := &yaml.Node{}

	err := valueNode.Encode(value)
	if err != nil {
		// Defaults are static Go values; encoding them cannot fail.
		panic(err)
	}

	addNode(mapping, key, valueNode, comment)
}

// addNode appends a key with a prebuilt value node and a head comment.
func addNode(mapping *yaml.Node, key string, value *yaml.Node, comment string) {
	keyNode := &yaml.Node{
		Kind:        yaml.ScalarNode,
		Value:       key,
		HeadComment: comment,
	}

	mapping.Content = append(mapping.Content, keyNode, value)
}
