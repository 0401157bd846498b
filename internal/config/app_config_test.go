package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/treegen/internal/utils"
)

type configTestCase struct {
	name                string
	globalContent       string
	localContent        string
	explicitPath        string
	explicitContent     string
	expectInput         string
	expectOutput        string
	expectFormat        string
	expectDryRun        *bool
	expectDirectoryMode string
	expectFileMode      string
	expectListFormat    string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:                "local_overrides_global",
			globalContent:       "build:\n  input: global.txt\n  output: out\n  format: json\n  dry_run: true\n  permissions:\n    directory: \"0700\"\n    file: \"0600\"\nlist:\n  format: xml\n",
			localContent:        "build:\n  input: local.txt\n  dry_run: false\n  permissions:\n    file: \"0640\"\n",
			expectInput:         "local.txt",
			expectOutput:        "out",
			expectFormat:        "json",
			expectDryRun:        boolPointer(false),
			expectDirectoryMode: "0700",
			expectFileMode:      "0640",
			expectListFormat:    "xml",
		},
		{
			name:            "explicit_path_replaces_local",
			globalContent:   "build:\n  format: json\n",
			localContent:    "build:\n  format: xml\n",
			explicitPath:    "custom.yaml",
			explicitContent: "build:\n  format: raw\n",
			expectFormat:    "raw",
		},
		{
			name:          "global_only",
			globalContent: "build:\n  output: generated\n",
			expectOutput:  "generated",
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.GlobalConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.LocalConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			build := loadedConfig.Build
			if build.Input != testCase.expectInput {
				t.Fatalf("expected input %q, got %q", testCase.expectInput, build.Input)
			}
			if build.Output != testCase.expectOutput {
				t.Fatalf("expected output %q, got %q", testCase.expectOutput, build.Output)
			}
			if build.Format != testCase.expectFormat {
				t.Fatalf("expected format %q, got %q", testCase.expectFormat, build.Format)
			}
			if testCase.expectDryRun == nil {
				if build.DryRun != nil {
					t.Fatalf("expected no dry_run override")
				}
			} else if build.DryRun == nil || *build.DryRun != *testCase.expectDryRun {
				t.Fatalf("unexpected dry_run value")
			}
			if build.Permissions.Directory != testCase.expectDirectoryMode {
				t.Fatalf("expected directory mode %q, got %q", testCase.expectDirectoryMode, build.Permissions.Directory)
			}
			if build.Permissions.File != testCase.expectFileMode {
				t.Fatalf("expected file mode %q, got %q", testCase.expectFileMode, build.Permissions.File)
			}
			if loadedConfig.List.Format != testCase.expectListFormat {
				t.Fatalf("expected list format %q, got %q", testCase.expectListFormat, loadedConfig.List.Format)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	if err := os.Mkdir(filepath.Join(workingDir, utils.LocalConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error when configuration path is a directory")
	}
}

func TestBuildMergeKeepsBaseWhenOverrideEmpty(t *testing.T) {
	t.Parallel()

	base := BuildConfiguration{Input: "dic.txt", DryRun: boolPointer(true), Permissions: PermissionsConfiguration{Directory: "0750"}}
	merged := base.merge(BuildConfiguration{})
	if merged.Input != "dic.txt" || merged.Permissions.Directory != "0750" {
		t.Fatalf("unexpected merge result %+v", merged)
	}
	if merged.DryRun == nil || !*merged.DryRun {
		t.Fatalf("expected dry_run to be preserved")
	}
}

func TestParseFileMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		value       string
		fallback    os.FileMode
		expected    os.FileMode
		expectError bool
	}{
		{name: "empty_uses_fallback", value: "", fallback: 0o644, expected: 0o644},
		{name: "leading_zero", value: "0755", expected: 0o755},
		{name: "bare_digits_are_octal", value: "750", expected: 0o750},
		{name: "go_prefix", value: "0o600", expected: 0o600},
		{name: "surrounding_space", value: " 0700 ", expected: 0o700},
		{name: "not_octal", value: "0789", expectError: true},
		{name: "too_large", value: "17777", expectError: true},
		{name: "text", value: "rwx", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			mode, err := ParseFileMode(testCase.value, testCase.fallback)
			if testCase.expectError {
				if !errors.Is(err, ErrInvalidFileMode) {
					t.Fatalf("ParseFileMode(%q) error = %v, expected ErrInvalidFileMode", testCase.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileMode(%q) error: %v", testCase.value, err)
			}
			if mode != testCase.expected {
				t.Fatalf("ParseFileMode(%q) = %o, expected %o", testCase.value, mode, testCase.expected)
			}
		})
	}
}
