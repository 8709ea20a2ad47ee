package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tango/internal/mastery"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		wantErr           bool
		want              *Config
		wantErrorContains []string
	}{
		{
			name: "valid config file with custom values",
			configContent: `database:
  driver: sqlite3
  path: custom/words.db
practice:
  default_user_id: 7
  active_word_count: 5
  due_only: true
scoring:
  mastery_threshold: 0.9
`,
			useExplicitPath: false,
			wantErr:         false,
			want: &Config{
				Database: DatabaseConfig{
					Driver: DriverSQLite,
					Path:   "custom/words.db",
					Port:   3306,
				},
				Practice: PracticeConfig{
					DefaultUserID:   7,
					ActiveWordCount: 5,
					DueOnly:         true,
				},
				Scoring: ScoringConfig{
					MasteryThreshold: 0.9,
				},
			},
		},
		{
			name: "missing config file uses defaults",
			want: &Config{
				Database: DatabaseConfig{
					Driver: DriverSQLite,
					Path:   filepath.Join("data", "tango.db"),
					Port:   3306,
				},
				Practice: PracticeConfig{
					DefaultUserID:   1,
					ActiveWordCount: 10,
				},
			},
		},
		{
			name: "invalid YAML format",
			configContent: `database:
  driver: sqlite3
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown driver is rejected",
			configContent: `database:
  driver: postgres
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"driver",
			},
		},
		{
			name: "mysql driver requires a host",
			configContent: `database:
  driver: mysql
  database: tango
`,
			wantErr: true,
			wantErrorContains: []string{
				"database.host is required",
			},
		},
		{
			name: "zero user id is rejected",
			configContent: `practice:
  default_user_id: -1
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"default_user_id",
			},
		},
		{
			name: "explicit config file path",
			configContent: `database:
  driver: mysql
  host: db.internal
  username: tango
  password: secret
  database: tango
`,
			useExplicitPath: true,
			wantErr:         false,
			want: &Config{
				Database: DatabaseConfig{
					Driver:   DriverMySQL,
					Path:     filepath.Join("data", "tango.db"),
					Host:     "db.internal",
					Port:     3306,
					Username: "tango",
					Password: "secret",
					Database: "tango",
				},
				Practice: PracticeConfig{
					DefaultUserID:   1,
					ActiveWordCount: 10,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}

				originalDir, err := os.Getwd()
				require.NoError(t, err)
				defer func() {
					err := os.Chdir(originalDir)
					require.NoError(t, err)
				}()

				err = os.Chdir(tempDir)
				require.NoError(t, err)
				configPath = ""
			}

			got, err := Load(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoringConfigParams(t *testing.T) {
	defaults := mastery.DefaultParams()

	got := ScoringConfig{}.Params()
	assert.Equal(t, defaults, got, "zero config keeps the shipped defaults")

	got = ScoringConfig{
		MasteryThreshold: 0.9,
		HistoryWindow:    12,
	}.Params()
	assert.Equal(t, 0.9, got.MasteryThreshold)
	assert.Equal(t, 12, got.HistoryWindow)
	assert.Equal(t, defaults.PhaseAdvanceThreshold, got.PhaseAdvanceThreshold)
}
