package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyRulesFile      = "rules_file"
	KeyGuidelineFiles = "guideline_files"
	KeyCategoriesFile = "categories_file"
	KeyCountryFile    = "country_file"
	KeyTechnologyFile = "technology_file"
	KeyFLLevels       = "reference.fl_levels"
	KeyCtrlAss        = "reference.ctrl_ass"
	KeyGLTFL          = "reference.gl_t_fl"
	KeyOutputDir      = "output_dir"
	KeyDatabasePath   = "database.path"
	KeyWorkbook       = "workbook"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// Defaults.
const (
	DefaultDatabasePath = "$HOME/.local/share/flcheck/flcheck.db"
	DefaultOutputDir    = "."
	DefaultConfigDir    = "$HOME/.config/flcheck"
)

// Reference locates the reference snapshots.
type Reference struct {
	FLLevels string
	CtrlAss  string
	GLTFL    string
}

// Config is the typed application configuration.
type Config struct {
	Reference      Reference
	RulesFile      string
	CategoriesFile string
	CountryFile    string
	TechnologyFile string
	OutputDir      string
	DatabasePath   string
	Workbook       string
	GuidelineFiles []string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the environment.
// Missing files are skipped; variables already set are kept.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from v, or from the global viper when v is nil.
// Paths are expanded with ExpandPath.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{
		RulesFile:      ExpandPath(v.GetString(KeyRulesFile)),
		CategoriesFile: ExpandPath(v.GetString(KeyCategoriesFile)),
		CountryFile:    ExpandPath(v.GetString(KeyCountryFile)),
		TechnologyFile: ExpandPath(v.GetString(KeyTechnologyFile)),
		OutputDir:      ExpandPath(v.GetString(KeyOutputDir)),
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		Workbook:       ExpandPath(v.GetString(KeyWorkbook)),
		Reference: Reference{
			FLLevels: ExpandPath(v.GetString(KeyFLLevels)),
			CtrlAss:  ExpandPath(v.GetString(KeyCtrlAss)),
			GLTFL:    ExpandPath(v.GetString(KeyGLTFL)),
		},
	}

	for _, entry := range v.GetStringSlice(KeyGuidelineFiles) {
		for _, p := range strings.Split(entry, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.GuidelineFiles = append(cfg.GuidelineFiles, ExpandPath(p))
			}
		}
	}

	return cfg, nil
}

// ValidateTemplates checks the settings needed to build the template pool.
func (c *Config) ValidateTemplates() error {
	var missing []string
	if c.RulesFile == "" {
		missing = append(missing, KeyRulesFile)
	}
	if len(c.GuidelineFiles) == 0 {
		missing = append(missing, KeyGuidelineFiles)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks the settings needed for a full validation run.
func (c *Config) Validate() error {
	if err := c.ValidateTemplates(); err != nil {
		return err
	}
	var missing []string
	if c.Reference.FLLevels == "" {
		missing = append(missing, KeyFLLevels)
	}
	if c.Reference.CtrlAss == "" {
		missing = append(missing, KeyCtrlAss)
	}
	if c.Reference.GLTFL == "" {
		missing = append(missing, KeyGLTFL)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyOutputDir)
	}
	return nil
}
